package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Ask the node to mine a block",
	RunE: func(cmd *cobra.Command, args []string) error {
		spinner, _ := pterm.DefaultSpinner.Start("Mining ...")

		block, err := client().Mine(cmd.Context())
		if err != nil {
			spinner.Fail(err)
			return err
		}
		spinner.Success(block.Message)

		pterm.Info.Printfln("Block %d: proof[%d] previous_hash[%s] timestamp[%s]", block.Index, block.Proof, block.PreviousHash, block.Timestamp)
		return renderTransactions(block.Transactions)
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
}
