package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Ask the node to adopt the longest chain of its peers",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().Replace(cmd.Context())
		if err != nil {
			return err
		}

		chain := resp.ActualChain
		if resp.NewChain != nil {
			chain = resp.NewChain
		}

		pterm.Success.Println(resp.Message)
		return renderChain(chain)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
