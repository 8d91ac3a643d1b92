package cmd

import (
	"strconv"

	"github.com/ardanlabs/kcoin/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the chain held by the node",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().Chain(cmd.Context())
		if err != nil {
			return err
		}

		if err := renderChain(resp.Chain); err != nil {
			return err
		}

		pterm.Info.Printfln("Length: %d", resp.Length)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chainCmd)
}

func renderChain(chain []database.Block) error {
	td := pterm.TableData{{"Index", "Timestamp", "Proof", "Previous Hash", "Txs"}}
	for _, block := range chain {
		td = append(td, []string{
			strconv.FormatInt(block.Index, 10),
			block.Timestamp,
			strconv.FormatInt(block.Proof, 10),
			block.PreviousHash,
			strconv.Itoa(len(block.Transactions)),
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(td).Render()
}

func renderTransactions(txs []database.Transaction) error {
	td := pterm.TableData{{"Sender", "Receiver", "Amount"}}
	for _, tx := range txs {
		td = append(td, []string{tx.Sender, tx.Receiver, tx.Amount.String()})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(td).Render()
}
