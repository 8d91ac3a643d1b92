package cmd

import (
	"github.com/ardanlabs/kcoin/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	sender   string
	receiver string
	amount   string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Submit a transaction to the node",
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := database.ParseAmount(amount)
		if err != nil {
			return err
		}

		tx := database.NewTransaction(sender, receiver, value)

		msg, err := client().Send(cmd.Context(), tx)
		if err != nil {
			return err
		}

		pterm.Success.Println(msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sender, "sender", "s", "", "Sender of the transaction.")
	sendCmd.Flags().StringVarP(&receiver, "receiver", "r", "", "Receiver of the transaction.")
	sendCmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount to send.")
	sendCmd.MarkFlagRequired("sender")
	sendCmd.MarkFlagRequired("receiver")
	sendCmd.MarkFlagRequired("amount")
}
