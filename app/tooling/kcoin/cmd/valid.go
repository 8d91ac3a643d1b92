package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var validCmd = &cobra.Command{
	Use:   "valid",
	Short: "Ask the node to validate its chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := client().Valid(cmd.Context())
		if err != nil {
			return err
		}

		pterm.Info.Println(msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validCmd)
}
