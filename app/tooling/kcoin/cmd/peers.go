package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Manage the peers known by the node",
}

var peersAddCmd = &cobra.Command{
	Use:   "add <address>...",
	Short: "Register peers with the node",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().Connect(cmd.Context(), args)
		if err != nil {
			return err
		}

		pterm.Success.Println(resp.Message)

		items := make([]pterm.BulletListItem, len(resp.TotalNodes))
		for i, node := range resp.TotalNodes {
			items[i] = pterm.BulletListItem{Level: 0, Text: node}
		}
		return pterm.DefaultBulletList.WithItems(items).Render()
	},
}

func init() {
	peersCmd.AddCommand(peersAddCmd)
	rootCmd.AddCommand(peersCmd)
}
