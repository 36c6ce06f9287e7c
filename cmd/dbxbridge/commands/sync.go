package commands

import (
	"dbxbridge/cmd/dbxbridge/globals"
	"dbxbridge/services/dropboxsync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync <local dir> <remote dir>",
	Short: "Download files missing locally and upload files missing remotely.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		remote, err := globals.Get(ctx).Remote(ctx)
		if err != nil {
			return err
		}

		report, syncErr := dropboxsync.Sync(ctx, remote, args[0], args[1])

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"File", "Action"})
		for _, name := range report.Downloaded {
			t.AppendRow(table.Row{name, "downloaded"})
		}
		for _, name := range report.Uploaded {
			t.AppendRow(table.Row{name, "uploaded"})
		}
		for _, name := range report.Failed {
			t.AppendRow(table.Row{name, "failed"})
		}
		t.Render()

		return syncErr
	},
}
