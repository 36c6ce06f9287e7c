package commands

import (
	"encoding/json"

	"dbxbridge/cmd/dbxbridge/globals"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var lsJson bool

func init() {
	lsCmd.Flags().BoolVar(&lsJson, "json", false, "Print the listing as JSON.")
	rootCmd.AddCommand(lsCmd)
}

var lsCmd = &cobra.Command{
	Use:   "ls [remote dir]",
	Short: "List the files of a remote directory.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dir := "/"
		if len(args) > 0 {
			dir = args[0]
		}

		remote, err := globals.Get(ctx).Remote(ctx)
		if err != nil {
			return err
		}
		entries, err := remote.ListFiles(ctx, dir)
		if err != nil {
			return err
		}

		if lsJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(entries)
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Name", "Kind", "Size", "Modified", "Fetchable"})
		for _, e := range entries {
			t.AppendRow(table.Row{e.Name, e.Kind, e.Size, e.Modified, e.Fetchable()})
		}
		t.Render()
		return nil
	},
}
