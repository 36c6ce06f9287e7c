package commands

import (
	"fmt"
	"path/filepath"

	"dbxbridge/cmd/dbxbridge/globals"
	"dbxbridge/lib/scrapers/dropbox/core"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(putCmd)
}

var putCmd = &cobra.Command{
	Use:   "put <local file> [remote dir]",
	Short: "Upload a local file into a remote directory, the root by default.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		remoteDir := "/"
		if len(args) > 1 {
			remoteDir = args[1]
		}

		remote, err := globals.Get(ctx).Remote(ctx)
		if err != nil {
			return err
		}
		err = remote.Upload(ctx, args[0], remoteDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], core.JoinPath(remoteDir, filepath.Base(args[0])))
		return nil
	},
}
