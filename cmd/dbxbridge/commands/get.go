package commands

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"dbxbridge/cmd/dbxbridge/globals"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <remote file> [local path]",
	Short: "Download a remote file, into the current directory by default.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		remotePath := args[0]
		local := path.Base(remotePath)
		if len(args) > 1 {
			local = args[1]
		}
		info, err := os.Stat(local)
		if err == nil && info.IsDir() {
			local = filepath.Join(local, path.Base(remotePath))
		}

		remote, err := globals.Get(ctx).Remote(ctx)
		if err != nil {
			return err
		}
		entry, err := findRemote(ctx, remote, remotePath)
		if err != nil {
			return err
		}
		if entry.IsFolder() {
			return fmt.Errorf("%s is a folder", entry.FullPath())
		}

		err = remote.Download(ctx, entry.FullPath(), local, entry.Token)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", entry.FullPath(), local)
		return nil
	},
}
