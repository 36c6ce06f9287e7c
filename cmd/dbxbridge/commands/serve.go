package commands

import (
	"time"

	"dbxbridge/cmd/dbxbridge/globals"
	"dbxbridge/lib/telemetry"
	"dbxbridge/lib/util/serviceutil"
	"dbxbridge/services/webserver"

	"github.com/spf13/cobra"
)

var servePort int

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on, overrides server.port in the config.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve files from the configured root folder over HTTP.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		value := globals.Get(ctx)

		port := value.Config.Server.Port
		if servePort != 0 {
			port = servePort
		}

		remote, err := value.Remote(ctx)
		if err != nil {
			return err
		}
		server := webserver.NewServer(remote, value.Config.ServerOptions())

		telemetry.InstrumentPerfStats(ctx, time.Second*5)
		return serviceutil.StartHttpServer(ctx, port, server.Handler())
	},
}
