package main

import (
	"os"

	"github.com/aretw0/tortuga/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP session server",
	Long: `Starts a headless engine and serves drawing sessions over HTTP. Each session
owns a turtle; clients post scripts to it and follow its checkpoints over SSE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		configPath, _ := cmd.Flags().GetString("config")
		metrics, _ := cmd.Flags().GetBool("metrics")

		ctx, stop := signalContext(cmd)
		defer stop()
		return cli.Serve(ctx, cli.ServeOptions{
			LogOptions:   logOptions(cmd),
			StoreOptions: storeOptions(cmd),
			Addr:         ":" + port,
			ConfigPath:   configPath,
			Metrics:      metrics,
			Stderr:       os.Stderr,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics on /metrics")
	addStoreFlags(serveCmd)
}
