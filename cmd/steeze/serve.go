package main

import (
	"github.com/joeydtaylor/steeze-phases/pkg/serverfx"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveService string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for a manifest",
	Long: `Run the HTTP server for a manifest.

The listen address comes from SERVER_LISTEN_ADDRESS (default :4000). TLS 1.3
is used when SSL_SERVER_CERTIFICATE and SSL_SERVER_KEY point at existing files.
Auth is configured through AUTH_JWT_* variables.`,
	Args: cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		app := fx.New(serverfx.Module(
			serverfx.WithService(serveService),
			// already resolved against APP_MANIFEST
			serverfx.WithManifestEnv(""),
			serverfx.WithDefaultManifest(manifestPath()),
		))
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveService, "service", "steeze", "service name used in logs")
	rootCmd.AddCommand(serveCmd)
}
