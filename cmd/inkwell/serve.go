package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eringen/inkwell"
	"github.com/eringen/inkwell/views"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sync content and serve the site",
	Long: `Sync the content directory into the database and serve the site over HTTP.
The admin UI is available at /admin/ when ADMIN_PASSWORD and
ADMIN_SESSION_SECRET are set.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := inkwell.LoadConfig(configPath)
		if err != nil {
			fatal("Failed to load config", err)
		}

		app := inkwell.New(cfg, views.Default(cfg))

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sig
			slog.Info("shutting down")
			app.Close()
			os.Exit(0)
		}()

		slog.Info("serving", "addr", cfg.Addr, "content", cfg.ContentDir)
		if err := app.Start(); err != nil {
			fatal("Server stopped", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
