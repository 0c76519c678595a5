package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yeisme/uploadvault/pkg/app"
	"github.com/yeisme/uploadvault/pkg/configs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the HTTP API and the cron jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, configs.GetConfig())
		if err != nil {
			return err
		}

		return a.Run(ctx)
	},
}

func registerServeCommands() {
	rootCmd.AddCommand(serveCmd)
}
