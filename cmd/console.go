package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/orderbot/app"
	"github.com/kilianp07/orderbot/console"
	"github.com/kilianp07/orderbot/infra/logger"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Drive the dispatcher from an interactive menu",
	RunE:  runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctx, stop := withSignals(cmd.Context())
	defer stop()

	cfg, closer, err := loadConfig(true)
	if err != nil {
		return err
	}
	defer closer.Close()

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	svc.Start(ctx)
	return console.New(svc.Controller, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
}
