package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/orderbot/app"
	"github.com/kilianp07/orderbot/config"
	"github.com/kilianp07/orderbot/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "orderbot",
	Short: "Order dispatch service matching VIP and normal orders to bots",
	RunE:  run,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dispatcher with the HTTP API",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.ExecuteContext(context.Background()) }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := withSignals(cmd.Context())
	defer stop()

	cfg, closer, err := loadConfig(false)
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
	return svc.Run(ctx)
}

// loadConfig reads the configuration and sets up logging. quiet keeps log
// lines off stdout.
func loadConfig(quiet bool) (*config.Config, io.Closer, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Logging.Quiet = quiet
	closer, err := logger.Setup(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, closer, nil
}

func withSignals(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
