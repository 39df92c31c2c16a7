package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/orderbot/console"
	"github.com/kilianp07/orderbot/infra/logger"
	"github.com/kilianp07/orderbot/pkg/export"
	"github.com/kilianp07/orderbot/qa/scenarios"
)

var (
	scenarioPath   string
	simulateJSON   bool
	simulateExport string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay a YAML scenario on a simulated clock",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().StringVarP(&scenarioPath, "file", "f", "", "scenario file")
	simulateCmd.Flags().BoolVar(&simulateJSON, "json", false, "print the final snapshot as JSON")
	simulateCmd.Flags().StringVar(&simulateExport, "export", "", "print completed orders as csv or json")
	_ = simulateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	// keep stdout for the report
	closer, err := logger.Setup(logger.Config{Level: "info", Quiet: true})
	if err != nil {
		return err
	}
	defer closer.Close()

	sc, err := scenarios.Load(scenarioPath)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	res, err := scenarios.Run(sc, logger.New("simulate"))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch {
	case simulateExport != "":
		if err := export.Write(out, simulateExport, res.Snapshot.Completed); err != nil {
			return err
		}
	case simulateJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Snapshot); err != nil {
			return err
		}
	default:
		fmt.Fprintf(out, "scenario %s settled after %s\n", sc.Name, res.Elapsed)
		fmt.Fprint(out, console.Render(res.Snapshot))
	}
	if len(sc.Expected.Completed) > 0 || len(sc.Expected.Pending) > 0 {
		return sc.Check(res)
	}
	return nil
}
