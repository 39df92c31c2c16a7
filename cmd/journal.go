package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/orderbot/core/events"
	"github.com/kilianp07/orderbot/core/journal"
)

var journalQuery struct {
	event   string
	orderID int
	botID   int
	since   time.Duration
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the configured event journal",
	RunE:  runJournal,
}

func init() {
	f := journalCmd.Flags()
	f.StringVar(&journalQuery.event, "event", "", "event type, e.g. order.completed")
	f.IntVar(&journalQuery.orderID, "order", 0, "order id")
	f.IntVar(&journalQuery.botID, "bot", 0, "bot id")
	f.DurationVar(&journalQuery.since, "since", 0, "only records newer than this")
	rootCmd.AddCommand(journalCmd)
}

func runJournal(cmd *cobra.Command, args []string) error {
	cfg, closer, err := loadConfig(true)
	if err != nil {
		return err
	}
	defer closer.Close()
	if cfg.Journal.Type == "memory" {
		return fmt.Errorf("journal type %q keeps nothing between runs", cfg.Journal.Type)
	}
	store, err := journal.New(cfg.Journal)
	if err != nil {
		return err
	}
	defer store.Close()

	q := journal.Query{
		Event:   events.Type(journalQuery.event),
		OrderID: journalQuery.orderID,
		BotID:   journalQuery.botID,
	}
	if journalQuery.since > 0 {
		q.Start = time.Now().Add(-journalQuery.since)
	}
	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
