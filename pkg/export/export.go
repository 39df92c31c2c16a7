// Package export writes completed orders in CSV or JSON form.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/orderbot/core/model"
)

// Header is the CSV column set.
var Header = []string{"order_id", "class", "bot_id", "created_at", "process_start_at", "process_end_at", "wait_ms", "processing_ms"}

// WriteJSON writes the orders to w as a JSON array.
func WriteJSON(w io.Writer, orders []model.Order) error {
	if orders == nil {
		orders = []model.Order{}
	}
	return json.NewEncoder(w).Encode(orders)
}

// WriteCSV writes one row per order. Missing timestamps are left empty.
func WriteCSV(w io.Writer, orders []model.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, o := range orders {
		rec := []string{
			strconv.Itoa(o.ID),
			string(o.Class),
			strconv.Itoa(o.BotID),
			o.CreatedAt.Format(time.RFC3339Nano),
			formatTime(o.ProcessStartAt),
			formatTime(o.ProcessEndAt),
			formatMS(o.WaitTime()),
			formatMS(o.ProcessingTime()),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write dispatches on format, which is "csv" or "json".
func Write(w io.Writer, format string, orders []model.Order) error {
	switch format {
	case "csv":
		return WriteCSV(w, orders)
	case "json", "":
		return WriteJSON(w, orders)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func formatMS(d time.Duration, ok bool) string {
	if !ok {
		return ""
	}
	return strconv.FormatInt(d.Milliseconds(), 10)
}
