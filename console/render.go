package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kilianp07/orderbot/core/controller"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	pendingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	doneStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	botsStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

const (
	timeLayout = "15:04:05"
	separator  = "========================================"
)

// Render formats the pending, completed and bot tables of a snapshot.
func Render(s controller.Snapshot) string {
	eta := make(map[int]time.Time, len(s.Forecast))
	for _, e := range s.Forecast {
		eta[e.OrderID] = e.Start
	}
	var pending, completed, bots [][]string
	for _, o := range s.Pending {
		start := "-"
		if t, ok := eta[o.ID]; ok {
			start = t.Format(timeLayout)
		}
		pending = append(pending, []string{fmt.Sprint(o.ID), string(o.Class), o.CreatedAt.Format(timeLayout), start})
	}
	for _, o := range s.Completed {
		completed = append(completed, []string{
			fmt.Sprint(o.ID), string(o.Class), fmt.Sprint(o.BotID),
			o.CreatedAt.Format(timeLayout), formatTime(o.ProcessStartAt), formatTime(o.ProcessEndAt),
		})
	}
	for _, b := range s.Bots {
		row := []string{fmt.Sprint(b.ID), string(b.Status), "-", "-", "-"}
		if o := b.CurrentOrder; o != nil {
			row[2], row[3], row[4] = fmt.Sprint(o.ID), string(o.Class), formatTime(o.ProcessStartAt)
		}
		bots = append(bots, row)
	}

	sections := []string{
		separator,
		section(pendingStyle.Render("PENDING ORDERS:"), []string{"id", "class", "created", "eta"}, pending),
		section(doneStyle.Render("COMPLETED ORDERS:"), []string{"id", "class", "bot", "created", "started", "ended"}, completed),
		section(botsStyle.Render("BOTS:"), []string{"id", "status", "order", "class", "started"}, bots),
		fmt.Sprintf("pending %d | processing %d | completed %d | total %d",
			s.Stats.Pending, s.Stats.Processing, s.Stats.Completed, s.Stats.Total),
		separator,
	}
	return strings.Join(sections, "\n\n") + "\n"
}

func section(title string, headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return title + "\n  (none)"
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return title + "\n" + t.Render()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(timeLayout)
}
