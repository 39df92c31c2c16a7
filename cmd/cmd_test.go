package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/orderbot/core/controller"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		cfgPath, scenarioPath, simulateJSON, simulateExport = "", "", false, ""
		journalQuery.event, journalQuery.orderID, journalQuery.botID, journalQuery.since = "", 0, 0, 0
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSimulatePrintsTables(t *testing.T) {
	out, err := execute(t, "simulate", "-f", filepath.Join("..", "qa", "scenarios", "vip_first.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "scenario vip_first settled after 20s")
	assert.Contains(t, out, "COMPLETED ORDERS:")
}

func TestSimulateJSON(t *testing.T) {
	out, err := execute(t, "simulate", "--json", "-f", filepath.Join("..", "qa", "scenarios", "remove_and_replace.yaml"))
	require.NoError(t, err)
	start := strings.Index(out, "{")
	require.GreaterOrEqual(t, start, 0)
	var snap controller.Snapshot
	require.NoError(t, json.NewDecoder(strings.NewReader(out[start:])).Decode(&snap))
	assert.Len(t, snap.Completed, 3)
	assert.Equal(t, 3, snap.Stats.Completed)
}

func TestSimulateFailsOnMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: bad
steps:
  - {at_ms: 0, action: normal}
expected:
  completed: [101]
`), 0o600))
	_, err := execute(t, "simulate", "-f", path)
	assert.Error(t, err)
}

func TestJournalRefusesMemoryStore(t *testing.T) {
	_, err := execute(t, "journal")
	assert.Error(t, err)
}

func TestJournalReadsJSONL(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "journal.jsonl")
	require.NoError(t, os.WriteFile(logPath, []byte(
		`{"event_id":"a","timestamp":"2025-06-01T09:00:00Z","event":"order.created","order_id":101,"class":"VIP"}`+"\n"+
			`{"event_id":"b","timestamp":"2025-06-01T09:00:01Z","event":"order.assigned","order_id":101,"bot_id":1,"class":"VIP"}`+"\n"),
		0o600))
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("journal:\n  type: jsonl\n  conf:\n    path: "+logPath+"\n"), 0o600))

	out, err := execute(t, "-c", cfgFile, "journal", "--event", "order.assigned")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"event_id":"b"`)
}

func TestSimulateExportCSV(t *testing.T) {
	out, err := execute(t, "simulate", "--export", "csv", "-f", filepath.Join("..", "qa", "scenarios", "vip_first.yaml"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "order_id,"))
	assert.True(t, strings.HasPrefix(lines[1], "102,VIP,1,"))
	assert.True(t, strings.HasPrefix(lines[2], "101,NORMAL,1,"))
}
