package scenarios

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/orderbot/core/events"
	"github.com/kilianp07/orderbot/core/model"
)

func TestScenarioFiles(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario files")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			res, err := Run(sc, nil)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if err := sc.Check(res); err != nil {
				t.Error(err)
			}
			st := res.Snapshot.Stats
			if st.Pending+st.Processing+st.Completed != st.Total {
				t.Errorf("orders not conserved: %+v", st)
			}
			if st.Processing != 0 {
				t.Errorf("%d orders still processing after quiescence", st.Processing)
			}
		})
	}
}

func TestRunRecordsTimeline(t *testing.T) {
	sc, err := Load("remove_and_replace.yaml")
	require.NoError(t, err)
	res, err := Run(sc, nil)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, res.Elapsed)

	var requeued []int
	for _, ev := range res.Events {
		if ev.Type == events.OrderRequeued {
			requeued = append(requeued, ev.OrderID)
			assert.Equal(t, Epoch.Add(4*time.Second), ev.At)
		}
	}
	assert.Equal(t, []int{102}, requeued)

	byID := map[int]time.Time{}
	for _, o := range res.Snapshot.Completed {
		require.NotNil(t, o.ProcessEndAt)
		byID[o.ID] = *o.ProcessEndAt
	}
	assert.Equal(t, Epoch.Add(16*time.Second), byID[102])
	assert.Equal(t, Epoch.Add(20*time.Second), byID[103])
}

func TestParseDefaultsAndOverrides(t *testing.T) {
	sc, err := Parse([]byte(`
name: override
first_order_id: 1
steps:
  - {at_ms: 0, action: add_bot}
  - {at_ms: 0, action: normal, duration_ms: 1500}
  - {at_ms: 0, action: normal}
expected:
  completed: [1, 2]
`))
	require.NoError(t, err)
	res, err := Run(sc, nil)
	require.NoError(t, err)
	require.NoError(t, sc.Check(res))
	assert.Equal(t, 11500*time.Millisecond, res.Elapsed)
}

func TestCheckReportsMismatch(t *testing.T) {
	sc := &Scenario{
		Name:     "mismatch",
		Steps:    []Step{{Action: ActionNormal}},
		Expected: Expected{Completed: []int{101}},
	}
	res, err := Run(sc, nil)
	require.NoError(t, err)
	assert.Error(t, sc.Check(res))
	assert.Equal(t, []int{101}, res.PendingIDs())
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		steps []Step
		want  error
	}{
		"empty":   {nil, ErrNoSteps},
		"unknown": {[]Step{{Action: "dance"}}, ErrUnknownAction},
		"order":   {[]Step{{AtMS: 10, Action: ActionVIP}, {AtMS: 5, Action: ActionVIP}}, ErrStepOrder},
	}
	for name, c := range cases {
		sc := &Scenario{Name: name, Steps: c.steps}
		err := sc.Validate()
		if !errors.Is(err, c.want) {
			t.Errorf("%s: got %v, want %v", name, err, c.want)
		}
	}
	sc := &Scenario{Steps: []Step{{Action: ActionVIP, DurationMS: -1}}}
	assert.Error(t, sc.Validate())
	sc = &Scenario{Steps: []Step{{Action: ActionVIP, DurationMS: model.MaxDurationMS + 1}}}
	assert.ErrorIs(t, sc.Validate(), model.ErrDurationRange)
	sc = &Scenario{ProcessingMS: model.MaxDurationMS + 1, Steps: []Step{{Action: ActionVIP}}}
	assert.ErrorIs(t, sc.Validate(), model.ErrDurationRange)
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	tmp, err := os.CreateTemp(t.TempDir(), "bad*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString(":"); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmp.Name()); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
