package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/orderbot/core/clock"
	"github.com/kilianp07/orderbot/core/controller"
	"github.com/kilianp07/orderbot/core/events"
	"github.com/kilianp07/orderbot/core/journal"
	"github.com/kilianp07/orderbot/core/model"
	"github.com/kilianp07/orderbot/core/prediction"
	"github.com/kilianp07/orderbot/core/report"
)

type fixture struct {
	clk   *clock.Fake
	ctrl  *controller.Controller
	store *journal.MemoryStore
	h     http.Handler
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	ctrl, err := controller.New(controller.Config{ProcessingTime: 10 * time.Second}, clk, nil, nil)
	require.NoError(t, err)
	store := journal.NewMemoryStore()
	return &fixture{clk: clk, ctrl: ctrl, store: store, h: NewServer(ctrl, store, token, nil).Handler()}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	f.h.ServeHTTP(rr, req)
	return rr
}

func TestSubmitOrder(t *testing.T) {
	f := newFixture(t, "")
	rr := f.do(t, http.MethodPost, "/api/orders", `{"class":"vip","duration_ms":2500}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var o model.Order
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &o))
	assert.Equal(t, 101, o.ID)
	assert.Equal(t, model.ClassVIP, o.Class)
	assert.Equal(t, model.OrderPending, o.Status)
	assert.Equal(t, 2500*time.Millisecond, o.ProcessDuration)
}

func TestSubmitOrderRejectsBadInput(t *testing.T) {
	f := newFixture(t, "")
	for _, body := range []string{`{"class":"gold"}`, `{"class":"normal","duration_ms":-1}`,
		`{"class":"vip","duration_ms":9223372036855}`, `not json`} {
		rr := f.do(t, http.MethodPost, "/api/orders", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	assert.Equal(t, 0, f.ctrl.Stats().Total)
}

func TestBotLifecycle(t *testing.T) {
	f := newFixture(t, "")
	f.do(t, http.MethodPost, "/api/orders", `{"class":"normal"}`)

	rr := f.do(t, http.MethodPost, "/api/bots", "")
	require.Equal(t, http.StatusCreated, rr.Code)
	var b model.Bot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
	assert.Equal(t, 1, b.ID)
	assert.Equal(t, model.BotBusy, b.Status)

	rr = f.do(t, http.MethodDelete, "/api/bots/newest", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
	require.NotNil(t, b.CurrentOrder)
	assert.Equal(t, 101, b.CurrentOrder.ID)

	rr = f.do(t, http.MethodDelete, "/api/bots/newest", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var snap controller.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	require.Len(t, snap.Pending, 1)
	assert.Equal(t, model.OrderPending, snap.Pending[0].Status)
	assert.Empty(t, snap.Bots)
}

func TestReport(t *testing.T) {
	f := newFixture(t, "")
	f.do(t, http.MethodPost, "/api/bots", "")
	f.do(t, http.MethodPost, "/api/orders", `{"class":"normal","duration_ms":1000}`)
	f.clk.Advance(time.Second)

	rr := f.do(t, http.MethodGet, "/api/report", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var sum report.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sum))
	assert.Equal(t, 1, sum.All.Count)
	assert.InDelta(t, 1.0, sum.All.MeanProcessing, 1e-9)
}

func TestJournalFilters(t *testing.T) {
	f := newFixture(t, "")
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()
	require.NoError(t, f.store.Append(ctx, journal.Record{EventID: "a", Timestamp: base, Event: events.OrderCreated, OrderID: 101}))
	require.NoError(t, f.store.Append(ctx, journal.Record{EventID: "b", Timestamp: base.Add(time.Second), Event: events.OrderAssigned, OrderID: 101, BotID: 1}))
	require.NoError(t, f.store.Append(ctx, journal.Record{EventID: "c", Timestamp: base.Add(2 * time.Second), Event: events.OrderCreated, OrderID: 102}))

	cases := map[string][]string{
		"/api/journal":                            {"a", "b", "c"},
		"/api/journal?event=order.created":        {"a", "c"},
		"/api/journal?order_id=101":               {"a", "b"},
		"/api/journal?bot_id=1":                   {"b"},
		"/api/journal?start=2025-06-01T09:00:01Z": {"b", "c"},
		"/api/journal?end=2025-06-01T09:00:00Z":   {"a"},
	}
	for target, want := range cases {
		rr := f.do(t, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rr.Code, target)
		var out []journal.Record
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		var got []string
		for _, r := range out {
			got = append(got, r.EventID)
		}
		assert.Equal(t, want, got, target)
	}

	rr := f.do(t, http.MethodGet, "/api/journal?order_id=abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = f.do(t, http.MethodGet, "/api/journal?start=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestJournalWithoutStore(t *testing.T) {
	ctrl, err := controller.New(controller.Config{}, clock.NewFake(time.Now()), nil, nil)
	require.NoError(t, err)
	h := NewServer(ctrl, nil, "", nil).Handler()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/journal", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestBearerToken(t *testing.T) {
	f := newFixture(t, "tok")
	rr := f.do(t, http.MethodGet, "/api/status", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr = httptest.NewRecorder()
	f.h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestStartStopsOnCancel(t *testing.T) {
	ctrl, err := controller.New(controller.Config{}, nil, nil, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(ctrl, nil, "", nil).Start(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestEstimate(t *testing.T) {
	f := newFixture(t, "")
	rr := f.do(t, http.MethodGet, "/api/estimate?class=vip", "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	f.do(t, http.MethodPost, "/api/bots", "")
	f.do(t, http.MethodPost, "/api/orders", `{"class":"normal","duration_ms":4000}`)
	rr = f.do(t, http.MethodGet, "/api/estimate?class=normal&duration_ms=1000", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var eta prediction.ETA
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &eta))
	assert.Equal(t, 4*time.Second, eta.Wait)
	assert.Equal(t, eta.Start.Add(time.Second), eta.End)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/estimate?class=gold", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/estimate?class=vip&duration_ms=x", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/estimate?class=vip&duration_ms=9223372036855", "").Code)
}

func TestExportCompleted(t *testing.T) {
	f := newFixture(t, "")
	f.do(t, http.MethodPost, "/api/bots", "")
	f.do(t, http.MethodPost, "/api/orders", `{"class":"vip","duration_ms":1000}`)
	f.do(t, http.MethodPost, "/api/orders", `{"class":"normal"}`)
	f.clk.Advance(time.Second)

	rr := f.do(t, http.MethodGet, "/api/export?format=csv", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "101,VIP,1,"))

	rr = f.do(t, http.MethodGet, "/api/export", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var out []model.Order
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/export?format=xml", "").Code)
}
