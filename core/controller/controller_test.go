package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/orderbot/core/clock"
	"github.com/kilianp07/orderbot/core/events"
	"github.com/kilianp07/orderbot/core/model"
)

func newController(t *testing.T) (*Controller, *clock.Fake, *events.Recorder) {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	rec := &events.Recorder{}
	c, err := New(Config{ProcessingTime: 10 * time.Second}, clk, rec, nil)
	require.NoError(t, err)
	return c, clk, rec
}

func TestSubmitWithoutBotStaysPending(t *testing.T) {
	c, _, _ := newController(t)
	o := c.SubmitOrder(model.ClassNormal, 0)
	assert.Equal(t, 101, o.ID)
	assert.Equal(t, model.OrderPending, o.Status)
	assert.Equal(t, 10*time.Second, o.ProcessDuration)
}

func TestAddBotDispatchesImmediately(t *testing.T) {
	c, clk, _ := newController(t)
	c.SubmitOrder(model.ClassNormal, 0)
	vip := c.SubmitOrder(model.ClassVIP, 0)
	b := c.AddBot()
	assert.Equal(t, model.BotBusy, b.Status)
	require.NotNil(t, b.CurrentOrder)
	assert.Equal(t, vip.ID, b.CurrentOrder.ID)

	clk.Advance(10 * time.Second)
	snap := c.Snapshot()
	require.Len(t, snap.Completed, 1)
	assert.Equal(t, vip.ID, snap.Completed[0].ID)
	assert.Empty(t, snap.Pending)
	assert.Equal(t, 2, snap.Stats.Total)
	assert.Equal(t, 1, snap.Stats.Processing)
	assert.Equal(t, 1, snap.Report.All.Count)
}

func TestSubmitWithIdleBotIsProcessing(t *testing.T) {
	c, _, _ := newController(t)
	c.AddBot()
	o := c.SubmitOrder(model.ClassVIP, 3*time.Second)
	assert.Equal(t, model.OrderProcessing, o.Status)
	assert.Equal(t, 1, o.BotID)
	assert.Equal(t, 3*time.Second, o.ProcessDuration)
}

func TestRemoveBotRedispatchesToIdleBot(t *testing.T) {
	c, clk, rec := newController(t)
	c.AddBot()
	c.AddBot()
	first := c.SubmitOrder(model.ClassNormal, 0)
	second := c.SubmitOrder(model.ClassNormal, 0)
	clk.Advance(4 * time.Second)
	// the VIP order waits for bot 1 since both bots are busy
	c.SubmitOrder(model.ClassVIP, 0)
	assert.Equal(t, 1, c.Stats().Pending)

	removed := c.RemoveBot()
	require.NotNil(t, removed)
	assert.Equal(t, 2, removed.ID)
	require.NotNil(t, removed.CurrentOrder)
	assert.Equal(t, second.ID, removed.CurrentOrder.ID)
	assert.Equal(t, []events.Type{events.OrderRequeued, events.BotRemoved}, filter(rec.Types(), events.BotRemoved, events.OrderRequeued))

	clk.Advance(6 * time.Second)
	snap := c.Snapshot()
	require.Len(t, snap.Completed, 1)
	assert.Equal(t, first.ID, snap.Completed[0].ID)
	require.Len(t, snap.Bots, 1)
	require.NotNil(t, snap.Bots[0].CurrentOrder)
	assert.NotEqual(t, second.ID, snap.Bots[0].CurrentOrder.ID, "VIP order goes first")
	assert.Equal(t, []int{second.ID}, ids(snap.Pending))
}

func TestRemoveBotOnEmptyPool(t *testing.T) {
	c, _, _ := newController(t)
	assert.Nil(t, c.RemoveBot())
}

func TestSnapshotOrdersBusyBotsFirst(t *testing.T) {
	c, _, _ := newController(t)
	c.AddBot()
	c.AddBot()
	c.AddBot()
	c.SubmitOrder(model.ClassNormal, 0)
	// bot 1 is busy, bot 3 is replaced by bot 4, then bot 2 takes an order
	c.RemoveBot()
	c.AddBot()
	c.SubmitOrder(model.ClassNormal, 0)

	snap := c.Snapshot()
	var got []int
	for _, b := range snap.Bots {
		got = append(got, b.ID)
	}
	assert.Equal(t, []int{1, 2, 4}, got)
	assert.Equal(t, model.BotBusy, snap.Bots[0].Status)
	assert.Equal(t, model.BotBusy, snap.Bots[1].Status)
	assert.Equal(t, []int{4}, snap.Available)
}

func ids(os []model.Order) []int {
	var out []int
	for _, o := range os {
		out = append(out, o.ID)
	}
	return out
}

func filter(ts []events.Type, keep ...events.Type) []events.Type {
	var out []events.Type
	for _, t := range ts {
		for _, k := range keep {
			if t == k {
				out = append(out, t)
			}
		}
	}
	return out
}

func TestEstimateAndForecast(t *testing.T) {
	c, clk, _ := newController(t)
	_, ok := c.Estimate(model.ClassVIP, 0)
	assert.False(t, ok)

	c.AddBot()
	c.SubmitOrder(model.ClassNormal, 0)
	c.SubmitOrder(model.ClassNormal, 0)
	clk.Advance(2 * time.Second)

	eta, ok := c.Estimate(model.ClassVIP, 0)
	require.True(t, ok)
	assert.Equal(t, clk.Now().Add(8*time.Second), eta.Start)
	assert.Equal(t, 8*time.Second, eta.Wait)

	snap := c.Snapshot()
	require.Len(t, snap.Forecast, 1)
	assert.Equal(t, 102, snap.Forecast[0].OrderID)
	assert.Equal(t, 10*time.Second, snap.Forecast[0].Wait)
}
