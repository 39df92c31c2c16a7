package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/orderbot/core/metrics"
	"github.com/kilianp07/orderbot/core/model"
)

func TestPromSinkRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordOrderEvent(coremetrics.OrderEvent{Type: "order.created"}))
	require.NoError(t, sink.RecordOrderEvent(coremetrics.OrderEvent{Type: "order.created"}))
	require.NoError(t, sink.RecordOrderCompletion([]coremetrics.OrderCompletion{
		{OrderID: 101, Class: model.ClassVIP, WaitTime: time.Second, ProcessingTime: 10 * time.Second},
		{OrderID: 102, Class: model.ClassNormal, WaitTime: 11 * time.Second, ProcessingTime: 10 * time.Second},
	}))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.events.WithLabelValues("order.created")))
	assert.Equal(t, 2, testutil.CollectAndCount(sink.processing))
	assert.Equal(t, 2, testutil.CollectAndCount(sink.wait))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, first.RecordOrderEvent(coremetrics.OrderEvent{Type: "bot.added"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(second.events.WithLabelValues("bot.added")))
}
