package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CountersAccumulate(t *testing.T) {
	r := NewRecorder()
	r.EventProcessed(0)
	r.EventProcessed(15)
	r.OrderCreated("CustomerOrder")
	r.OrderCreated("CustomerOrder")
	r.OrderCreated("PurchaseOrder")
	r.OrderClosed("CustomerOrder", "Fulfilled")
	r.Backordered()
	r.BatchCompleted(50)
	r.BatchCompleted(50)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.events))
	assert.Equal(t, 15.0, testutil.ToFloat64(r.clock))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.ordersCreated.WithLabelValues("CustomerOrder")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ordersCreated.WithLabelValues("PurchaseOrder")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ordersClosed.WithLabelValues("CustomerOrder", "Fulfilled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.backorders))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.batches))
	assert.Equal(t, 100.0, testutil.ToFloat64(r.unitsProduced))
}

func TestRecorder_LiveProcessesGauge(t *testing.T) {
	r := NewRecorder()
	r.ProcessStarted()
	r.ProcessStarted()
	r.ProcessEnded()
	assert.Equal(t, 1.0, testutil.ToFloat64(r.liveProcesses))
}

func TestRecorder_RegistriesAreIndependent(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()
	a.Backordered()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.backorders))
}

func TestRecorder_Snapshot(t *testing.T) {
	r := NewRecorder()
	r.OrderCreated("CustomerOrder")
	r.EventProcessed(3)

	samples, err := r.Snapshot()
	require.NoError(t, err)

	byName := make(map[string]Sample)
	for _, s := range samples {
		byName[s.Name] = s
	}
	require.Contains(t, byName, "scdt_orders_created_total")
	assert.Equal(t, "CustomerOrder", byName["scdt_orders_created_total"].Labels["kind"])
	assert.Equal(t, 1.0, byName["scdt_orders_created_total"].Value)
	assert.Equal(t, 3.0, byName["scdt_clock_ticks"].Value)
	assert.Equal(t, 1.0, byName["scdt_events_processed_total"].Value)
}
