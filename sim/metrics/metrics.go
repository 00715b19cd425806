// Package metrics exposes simulation counters as Prometheus collectors on a
// private registry, so several sessions (or tests) never share state.
package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "scdt"

// Recorder holds the collectors of one session.
type Recorder struct {
	registry *prometheus.Registry

	events        prometheus.Counter
	ordersCreated *prometheus.CounterVec
	ordersClosed  *prometheus.CounterVec
	backorders    prometheus.Counter
	batches       prometheus.Counter
	unitsProduced prometheus.Counter
	liveProcesses prometheus.Gauge
	clock         prometheus.Gauge
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_processed_total",
			Help:      "Process resumptions executed by the session.",
		}),
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders submitted to the order processor, by kind.",
		}, []string{"kind"}),
		ordersClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_closed_total",
			Help:      "Orders closed, by kind and terminal status.",
		}, []string{"kind", "status"}),
		backorders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backorders_total",
			Help:      "Customer orders that could not be served from stock on arrival.",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "production_batches_total",
			Help:      "Production batches completed.",
		}),
		unitsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_produced_total",
			Help:      "Units of product output by completed batches.",
		}),
		liveProcesses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_processes",
			Help:      "Processes with a pending wake-up.",
		}),
		clock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clock_ticks",
			Help:      "Current simulation tick.",
		}),
	}
	r.registry.MustRegister(
		r.events, r.ordersCreated, r.ordersClosed, r.backorders,
		r.batches, r.unitsProduced, r.liveProcesses, r.clock,
	)
	return r
}

// Registry returns the registry holding the collectors.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// EventProcessed counts one resumption and moves the clock gauge.
func (r *Recorder) EventProcessed(tick int64) {
	r.events.Inc()
	r.clock.Set(float64(tick))
}

// OrderCreated counts a submitted order.
func (r *Recorder) OrderCreated(kind string) {
	r.ordersCreated.WithLabelValues(kind).Inc()
}

// OrderClosed counts a closed order.
func (r *Recorder) OrderClosed(kind, status string) {
	r.ordersClosed.WithLabelValues(kind, status).Inc()
}

// Backordered counts a customer order that went to the backlog.
func (r *Recorder) Backordered() {
	r.backorders.Inc()
}

// BatchCompleted counts a finished production batch of units.
func (r *Recorder) BatchCompleted(units int64) {
	r.batches.Inc()
	r.unitsProduced.Add(float64(units))
}

// ProcessStarted increments the live process gauge.
func (r *Recorder) ProcessStarted() { r.liveProcesses.Inc() }

// ProcessEnded decrements the live process gauge.
func (r *Recorder) ProcessEnded() { r.liveProcesses.Dec() }

// Sample is one scalar value read back from the registry.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Snapshot gathers every counter and gauge value, sorted by name then labels
// as the registry orders them.
func (r *Recorder) Snapshot() ([]Sample, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			s := Sample{Name: mf.GetName(), Labels: make(map[string]string)}
			for _, lp := range m.GetLabel() {
				s.Labels[lp.GetName()] = lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				s.Value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				s.Value = m.GetGauge().GetValue()
			default:
				continue
			}
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
