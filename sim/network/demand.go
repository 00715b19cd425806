package network

import (
	"fmt"
	"time"
)

// DemandProcessKind selects how a Demand generates orders over time.
type DemandProcessKind string

const (
	// DemandSimple fires every Interval ticks with a fixed Quantity.
	DemandSimple DemandProcessKind = "simple"
	// DemandPoisson draws Poisson quantities around MeanQuantity with
	// exponential inter-arrival gaps around MeanInterval.
	DemandPoisson DemandProcessKind = "poisson"
)

// DemandProcessSpec parameterizes the process that turns a Demand into
// customer orders. Fields unused by Kind are ignored.
type DemandProcessSpec struct {
	Kind          DemandProcessKind
	Interval      int64    // ticks between orders (simple)
	Quantity      Quantity // units per order (simple)
	MeanInterval  float64  // mean ticks between orders (poisson)
	MeanQuantity  float64  // mean units per order (poisson)
	LastOrderDate time.Time
}

// Validate checks that the spec can drive a process.
func (s DemandProcessSpec) Validate() error {
	switch s.Kind {
	case DemandSimple:
		if s.Interval <= 0 {
			return fmt.Errorf("simple demand interval must be positive, got %d", s.Interval)
		}
		if s.Quantity <= 0 {
			return fmt.Errorf("simple demand quantity must be positive, got %d", s.Quantity)
		}
	case DemandPoisson:
		if s.MeanInterval <= 0 {
			return fmt.Errorf("poisson demand mean_interval must be positive, got %f", s.MeanInterval)
		}
		if s.MeanQuantity <= 0 {
			return fmt.Errorf("poisson demand mean_quantity must be positive, got %f", s.MeanQuantity)
		}
	default:
		return fmt.Errorf("unknown demand process kind %q", s.Kind)
	}
	if s.LastOrderDate.IsZero() {
		return fmt.Errorf("demand last_order_date must be set")
	}
	return nil
}

// HistoryEntry is one generated order quantity, kept for forecasting.
type HistoryEntry struct {
	Tick     int64
	Date     time.Time
	Quantity Quantity
}

// Demand is a SKU-specific ongoing source of orders at a demand node.
// Its history is append-only.
type Demand struct {
	ID      DemandID
	Node    NodeID
	SKU     SKUID
	Process DemandProcessSpec

	history []HistoryEntry
}

// Record appends a generated order quantity to the history.
func (d *Demand) Record(tick int64, date time.Time, q Quantity) {
	d.history = append(d.history, HistoryEntry{Tick: tick, Date: date, Quantity: q})
}

// History returns a copy of the recorded entries in generation order.
func (d *Demand) History() []HistoryEntry {
	out := make([]HistoryEntry, len(d.history))
	copy(out, d.history)
	return out
}

// HistoryLen returns the number of recorded entries.
func (d *Demand) HistoryLen() int {
	return len(d.history)
}

// TotalQuantity sums all recorded quantities.
func (d *Demand) TotalQuantity() Quantity {
	var total Quantity
	for _, h := range d.history {
		total += h.Quantity
	}
	return total
}
