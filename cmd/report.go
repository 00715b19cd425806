package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/stat"

	sim "github.com/scdt-sim/scdt/sim"
	"github.com/scdt-sim/scdt/sim/network"
	"github.com/scdt-sim/scdt/sim/trace"
)

// orderKey groups orders for the report.
type orderKey struct {
	kind   network.OrderKind
	status network.OrderStatus
}

// demandSummary aggregates the generated order sizes of all demands.
type demandSummary struct {
	Demands    int
	Orders     int
	Units      int64
	MeanSize   float64
	StdDevSize float64
	MeanTotal  float64 // mean units per demand
}

func summarizeDemands(demands []*network.Demand) demandSummary {
	sum := demandSummary{Demands: len(demands)}
	var sizes, totals []float64
	for _, d := range demands {
		for _, e := range d.History() {
			sizes = append(sizes, float64(e.Quantity))
			sum.Units += int64(e.Quantity)
		}
		totals = append(totals, float64(d.TotalQuantity()))
	}
	sum.Orders = len(sizes)
	switch {
	case len(sizes) > 1:
		sum.MeanSize, sum.StdDevSize = stat.MeanStdDev(sizes, nil)
	case len(sizes) == 1:
		// The sample deviation of a single order is undefined; report 0.
		sum.MeanSize = sizes[0]
	}
	if len(totals) > 0 {
		sum.MeanTotal = stat.Mean(totals, nil)
	}
	return sum
}

// printReport writes a human-readable summary of a finished session.
func printReport(w io.Writer, s *sim.Session, elapsed time.Duration) error {
	net := s.Network()
	var b strings.Builder

	fmt.Fprintf(&b, "=== Simulation Report: %s ===\n", net.Name)
	fmt.Fprintf(&b, "Run:          %s\n", s.RunID())
	fmt.Fprintf(&b, "State:        %s\n", s.State())
	fmt.Fprintf(&b, "Start date:   %s\n", s.Clock().StartDate().Format(sim.DateLayout))
	fmt.Fprintf(&b, "Final date:   %s (tick %s)\n", s.CurrentDate().Format(sim.DateLayout), humanize.Comma(s.Now()))
	fmt.Fprintf(&b, "Pending:      %s events\n", humanize.Comma(int64(s.Pending())))
	ts := trace.Summarize(s.Trace())
	fmt.Fprintf(&b, "Trace:        %s records from %s processes, ticks %d-%d\n",
		humanize.Comma(int64(ts.TotalRecords)), humanize.Comma(int64(ts.UniqueProcesses)), ts.FirstTick, ts.LastTick)
	fmt.Fprintf(&b, "Wall time:    %s\n", elapsed.Round(time.Millisecond))
	if err := s.Err(); err != nil {
		fmt.Fprintf(&b, "Error:        %v\n", err)
	}

	counts := make(map[orderKey]int)
	units := make(map[orderKey]int64)
	for _, o := range net.Orders() {
		k := orderKey{o.Kind, o.Status}
		counts[k]++
		units[k] += int64(o.TotalQuantity())
	}
	keys := make([]orderKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		return keys[i].status < keys[j].status
	})
	fmt.Fprintf(&b, "\nOrders (%s):\n", humanize.Comma(int64(len(net.Orders()))))
	for _, k := range keys {
		fmt.Fprintf(&b, "  %-14s %-12s %10s orders %14s units\n",
			k.kind, k.status, humanize.Comma(int64(counts[k])), humanize.Comma(units[k]))
	}

	ds := summarizeDemands(net.Demands())
	fmt.Fprintf(&b, "\nDemand:\n")
	fmt.Fprintf(&b, "  demands            %s\n", humanize.Comma(int64(ds.Demands)))
	fmt.Fprintf(&b, "  orders generated   %s\n", humanize.Comma(int64(ds.Orders)))
	fmt.Fprintf(&b, "  units generated    %s\n", humanize.Comma(ds.Units))
	fmt.Fprintf(&b, "  order size         mean %s, stddev %s\n",
		humanize.CommafWithDigits(ds.MeanSize, 2), humanize.CommafWithDigits(ds.StdDevSize, 2))
	fmt.Fprintf(&b, "  units per demand   mean %s\n", humanize.CommafWithDigits(ds.MeanTotal, 2))

	if sf, ok := s.Processor().(*sim.StockFulfillment); ok {
		fmt.Fprintf(&b, "  backlog            %s orders\n", humanize.Comma(int64(len(sf.Backlog()))))
	}

	samples, err := s.Metrics().Snapshot()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	fmt.Fprintf(&b, "\nMetrics:\n")
	for _, m := range samples {
		fmt.Fprintf(&b, "  %s%s %s\n", m.Name, formatLabels(m.Labels), humanize.CommafWithDigits(m.Value, 2))
	}

	_, err = io.WriteString(w, b.String())
	return err
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = fmt.Sprintf("%s=%q", k, labels[k])
	}
	return "{" + strings.Join(parts, ",") + "}"
}
