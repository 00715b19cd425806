// Package sim provides the discrete-event simulation kernel for supply-chain
// networks.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - process.go: the Process contract (Start/Resume returning a Wake) and the Env it acts on
//   - event_queue.go: the (due, sequence) ordered queue of wake-ups
//   - session.go: the event loop, lifecycle states and trace recording
//
// # Architecture
//
// The sim package owns time and control flow; the data it acts on lives in
// sub-packages:
//   - sim/network/: SKUs, nodes and their capabilities, demands, orders, recipes, id allocation
//   - sim/geo/: great-circle distance
//   - sim/trace/: the per-action event trace
//   - sim/metrics/: Prometheus counters and gauges on a private registry
//   - sim/scenario/: YAML scenario loading
//
// A Session is single-threaded. Exactly one process step runs at a time and
// a step is never interrupted, so processes mutate network entities without
// locks. Events due at the same tick run in the order they were scheduled.
//
// # Domain processes
//
//   - SimpleDemandProcess, PoissonDemandProcess: customer orders from a Demand
//   - ReplenishmentProcess, DeliveryProcess: periodic-review purchasing and shipment
//   - ProductionRunProcess: batch production on one line
//
// Orders go to the session's OrderProcessor. RecordingProcessor keeps them
// open; StockFulfillment ships from the nearest stock and backorders the rest.
package sim
