package sim

import (
	"math/rand/v2"
	"time"

	"github.com/scdt-sim/scdt/sim/metrics"
	"github.com/scdt-sim/scdt/sim/network"
)

// Wake is what a process hands back to the session after a step: either the
// tick of its next resumption or termination. The zero Wake terminates, so a
// process that does not reschedule itself is retired.
type Wake struct {
	At   int64
	Next bool
}

// WakeAt asks to be resumed at tick t.
func WakeAt(t int64) Wake { return Wake{At: t, Next: true} }

// Terminate retires the process; it will never be resumed again.
func Terminate() Wake { return Wake{} }

// Process is a resumable unit of simulated behavior. It keeps all the state
// it needs between steps in its own fields; the session drives it through
// Start once and Resume at every wake-up. A step never blocks and is never
// interrupted: returning is the only yield point.
type Process interface {
	// ID names the process in traces and errors. It must be stable across
	// runs of the same network.
	ID() string
	// Start is called once when the process is attached to a session and
	// returns its first wake-up. It should not act on the network yet.
	Start(env Env) (Wake, error)
	// Resume performs one step at env.Now() and returns the next wake-up.
	Resume(env Env) (Wake, error)
}

// Env is the view of the session a process works against. Time is
// read-only: only the session advances it.
type Env interface {
	// Now returns the current tick.
	Now() int64
	// CurrentDate returns the calendar date of the current tick.
	CurrentDate() time.Time
	// Clock returns the tick/date mapping of the session.
	Clock() TimeMapper
	// Network returns the network the session mutates.
	Network() *network.Network
	// Config returns the session configuration.
	Config() Config
	// Rand returns the deterministic RNG stream of a subsystem.
	Rand(subsystem string) *rand.Rand
	// Metrics returns the session's metric recorder.
	Metrics() *metrics.Recorder
	// Submit hands a newly created order to the session's OrderProcessor.
	Submit(order *network.Order) error
	// CloseOrder closes an order at the current tick.
	CloseOrder(order *network.Order, status network.OrderStatus) error
	// Receive adds stock to a node and notifies the OrderProcessor.
	Receive(node *network.Node, sku network.SKUID, q network.Quantity) error
	// Spawn starts another process from within the current step.
	Spawn(p Process) error
	// Logf records an action of the current process in the event trace.
	Logf(format string, args ...any)
}
