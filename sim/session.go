// sim/session.go
package sim

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/scdt-sim/scdt/sim/metrics"
	"github.com/scdt-sim/scdt/sim/network"
	"github.com/scdt-sim/scdt/sim/trace"
)

// SessionState is the lifecycle state of a Session.
type SessionState int

const (
	StateCreated SessionState = iota
	StateInitialized
	StateRunning
	StateCompleted
	StateStopped
	StateFailed
)

// String method for SessionState enum
func (s SessionState) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateInitialized:
		return "Initialized"
	case StateRunning:
		return "Running"
	case StateCompleted:
		return "Completed"
	case StateStopped:
		return "Stopped"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// sessionProcessID attributes trace records written outside any process.
const sessionProcessID = "session"

// Session is the core object that holds simulation time, the network and the
// event loop. It owns the network for the duration of the run.
//
// Lifecycle: Created → Init → Initialized → Run/Step → Running → Completed,
// with Stop → Stopped and any process error → Failed. Completed sessions
// may be run again with a later bound.
//
// Thread-safety: NOT thread-safe. Exactly one process resumes at a time.
type Session struct {
	net       *network.Network
	cfg       Config
	clock     TimeMapper
	queue     *EventQueue
	rng       *PartitionedRNG
	processor OrderProcessor
	trace     *trace.EventTrace
	echo      *logrus.Logger
	metrics   *metrics.Recorder
	runID     string
	log       *logrus.Entry

	state   SessionState
	err     error
	current Process // process whose step is executing, nil between steps
}

// NewSession creates a session over net. No process is scheduled until Init.
func NewSession(net *network.Network, cfg Config) (*Session, error) {
	if net == nil {
		return nil, fmt.Errorf("network cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	s := &Session{
		net:       net,
		cfg:       cfg,
		clock:     NewTimeMapper(cfg.StartDate),
		queue:     NewEventQueue(),
		rng:       NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		processor: cfg.Processor,
		trace:     trace.NewEventTrace(cfg.TraceLevel),
		metrics:   cfg.Metrics,
		runID:     uuid.NewString(),
		state:     StateCreated,
	}
	if s.processor == nil {
		s.processor = NewRecordingProcessor()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewRecorder()
	}
	if cfg.Echo {
		s.echo = newEchoLogger(cfg.EchoOutput)
	}
	s.log = logrus.WithFields(logrus.Fields{"run": s.runID, "network": net.Name})
	return s, nil
}

// Init validates referential integrity and starts every process attached to
// the network: one per Demand and one per reorder policy. Each posts its
// first wake-up into the event queue.
func (s *Session) Init() error {
	if s.state != StateCreated {
		return ErrAlreadyInitialized
	}
	s.log.Infof("Start date: %s", s.clock.StartDate().Format(DateLayout))

	if err := s.net.Validate(); err != nil {
		return s.abort(fmt.Errorf("validating network: %w", err))
	}
	procs, err := s.attachedProcesses()
	if err != nil {
		return s.abort(err)
	}
	for _, p := range procs {
		if err := s.Spawn(p); err != nil {
			return s.abort(&ProcessError{Tick: s.Now(), Date: s.clock.Format(s.Now()), ProcessID: p.ID(), Err: err})
		}
	}
	s.state = StateInitialized
	s.log.Infof("Scheduled %d processes", s.queue.Len())
	return nil
}

func (s *Session) attachedProcesses() ([]Process, error) {
	var procs []Process
	for _, node := range s.net.Nodes() {
		for _, d := range node.Demands {
			p, err := NewDemandProcess(d)
			if err != nil {
				return nil, fmt.Errorf("demand %d at %q: %w", d.ID, node.Name, err)
			}
			procs = append(procs, p)
		}
		if node.Inventory != nil {
			for _, pol := range node.Inventory.Policies {
				procs = append(procs, NewReplenishmentProcess(node, pol))
			}
		}
	}
	return procs, nil
}

// Run processes events in (due, sequence) order while the next due time is
// at most until. An event due after until stays queued for a later Run.
// The clock only advances to due times of processed events.
func (s *Session) Run(until int64) error {
	if err := s.checkRunnable(); err != nil {
		return err
	}
	s.state = StateRunning
	for {
		due, ok := s.queue.PeekNextTime()
		if !ok || due > until {
			break
		}
		if err := s.step(); err != nil {
			return err
		}
	}
	s.state = StateCompleted
	s.log.Debugf("[tick %07d] Run(until=%d) completed, %d events pending", s.Now(), until, s.queue.Len())
	return nil
}

// Step resumes exactly one process, ignoring any bound. It returns false
// when the queue was empty. The session stays Running after a step.
func (s *Session) Step() (bool, error) {
	if err := s.checkRunnable(); err != nil {
		return false, err
	}
	if s.queue.Len() == 0 {
		s.state = StateCompleted
		return false, nil
	}
	s.state = StateRunning
	if err := s.step(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) step() error {
	ev, ok := s.queue.PopNext()
	if !ok {
		return nil
	}
	p := ev.Process
	s.current = p
	logrus.Debugf("[tick %07d] resuming %s", ev.Due, p.ID())
	wake, err := p.Resume(s)
	s.current = nil
	s.metrics.EventProcessed(ev.Due)
	if err == nil {
		err = s.settle(p, wake, false)
	}
	if err != nil {
		return s.fail(p, err)
	}
	return nil
}

// settle queues the next wake-up of p or retires it.
func (s *Session) settle(p Process, wake Wake, fresh bool) error {
	if !wake.Next {
		if !fresh {
			s.metrics.ProcessEnded()
			s.record(p.ID(), "terminated", false)
		}
		return nil
	}
	if err := s.queue.Schedule(wake.At, p); err != nil {
		return err
	}
	if fresh {
		s.metrics.ProcessStarted()
	}
	return nil
}

// Stop discards every pending event. Mutations already applied to the
// network are kept. A failed session stays Failed.
func (s *Session) Stop() {
	for i := 0; i < s.queue.Len(); i++ {
		s.metrics.ProcessEnded()
	}
	s.queue.Clear()
	if s.state != StateFailed {
		s.state = StateStopped
	}
	s.log.Infof("[tick %07d] Simulation stopped", s.Now())
}

func (s *Session) checkRunnable() error {
	switch s.state {
	case StateCreated:
		return ErrNotInitialized
	case StateStopped, StateFailed:
		return ErrSessionClosed
	}
	return nil
}

func (s *Session) fail(p Process, err error) error {
	pe := &ProcessError{Tick: s.Now(), Date: s.clock.Format(s.Now()), ProcessID: p.ID(), Err: err}
	return s.abort(pe)
}

func (s *Session) abort(err error) error {
	s.state = StateFailed
	s.err = err
	s.log.WithError(err).Errorf("[tick %07d] Simulation failed", s.Now())
	return err
}

func (s *Session) record(processID, action string, echo bool) {
	date := s.clock.Format(s.Now())
	s.trace.Append(trace.Record{Tick: s.Now(), Date: date, ProcessID: processID, Action: action})
	if echo && s.echo != nil {
		s.echo.WithField(dateField, date).Info(action)
	}
}

// === Inspection ===

// State returns the lifecycle state.
func (s *Session) State() SessionState { return s.state }

// Err returns the error that failed the session, if any.
func (s *Session) Err() error { return s.err }

// Pending returns the number of queued events.
func (s *Session) Pending() int { return s.queue.Len() }

// NextEventTime returns the due time of the next queued event.
func (s *Session) NextEventTime() (int64, bool) { return s.queue.PeekNextTime() }

// Trace returns the event trace recorded so far.
func (s *Session) Trace() *trace.EventTrace { return s.trace }

// RunID identifies this session in logs. It never appears in the trace.
func (s *Session) RunID() string { return s.runID }

// Processor returns the order processor receiving submitted orders.
func (s *Session) Processor() OrderProcessor { return s.processor }

// === Env ===

// Now returns the current tick.
func (s *Session) Now() int64 { return s.queue.Now() }

// CurrentDate returns the calendar date of the current tick.
func (s *Session) CurrentDate() time.Time { return s.clock.ToDate(s.Now()) }

// Clock returns the tick/date mapping.
func (s *Session) Clock() TimeMapper { return s.clock }

// Network returns the network owned by the session.
func (s *Session) Network() *network.Network { return s.net }

// Config returns the session configuration.
func (s *Session) Config() Config { return s.cfg }

// Metrics returns the session's metric recorder.
func (s *Session) Metrics() *metrics.Recorder { return s.metrics }

// Rand returns the deterministic RNG stream of subsystem.
func (s *Session) Rand(subsystem string) *rand.Rand { return s.rng.ForSubsystem(subsystem) }

// Spawn attaches p to the session: Start is called immediately and its
// first wake-up queued. Processes may spawn others from within a step.
func (s *Session) Spawn(p Process) error {
	prev := s.current
	s.current = p
	wake, err := p.Start(s)
	s.current = prev
	if err != nil {
		return fmt.Errorf("starting %s: %w", p.ID(), err)
	}
	return s.settle(p, wake, true)
}

// Submit hands a new order to the order processor.
func (s *Session) Submit(o *network.Order) error {
	s.metrics.OrderCreated(o.Kind.String())
	if err := s.processor.ProcessOrder(s, o); err != nil {
		return fmt.Errorf("processing order %d: %w", o.ID, err)
	}
	return nil
}

// CloseOrder closes o with status at the current tick.
func (s *Session) CloseOrder(o *network.Order, status network.OrderStatus) error {
	if err := o.Close(status, s.Now()); err != nil {
		return err
	}
	s.metrics.OrderClosed(o.Kind.String(), status.String())
	return nil
}

// Receive adds q units of sku to node's stock and, if the order processor
// listens for receipts, notifies it.
func (s *Session) Receive(node *network.Node, sku network.SKUID, q network.Quantity) error {
	if node.Inventory == nil {
		return fmt.Errorf("node %q holds no inventory", node.Name)
	}
	node.Inventory.Receive(sku, q)
	if l, ok := s.processor.(ReceiptListener); ok {
		return l.OnReceipt(s, node, sku)
	}
	return nil
}

// Logf records an action of the current process in the trace and, when
// echo is enabled, prints it as "<date>:\t<message>".
func (s *Session) Logf(format string, args ...any) {
	id := sessionProcessID
	if s.current != nil {
		id = s.current.ID()
	}
	s.record(id, fmt.Sprintf(format, args...), true)
}
