package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scdt-sim/scdt/sim/network"
)

var (
	testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	farFuture = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	medellin  = network.Location{Lat: 6.2442, Lon: -75.5812}
	bogota    = network.Location{Lat: 4.7110, Lon: -74.0721}
)

// newDemandNetwork builds a network with one SKU and one demand node whose
// simple demand orders qty every interval ticks until last.
func newDemandNetwork(t *testing.T, interval int64, qty network.Quantity, last time.Time) (*network.Network, *network.Demand) {
	t.Helper()
	net := network.New("test")
	sku, err := net.AddSKU("widget")
	require.NoError(t, err)
	store, err := net.AddNode(network.DemandNode, "store", medellin)
	require.NoError(t, err)
	d, err := net.AddDemand(store, sku.ID, network.DemandProcessSpec{
		Kind:          network.DemandSimple,
		Interval:      interval,
		Quantity:      qty,
		LastOrderDate: last,
	})
	require.NoError(t, err)
	return net, d
}

// newInitializedSession creates and initializes a session over net. Options
// adjust the default config before the session is built.
func newInitializedSession(t *testing.T, net *network.Network, opts ...func(*Config)) *Session {
	t.Helper()
	cfg := Config{StartDate: testStart, Seed: 42}
	for _, opt := range opts {
		opt(&cfg)
	}
	s, err := NewSession(net, cfg)
	require.NoError(t, err)
	require.NoError(t, s.Init())
	return s
}

// scriptedProcess wakes at a fixed list of ticks and logs every resumption.
// failAt makes the resumption at that tick return an error.
type scriptedProcess struct {
	id     string
	wakes  []int64
	failAt int64
	err    error
	seen   *[]string
}

func (p *scriptedProcess) ID() string { return p.id }

func (p *scriptedProcess) Start(env Env) (Wake, error) {
	return p.next(), nil
}

func (p *scriptedProcess) Resume(env Env) (Wake, error) {
	if p.seen != nil {
		*p.seen = append(*p.seen, p.id)
	}
	if p.err != nil && env.Now() == p.failAt {
		return Wake{}, p.err
	}
	env.Logf("%s at %d", p.id, env.Now())
	return p.next(), nil
}

func (p *scriptedProcess) next() Wake {
	if len(p.wakes) == 0 {
		return Terminate()
	}
	at := p.wakes[0]
	p.wakes = p.wakes[1:]
	return WakeAt(at)
}
