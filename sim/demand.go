package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/scdt-sim/scdt/sim/network"
)

// NewDemandProcess builds the process that drives d, according to its spec kind.
func NewDemandProcess(d *network.Demand) (Process, error) {
	switch d.Process.Kind {
	case network.DemandSimple:
		return NewSimpleDemandProcess(d), nil
	case network.DemandPoisson:
		return NewPoissonDemandProcess(d), nil
	default:
		return nil, fmt.Errorf("unknown demand process kind %q", d.Process.Kind)
	}
}

// demandCutoff returns the last tick on which d may place orders and whether
// that tick is still reachable from now. A cutoff before the start date has
// no tick at all and is treated as already passed.
func demandCutoff(env Env, d *network.Demand) (int64, bool) {
	cutoff, err := env.Clock().ToSimTime(d.Process.LastOrderDate)
	if err != nil {
		return 0, false
	}
	return cutoff, env.Now() <= cutoff
}

// placeCustomerOrder creates a single-position customer order for d at the
// current tick, records it in the demand history and submits it.
func placeCustomerOrder(env Env, d *network.Demand, q network.Quantity) error {
	net := env.Network()
	o, err := net.NewOrder(network.CustomerOrder, d.Node, env.Now(), network.OrderPosition{SKU: d.SKU, Quantity: q})
	if err != nil {
		return err
	}
	o.Demand = d.ID
	d.Record(env.Now(), env.CurrentDate(), q)

	sku, _ := net.Registry().SKU(d.SKU)
	node, _ := net.Registry().Node(d.Node)
	env.Logf("New order %d: %d x %s for %s", o.ID, q, sku.Name, node.Name)
	return env.Submit(o)
}

// SimpleDemandProcess places an order of a fixed quantity every fixed
// interval, starting immediately, until the last order date has passed.
type SimpleDemandProcess struct {
	demand *network.Demand
	cutoff int64
}

// NewSimpleDemandProcess creates the process for a simple demand.
func NewSimpleDemandProcess(d *network.Demand) *SimpleDemandProcess {
	return &SimpleDemandProcess{demand: d}
}

func (p *SimpleDemandProcess) ID() string {
	return fmt.Sprintf("demand-%d", p.demand.ID)
}

func (p *SimpleDemandProcess) Start(env Env) (Wake, error) {
	cutoff, open := demandCutoff(env, p.demand)
	if !open {
		return Terminate(), nil
	}
	p.cutoff = cutoff
	return WakeAt(env.Now()), nil
}

func (p *SimpleDemandProcess) Resume(env Env) (Wake, error) {
	if env.Now() > p.cutoff {
		return Terminate(), nil
	}
	if err := placeCustomerOrder(env, p.demand, p.demand.Process.Quantity); err != nil {
		return Wake{}, err
	}
	return WakeAt(env.Now() + p.demand.Process.Interval), nil
}

// PoissonDemandProcess places orders whose quantities follow a Poisson
// distribution, separated by exponentially distributed gaps rounded up to
// whole ticks. Draws come from the demand's own RNG stream, so a fixed seed
// reproduces the same orders. Zero-quantity draws place no order.
type PoissonDemandProcess struct {
	demand   *network.Demand
	cutoff   int64
	quantity distuv.Poisson
	gap      distuv.Exponential
}

// NewPoissonDemandProcess creates the process for a poisson demand.
func NewPoissonDemandProcess(d *network.Demand) *PoissonDemandProcess {
	return &PoissonDemandProcess{demand: d}
}

func (p *PoissonDemandProcess) ID() string {
	return fmt.Sprintf("demand-%d", p.demand.ID)
}

func (p *PoissonDemandProcess) Start(env Env) (Wake, error) {
	cutoff, open := demandCutoff(env, p.demand)
	if !open {
		return Terminate(), nil
	}
	p.cutoff = cutoff

	src := env.Rand(SubsystemDemand(int64(p.demand.ID)))
	p.quantity = distuv.Poisson{Lambda: p.demand.Process.MeanQuantity, Src: src}
	p.gap = distuv.Exponential{Rate: 1 / p.demand.Process.MeanInterval, Src: src}
	return WakeAt(env.Now() + p.nextGap()), nil
}

func (p *PoissonDemandProcess) Resume(env Env) (Wake, error) {
	if env.Now() > p.cutoff {
		return Terminate(), nil
	}
	if q := network.Quantity(p.quantity.Rand()); q > 0 {
		if err := placeCustomerOrder(env, p.demand, q); err != nil {
			return Wake{}, err
		}
	}
	return WakeAt(env.Now() + p.nextGap()), nil
}

func (p *PoissonDemandProcess) nextGap() int64 {
	return max(int64(math.Ceil(p.gap.Rand())), 1)
}
