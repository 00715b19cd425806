package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/scdt-sim/scdt/sim/network"
)

// ScheduleProduction queues batches of recipe at site on the least loaded
// line bound to the recipe (ties go to the lowest line id) and, if that line
// is idle, spawns a ProductionRunProcess for it.
func ScheduleProduction(env Env, site *network.Node, recipe *network.Recipe, batches int) error {
	if site.Production == nil {
		return fmt.Errorf("node %q cannot produce", site.Name)
	}
	if batches <= 0 {
		return fmt.Errorf("batches must be positive, got %d", batches)
	}
	lines := site.Production.LinesFor(recipe)
	if len(lines) == 0 {
		return fmt.Errorf("no production line at %q for recipe %d", site.Name, recipe.ID)
	}
	line := lines[0]
	for _, l := range lines[1:] {
		if l.Load() < line.Load() {
			line = l
		}
	}
	line.Enqueue(&network.ProductionJob{Recipe: recipe, Batches: batches, RequestedAt: env.Now()})
	if line.Busy() {
		return nil
	}
	return env.Spawn(NewProductionRunProcess(site, line))
}

// ProductionRunProcess works through the job queue of one production line,
// one batch per resumption. It holds the line for as long as it runs, so a
// line never processes two batches at once, and terminates when the queue
// is empty.
type ProductionRunProcess struct {
	site      *network.Node
	line      *network.ProductionLine
	job       *network.ProductionJob
	remaining int
}

// NewProductionRunProcess creates the run process for line at site.
func NewProductionRunProcess(site *network.Node, line *network.ProductionLine) *ProductionRunProcess {
	return &ProductionRunProcess{site: site, line: line}
}

func (p *ProductionRunProcess) ID() string {
	return fmt.Sprintf("line-%d", p.line.ID)
}

// Start acquires the line and begins the first queued batch.
func (p *ProductionRunProcess) Start(env Env) (Wake, error) {
	if err := p.line.Acquire(); err != nil {
		return Wake{}, err
	}
	if !p.nextJob() {
		p.line.Release()
		return Terminate(), nil
	}
	return p.beginBatch(env), nil
}

// Resume completes the running batch and begins the next one, if any.
func (p *ProductionRunProcess) Resume(env Env) (Wake, error) {
	r := p.job.Recipe
	sku, _ := env.Network().Registry().SKU(r.Product)
	env.Logf("Batch done on line %d: %d x %s", p.line.ID, r.BatchSize, sku.Name)
	env.Metrics().BatchCompleted(int64(r.BatchSize))
	if err := env.Receive(p.site, r.Product, r.BatchSize); err != nil {
		return Wake{}, err
	}

	p.remaining--
	if p.remaining > 0 || p.nextJob() {
		return p.beginBatch(env), nil
	}
	p.line.Release()
	return Terminate(), nil
}

func (p *ProductionRunProcess) nextJob() bool {
	job, ok := p.line.NextJob()
	if !ok {
		return false
	}
	p.job = job
	p.remaining = job.Batches
	return true
}

// beginBatch consumes the batch inputs from the site stock and returns the
// wake-up at the end of the batch. Missing inputs are drawn as far as stock
// allows; the shortfall is logged, not enforced.
func (p *ProductionRunProcess) beginBatch(env Env) Wake {
	r := p.job.Recipe
	for _, in := range r.Inputs {
		need := r.Requirement(in, r.BatchSize)
		if got := p.site.Inventory.TakeUpTo(in.SKU, need); got < need {
			logrus.Warnf("[tick %07d] line %d short of input %d: needed %d, had %d", env.Now(), p.line.ID, in.SKU, need, got)
		}
	}
	duration := r.BatchDuration()
	env.Logf("Batch start on line %d: recipe %d, done in %d", p.line.ID, r.ID, duration)
	return WakeAt(env.Now() + duration)
}
