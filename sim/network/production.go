package network

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// RecipeInput is the consumption of one raw material per produced unit.
// PerUnit may be fractional (e.g. 0.25 kg of resin per part).
type RecipeInput struct {
	SKU     SKUID
	PerUnit decimal.Decimal
}

// Recipe turns input materials into a product, one batch at a time.
type Recipe struct {
	ID                 RecipeID
	Product            SKUID
	Inputs             []RecipeInput
	BatchSize          Quantity
	SetupTime          int64   // ticks before the first unit of a batch
	ProcessingTimeUnit float64 // ticks per unit
	Lines              []LineID
}

// Validate checks the recipe parameters.
func (r *Recipe) Validate() error {
	if r.BatchSize <= 0 {
		return fmt.Errorf("recipe %d: batch_size must be positive, got %d", r.ID, r.BatchSize)
	}
	if r.SetupTime < 0 {
		return fmt.Errorf("recipe %d: setup_time must be non-negative, got %d", r.ID, r.SetupTime)
	}
	if r.ProcessingTimeUnit < 0 || math.IsNaN(r.ProcessingTimeUnit) || math.IsInf(r.ProcessingTimeUnit, 0) {
		return fmt.Errorf("recipe %d: processing_time_unit must be a non-negative number, got %f", r.ID, r.ProcessingTimeUnit)
	}
	for _, in := range r.Inputs {
		if in.PerUnit.IsNegative() {
			return fmt.Errorf("recipe %d: input %d per_unit must be non-negative, got %s", r.ID, in.SKU, in.PerUnit)
		}
	}
	return nil
}

// BatchDuration returns the ticks one batch occupies a line: setup plus
// per-unit processing, rounded up, and never less than one tick.
func (r *Recipe) BatchDuration() int64 {
	d := r.SetupTime + int64(math.Ceil(float64(r.BatchSize)*r.ProcessingTimeUnit))
	return max(d, 1)
}

// Requirement returns the whole units of in needed for units of product,
// rounded up.
func (r *Recipe) Requirement(in RecipeInput, units Quantity) Quantity {
	need := in.PerUnit.Mul(decimal.NewFromInt(int64(units))).Ceil()
	return Quantity(need.IntPart())
}

// ProductionJob is a request for a number of batches of a recipe.
type ProductionJob struct {
	Recipe      *Recipe
	Batches     int
	RequestedAt int64
}

// ProductionLine processes at most one batch at a time.
type ProductionLine struct {
	ID   LineID
	Site NodeID

	busy  bool
	queue []*ProductionJob
}

// Busy reports whether a batch currently occupies the line.
func (l *ProductionLine) Busy() bool {
	return l.busy
}

// Acquire marks the line busy. It fails if a batch is already running.
func (l *ProductionLine) Acquire() error {
	if l.busy {
		return fmt.Errorf("production line %d is already processing a batch", l.ID)
	}
	l.busy = true
	return nil
}

// Release frees the line.
func (l *ProductionLine) Release() {
	l.busy = false
}

// Enqueue appends a job to the line's queue.
func (l *ProductionLine) Enqueue(job *ProductionJob) {
	if job == nil || job.Recipe == nil {
		panic("Enqueue: job and job.Recipe must not be nil")
	}
	l.queue = append(l.queue, job)
}

// QueueLen returns the number of waiting jobs.
func (l *ProductionLine) QueueLen() int {
	return len(l.queue)
}

// NextJob removes and returns the oldest waiting job.
func (l *ProductionLine) NextJob() (*ProductionJob, bool) {
	if len(l.queue) == 0 {
		return nil, false
	}
	job := l.queue[0]
	l.queue = l.queue[1:]
	return job, true
}

// Load is the number of jobs waiting plus one if a batch is running.
func (l *ProductionLine) Load() int {
	n := len(l.queue)
	if l.busy {
		n++
	}
	return n
}

// ProductionCapability is the goods-producing capability of a node.
type ProductionCapability struct {
	Recipes []*Recipe
	Lines   []*ProductionLine
}

// RecipeFor returns the first recipe producing sku.
func (p *ProductionCapability) RecipeFor(sku SKUID) (*Recipe, bool) {
	for _, r := range p.Recipes {
		if r.Product == sku {
			return r, true
		}
	}
	return nil, false
}

// LinesFor returns the lines bound to recipe, in id order. A recipe with no
// explicit binding may run on every line of the site.
func (p *ProductionCapability) LinesFor(r *Recipe) []*ProductionLine {
	if len(r.Lines) == 0 {
		return p.Lines
	}
	bound := make(map[LineID]bool, len(r.Lines))
	for _, id := range r.Lines {
		bound[id] = true
	}
	var lines []*ProductionLine
	for _, l := range p.Lines {
		if bound[l.ID] {
			lines = append(lines, l)
		}
	}
	return lines
}
