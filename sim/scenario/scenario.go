// Package scenario loads supply-chain networks from YAML files.
//
// A scenario names its SKUs, lists the nodes of each kind with their
// location, stock, reorder policies, production lines and recipes, and
// attaches demands to demand nodes. A demand grid can generate a regular
// lattice of demand nodes instead of listing them one by one.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the format of every date in a scenario file.
const DateLayout = "2006-01-02"

// Scenario is the YAML representation of a network.
type Scenario struct {
	Name            string           `yaml:"name"`
	StartDate       string           `yaml:"start_date"` // YYYY-MM-DD, optional
	SKUs            []string         `yaml:"skus"`
	Suppliers       []NodeSpec       `yaml:"suppliers"`
	Warehouses      []StockNodeSpec  `yaml:"warehouses"`
	ProductionSites []SiteSpec       `yaml:"production_sites"`
	DemandNodes     []DemandNodeSpec `yaml:"demand_nodes"`
	DemandGrid      *DemandGridSpec  `yaml:"demand_grid,omitempty"`
}

// LocationSpec is a position in degrees.
type LocationSpec struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// NodeSpec is a node without capabilities beyond its kind.
type NodeSpec struct {
	Name     string       `yaml:"name"`
	Location LocationSpec `yaml:"location"`
}

// StockNodeSpec is a node holding inventory.
type StockNodeSpec struct {
	Name     string           `yaml:"name"`
	Location LocationSpec     `yaml:"location"`
	Stock    map[string]int64 `yaml:"stock,omitempty"` // initial on-hand units by SKU name
	Policies []PolicySpec     `yaml:"policies,omitempty"`
}

// PolicySpec is a periodic-review (s, S) reorder policy.
type PolicySpec struct {
	SKU            string `yaml:"sku"`
	ReorderPoint   int64  `yaml:"reorder_point"`
	OrderUpTo      int64  `yaml:"order_up_to"`
	ReviewInterval int64  `yaml:"review_interval"`
}

// SiteSpec is a production site.
type SiteSpec struct {
	StockNodeSpec `yaml:",inline"`
	Lines         int          `yaml:"lines"`
	Recipes       []RecipeSpec `yaml:"recipes,omitempty"`
}

// RecipeSpec describes how a site makes one product.
type RecipeSpec struct {
	Product            string      `yaml:"product"`
	Inputs             []InputSpec `yaml:"inputs,omitempty"`
	BatchSize          int64       `yaml:"batch_size"`
	SetupTime          int64       `yaml:"setup_time"`
	ProcessingTimeUnit float64     `yaml:"processing_time_unit"`
	Lines              []int       `yaml:"lines,omitempty"` // 0-based line indices at the site; empty means any line
}

// InputSpec is one raw material of a recipe. PerUnit is a decimal string
// so fractional consumption is exact.
type InputSpec struct {
	SKU     string `yaml:"sku"`
	PerUnit string `yaml:"per_unit"`
}

// DemandNodeSpec is a demand node and its demands.
type DemandNodeSpec struct {
	Name     string       `yaml:"name"`
	Location LocationSpec `yaml:"location"`
	Demands  []DemandSpec `yaml:"demands"`
}

// DemandSpec attaches a demand process for one SKU.
type DemandSpec struct {
	SKU           string  `yaml:"sku"`
	Process       string  `yaml:"process"` // "simple" or "poisson"
	Interval      int64   `yaml:"interval,omitempty"`
	Quantity      int64   `yaml:"quantity,omitempty"`
	MeanInterval  float64 `yaml:"mean_interval,omitempty"`
	MeanQuantity  float64 `yaml:"mean_quantity,omitempty"`
	LastOrderDate string  `yaml:"last_order_date"`
}

// DemandGridSpec generates one demand node per (lat, lon) pair of two evenly
// spaced ranges, each with one demand per listed SKU.
type DemandGridSpec struct {
	Lat    RangeSpec  `yaml:"lat"`
	Lon    RangeSpec  `yaml:"lon"`
	SKUs   []string   `yaml:"skus"`
	Demand DemandSpec `yaml:"demand"` // template; its SKU field is ignored
}

// RangeSpec is Steps evenly spaced values from From to To inclusive.
type RangeSpec struct {
	From  float64 `yaml:"from"`
	To    float64 `yaml:"to"`
	Steps int     `yaml:"steps"`
}

// Values returns the points of the range.
func (r RangeSpec) Values() []float64 {
	if r.Steps <= 0 {
		return nil
	}
	if r.Steps == 1 {
		return []float64{r.From}
	}
	vals := make([]float64, r.Steps)
	step := (r.To - r.From) / float64(r.Steps-1)
	for i := range vals {
		vals[i] = r.From + float64(i)*step
	}
	vals[r.Steps-1] = r.To
	return vals
}

// Load reads and parses a scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario document strictly.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &s, nil
}

var validProcesses = map[string]bool{"simple": true, "poisson": true}

// Validate checks the fields that do not depend on other entities. Names
// are resolved, and duplicates rejected, by Build.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if s.StartDate != "" {
		if _, err := parseDate(s.StartDate); err != nil {
			return fmt.Errorf("start_date: %w", err)
		}
	}
	if len(s.SKUs) == 0 {
		return fmt.Errorf("at least one sku is required")
	}
	for _, site := range s.ProductionSites {
		if site.Lines < 0 {
			return fmt.Errorf("production site %q: lines must be non-negative, got %d", site.Name, site.Lines)
		}
		for _, r := range site.Recipes {
			for _, idx := range r.Lines {
				if idx < 0 || idx >= site.Lines {
					return fmt.Errorf("production site %q: recipe for %q uses line %d, site has %d", site.Name, r.Product, idx, site.Lines)
				}
			}
		}
	}
	for _, dn := range s.DemandNodes {
		for i, d := range dn.Demands {
			if err := validateDemand(d); err != nil {
				return fmt.Errorf("demand_nodes[%s].demands[%d]: %w", dn.Name, i, err)
			}
		}
	}
	if g := s.DemandGrid; g != nil {
		if g.Lat.Steps <= 0 || g.Lon.Steps <= 0 {
			return fmt.Errorf("demand_grid: steps must be positive")
		}
		if len(g.SKUs) == 0 {
			return fmt.Errorf("demand_grid: at least one sku is required")
		}
		if err := validateDemand(g.Demand); err != nil {
			return fmt.Errorf("demand_grid.demand: %w", err)
		}
	}
	return nil
}

func validateDemand(d DemandSpec) error {
	if !validProcesses[d.Process] {
		return fmt.Errorf("unknown process %q; valid: simple, poisson", d.Process)
	}
	if _, err := parseDate(d.LastOrderDate); err != nil {
		return fmt.Errorf("last_order_date: %w", err)
	}
	return nil
}

// Start returns the start date of the scenario, or zero when unset.
func (s *Scenario) Start() (time.Time, error) {
	if s.StartDate == "" {
		return time.Time{}, nil
	}
	return parseDate(s.StartDate)
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", v)
	}
	return t, nil
}
