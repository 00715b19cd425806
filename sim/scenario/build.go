package scenario

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/scdt-sim/scdt/sim/network"
)

// Build validates the scenario and constructs its network. Nodes are created
// in file order: suppliers, warehouses, production sites, listed demand
// nodes, then grid nodes row by row. Entity ids follow that order.
func (s *Scenario) Build() (*network.Network, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	b := &builder{net: network.New(s.Name), skus: make(map[string]network.SKUID)}
	for _, name := range s.SKUs {
		sku, err := b.net.AddSKU(name)
		if err != nil {
			return nil, err
		}
		b.skus[name] = sku.ID
	}

	for _, n := range s.Suppliers {
		if _, err := b.net.AddNode(network.Supplier, n.Name, location(n.Location)); err != nil {
			return nil, err
		}
	}
	for _, w := range s.Warehouses {
		node, err := b.net.AddNode(network.Warehouse, w.Name, location(w.Location))
		if err != nil {
			return nil, err
		}
		if err := b.stock(node, w); err != nil {
			return nil, err
		}
	}
	for _, site := range s.ProductionSites {
		if err := b.site(site); err != nil {
			return nil, err
		}
	}
	for _, dn := range s.DemandNodes {
		node, err := b.net.AddNode(network.DemandNode, dn.Name, location(dn.Location))
		if err != nil {
			return nil, err
		}
		for _, d := range dn.Demands {
			if err := b.demand(node, d.SKU, d); err != nil {
				return nil, err
			}
		}
	}
	if g := s.DemandGrid; g != nil {
		for _, lat := range g.Lat.Values() {
			for _, lon := range g.Lon.Values() {
				node, err := b.net.AddNode(network.DemandNode, fmt.Sprintf("DM_%.2f,%.2f", lat, lon), network.Location{Lat: lat, Lon: lon})
				if err != nil {
					return nil, err
				}
				for _, sku := range g.SKUs {
					if err := b.demand(node, sku, g.Demand); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return b.net, nil
}

type builder struct {
	net  *network.Network
	skus map[string]network.SKUID
}

func (b *builder) sku(name, source string) (network.SKUID, error) {
	id, ok := b.skus[name]
	if !ok {
		return 0, &network.ReferentialError{Kind: network.KindSKU, Name: name, Source: source}
	}
	return id, nil
}

func (b *builder) stock(node *network.Node, spec StockNodeSpec) error {
	for name, q := range spec.Stock {
		id, err := b.sku(name, fmt.Sprintf("stock of %q", node.Name))
		if err != nil {
			return err
		}
		if q < 0 {
			return fmt.Errorf("stock of %q at %q must be non-negative, got %d", name, node.Name, q)
		}
		node.Inventory.Add(id, network.Quantity(q))
	}
	for _, p := range spec.Policies {
		id, err := b.sku(p.SKU, fmt.Sprintf("reorder policy at %q", node.Name))
		if err != nil {
			return err
		}
		node.Inventory.Policies = append(node.Inventory.Policies, network.ReorderPolicy{
			SKU:            id,
			ReorderPoint:   network.Quantity(p.ReorderPoint),
			OrderUpTo:      network.Quantity(p.OrderUpTo),
			ReviewInterval: p.ReviewInterval,
		})
	}
	return nil
}

func (b *builder) site(spec SiteSpec) error {
	node, err := b.net.AddNode(network.ProductionSite, spec.Name, location(spec.Location))
	if err != nil {
		return err
	}
	if err := b.stock(node, spec.StockNodeSpec); err != nil {
		return err
	}
	lines := make([]network.LineID, spec.Lines)
	for i := range lines {
		l, err := b.net.AddLine(node)
		if err != nil {
			return err
		}
		lines[i] = l.ID
	}
	for _, rs := range spec.Recipes {
		source := fmt.Sprintf("recipe for %q at %q", rs.Product, spec.Name)
		product, err := b.sku(rs.Product, source)
		if err != nil {
			return err
		}
		r := &network.Recipe{
			Product:            product,
			BatchSize:          network.Quantity(rs.BatchSize),
			SetupTime:          rs.SetupTime,
			ProcessingTimeUnit: rs.ProcessingTimeUnit,
		}
		for _, in := range rs.Inputs {
			id, err := b.sku(in.SKU, source)
			if err != nil {
				return err
			}
			perUnit, err := decimal.NewFromString(in.PerUnit)
			if err != nil {
				return fmt.Errorf("%s: per_unit %q: %w", source, in.PerUnit, err)
			}
			r.Inputs = append(r.Inputs, network.RecipeInput{SKU: id, PerUnit: perUnit})
		}
		for _, idx := range rs.Lines {
			r.Lines = append(r.Lines, lines[idx])
		}
		if err := b.net.AddRecipe(node, r); err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
	}
	return nil
}

func (b *builder) demand(node *network.Node, skuName string, d DemandSpec) error {
	id, err := b.sku(skuName, fmt.Sprintf("demand at %q", node.Name))
	if err != nil {
		return err
	}
	last, err := parseDate(d.LastOrderDate)
	if err != nil {
		return err
	}
	_, err = b.net.AddDemand(node, id, network.DemandProcessSpec{
		Kind:          network.DemandProcessKind(d.Process),
		Interval:      d.Interval,
		Quantity:      network.Quantity(d.Quantity),
		MeanInterval:  d.MeanInterval,
		MeanQuantity:  d.MeanQuantity,
		LastOrderDate: last,
	})
	return err
}

func location(l LocationSpec) network.Location {
	return network.Location{Lat: l.Lat, Lon: l.Lon}
}
