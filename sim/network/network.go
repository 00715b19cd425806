// Package network holds the supply-chain entities a simulation run mutates:
// SKUs, nodes and their capabilities, demands, orders and production lines.
// It stores plain data and has no dependencies on sim/.
package network

import (
	"fmt"
	"sort"
)

// Registry indexes every entity by id. It owns the IDAllocator so ids are
// unique per network and never reused within a run.
type Registry struct {
	ids *IDAllocator

	skus    map[SKUID]*SKU
	nodes   map[NodeID]*Node
	demands map[DemandID]*Demand
	orders  map[OrderID]*Order
	lines   map[LineID]*ProductionLine
	recipes map[RecipeID]*Recipe

	skuByName  map[string]*SKU
	nodeByName map[string]*Node
}

func newRegistry(ids *IDAllocator) *Registry {
	return &Registry{
		ids:        ids,
		skus:       make(map[SKUID]*SKU),
		nodes:      make(map[NodeID]*Node),
		demands:    make(map[DemandID]*Demand),
		orders:     make(map[OrderID]*Order),
		lines:      make(map[LineID]*ProductionLine),
		recipes:    make(map[RecipeID]*Recipe),
		skuByName:  make(map[string]*SKU),
		nodeByName: make(map[string]*Node),
	}
}

// SKU looks up a SKU by id.
func (r *Registry) SKU(id SKUID) (*SKU, bool) {
	s, ok := r.skus[id]
	return s, ok
}

// SKUByName looks up a SKU by name.
func (r *Registry) SKUByName(name string) (*SKU, bool) {
	s, ok := r.skuByName[name]
	return s, ok
}

// Node looks up a node by id.
func (r *Registry) Node(id NodeID) (*Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// NodeByName looks up a node by name.
func (r *Registry) NodeByName(name string) (*Node, bool) {
	n, ok := r.nodeByName[name]
	return n, ok
}

// Demand looks up a demand by id.
func (r *Registry) Demand(id DemandID) (*Demand, bool) {
	d, ok := r.demands[id]
	return d, ok
}

// Order looks up an order by id.
func (r *Registry) Order(id OrderID) (*Order, bool) {
	o, ok := r.orders[id]
	return o, ok
}

// Line looks up a production line by id.
func (r *Registry) Line(id LineID) (*ProductionLine, bool) {
	l, ok := r.lines[id]
	return l, ok
}

// Network is the aggregate of all entities for one simulation run.
// Slices are kept in creation (id) order so iteration is deterministic.
type Network struct {
	Name string

	reg    *Registry
	skus   []*SKU
	nodes  []*Node
	orders []*Order
}

// New creates an empty network with its own id space.
func New(name string) *Network {
	return NewWithAllocator(name, NewIDAllocator())
}

// NewWithAllocator creates an empty network drawing ids from ids.
func NewWithAllocator(name string, ids *IDAllocator) *Network {
	if ids == nil {
		panic("NewWithAllocator: ids must not be nil")
	}
	return &Network{Name: name, reg: newRegistry(ids)}
}

// Registry returns the id index of the network.
func (n *Network) Registry() *Registry {
	return n.reg
}

// AddSKU registers a new SKU. Names must be unique.
func (n *Network) AddSKU(name string) (*SKU, error) {
	if _, exists := n.reg.skuByName[name]; exists {
		return nil, fmt.Errorf("sku %q already exists", name)
	}
	s := &SKU{ID: SKUID(n.reg.ids.Next(KindSKU)), Name: name}
	n.reg.skus[s.ID] = s
	n.reg.skuByName[name] = s
	n.skus = append(n.skus, s)
	return s, nil
}

// AddNode registers a new node. Names must be unique. Warehouses and
// production sites get an empty Inventory, production sites an empty
// ProductionCapability.
func (n *Network) AddNode(kind NodeKind, name string, loc Location) (*Node, error) {
	if _, exists := n.reg.nodeByName[name]; exists {
		return nil, fmt.Errorf("node %q already exists", name)
	}
	node := &Node{
		ID:       NodeID(n.reg.ids.Next(KindNode)),
		Name:     name,
		Kind:     kind,
		Location: loc,
	}
	switch kind {
	case Warehouse:
		node.Inventory = NewInventory()
	case ProductionSite:
		node.Inventory = NewInventory()
		node.Production = &ProductionCapability{}
	}
	n.reg.nodes[node.ID] = node
	n.reg.nodeByName[name] = node
	n.nodes = append(n.nodes, node)
	return node, nil
}

// AddDemand attaches a demand for sku to a demand node.
func (n *Network) AddDemand(node *Node, sku SKUID, spec DemandProcessSpec) (*Demand, error) {
	if node.Kind != DemandNode {
		return nil, fmt.Errorf("node %q is a %s, demand requires a DemandNode", node.Name, node.Kind)
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("demand at %q: %w", node.Name, err)
	}
	d := &Demand{
		ID:      DemandID(n.reg.ids.Next(KindDemand)),
		Node:    node.ID,
		SKU:     sku,
		Process: spec,
	}
	n.reg.demands[d.ID] = d
	node.Demands = append(node.Demands, d)
	return d, nil
}

// AddLine adds a production line to a production site.
func (n *Network) AddLine(site *Node) (*ProductionLine, error) {
	if site.Production == nil {
		return nil, fmt.Errorf("node %q cannot host production lines", site.Name)
	}
	l := &ProductionLine{ID: LineID(n.reg.ids.Next(KindLine)), Site: site.ID}
	n.reg.lines[l.ID] = l
	site.Production.Lines = append(site.Production.Lines, l)
	return l, nil
}

// AddRecipe registers a recipe at a production site. The recipe id is
// assigned here.
func (n *Network) AddRecipe(site *Node, r *Recipe) error {
	if site.Production == nil {
		return fmt.Errorf("node %q cannot host recipes", site.Name)
	}
	r.ID = RecipeID(n.reg.ids.Next(KindRecipe))
	if err := r.Validate(); err != nil {
		return err
	}
	n.reg.recipes[r.ID] = r
	site.Production.Recipes = append(site.Production.Recipes, r)
	return nil
}

// NewOrder creates an order dated at tick and registers it. Every position
// SKU and the counterparty must exist; the counterparty kind must match the
// order kind.
func (n *Network) NewOrder(kind OrderKind, counterparty NodeID, tick int64, positions ...OrderPosition) (*Order, error) {
	cp, ok := n.reg.nodes[counterparty]
	if !ok {
		return nil, &ReferentialError{Kind: KindNode, ID: int64(counterparty), Source: kind.String()}
	}
	switch kind {
	case CustomerOrder:
		if cp.Kind != DemandNode {
			return nil, fmt.Errorf("customer order counterparty %q is a %s", cp.Name, cp.Kind)
		}
	case PurchaseOrder:
		if !cp.AcceptsOrders() {
			return nil, fmt.Errorf("purchase order counterparty %q does not accept orders", cp.Name)
		}
	default:
		return nil, fmt.Errorf("unknown order kind %d", kind)
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("%s requires at least one position", kind)
	}
	for _, p := range positions {
		if _, ok := n.reg.skus[p.SKU]; !ok {
			return nil, &ReferentialError{Kind: KindSKU, ID: int64(p.SKU), Source: kind.String()}
		}
		if p.Quantity <= 0 {
			return nil, fmt.Errorf("%s position quantity must be positive, got %d", kind, p.Quantity)
		}
	}

	o := &Order{
		ID:           OrderID(n.reg.ids.Next(KindOrder)),
		Kind:         kind,
		Counterparty: counterparty,
		Positions:    append([]OrderPosition(nil), positions...),
		OrderDate:    tick,
		Status:       OrderOpen,
	}
	n.reg.orders[o.ID] = o
	n.orders = append(n.orders, o)
	return o, nil
}

// SKUs returns all SKUs in id order.
func (n *Network) SKUs() []*SKU {
	return n.skus
}

// Nodes returns all nodes in id order.
func (n *Network) Nodes() []*Node {
	return n.nodes
}

// Orders returns all orders in id order.
func (n *Network) Orders() []*Order {
	return n.orders
}

// NodesOf returns the nodes of kind in id order.
func (n *Network) NodesOf(kind NodeKind) []*Node {
	var out []*Node
	for _, node := range n.nodes {
		if node.Kind == kind {
			out = append(out, node)
		}
	}
	return out
}

// Suppliers returns all supplier nodes.
func (n *Network) Suppliers() []*Node { return n.NodesOf(Supplier) }

// Warehouses returns all warehouse nodes.
func (n *Network) Warehouses() []*Node { return n.NodesOf(Warehouse) }

// ProductionSites returns all production site nodes.
func (n *Network) ProductionSites() []*Node { return n.NodesOf(ProductionSite) }

// DemandNodes returns all demand nodes.
func (n *Network) DemandNodes() []*Node { return n.NodesOf(DemandNode) }

// Demands returns every demand of every demand node, ordered by node id then
// attachment order.
func (n *Network) Demands() []*Demand {
	var out []*Demand
	for _, node := range n.nodes {
		out = append(out, node.Demands...)
	}
	return out
}

// Validate checks referential integrity: every demand, reorder policy,
// recipe input and recipe line references an entity that exists, and
// stocking nodes with reorder policies have a supplier to order from.
func (n *Network) Validate() error {
	for _, node := range n.nodes {
		for _, d := range node.Demands {
			if _, ok := n.reg.skus[d.SKU]; !ok {
				return &ReferentialError{Kind: KindSKU, ID: int64(d.SKU), Source: fmt.Sprintf("demand %d at %q", d.ID, node.Name)}
			}
			if d.Node != node.ID {
				return &ReferentialError{Kind: KindNode, ID: int64(d.Node), Source: fmt.Sprintf("demand %d", d.ID)}
			}
		}
		if node.Inventory != nil {
			for _, p := range node.Inventory.Policies {
				if _, ok := n.reg.skus[p.SKU]; !ok {
					return &ReferentialError{Kind: KindSKU, ID: int64(p.SKU), Source: fmt.Sprintf("reorder policy at %q", node.Name)}
				}
				if err := p.Validate(); err != nil {
					return fmt.Errorf("reorder policy at %q: %w", node.Name, err)
				}
			}
			if len(node.Inventory.Policies) > 0 && len(n.Suppliers()) == 0 {
				return &ReferentialError{Kind: KindNode, Name: "supplier", Source: fmt.Sprintf("reorder policy at %q", node.Name)}
			}
		}
		if node.Production != nil {
			for _, r := range node.Production.Recipes {
				if _, ok := n.reg.skus[r.Product]; !ok {
					return &ReferentialError{Kind: KindSKU, ID: int64(r.Product), Source: fmt.Sprintf("recipe %d at %q", r.ID, node.Name)}
				}
				for _, in := range r.Inputs {
					if _, ok := n.reg.skus[in.SKU]; !ok {
						return &ReferentialError{Kind: KindSKU, ID: int64(in.SKU), Source: fmt.Sprintf("recipe %d at %q", r.ID, node.Name)}
					}
				}
				for _, id := range r.Lines {
					l, ok := n.reg.lines[id]
					if !ok || l.Site != node.ID {
						return &ReferentialError{Kind: KindLine, ID: int64(id), Source: fmt.Sprintf("recipe %d at %q", r.ID, node.Name)}
					}
				}
			}
		}
	}
	return nil
}

// NearestTo returns the candidates sorted by distance from loc, ties broken
// by node id. The distances are returned alongside, index-aligned.
func NearestTo(loc Location, candidates []*Node) ([]*Node, []float64, error) {
	type ranked struct {
		node *Node
		km   float64
	}
	rs := make([]ranked, 0, len(candidates))
	for _, c := range candidates {
		km, err := loc.DistanceKm(c.Location)
		if err != nil {
			return nil, nil, fmt.Errorf("distance to %q: %w", c.Name, err)
		}
		rs = append(rs, ranked{node: c, km: km})
	}
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].km != rs[j].km {
			return rs[i].km < rs[j].km
		}
		return rs[i].node.ID < rs[j].node.ID
	})
	nodes := make([]*Node, len(rs))
	kms := make([]float64, len(rs))
	for i, r := range rs {
		nodes[i] = r.node
		kms[i] = r.km
	}
	return nodes, kms, nil
}
