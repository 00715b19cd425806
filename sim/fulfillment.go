package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/scdt-sim/scdt/sim/network"
)

// OrderProcessor receives every order a process submits. It decides what
// happens to the order; the session itself never closes orders.
type OrderProcessor interface {
	ProcessOrder(env Env, o *network.Order) error
}

// ReceiptListener is implemented by processors that react to stock arriving
// at a node, e.g. to retry backordered orders.
type ReceiptListener interface {
	OnReceipt(env Env, node *network.Node, sku network.SKUID) error
}

// RecordingProcessor keeps every submitted order open and remembers it.
// It is the default processor of a session.
type RecordingProcessor struct {
	orders []*network.Order
}

// NewRecordingProcessor creates an empty RecordingProcessor.
func NewRecordingProcessor() *RecordingProcessor {
	return &RecordingProcessor{}
}

func (r *RecordingProcessor) ProcessOrder(_ Env, o *network.Order) error {
	r.orders = append(r.orders, o)
	return nil
}

// Orders returns the submitted orders in submission order.
func (r *RecordingProcessor) Orders() []*network.Order {
	return r.orders
}

// StockFulfillment ships customer orders from the nearest nodes holding
// enough stock. An order is filled completely or not at all: when any
// position cannot be covered it is backordered, production is requested for
// the short SKUs where a site has a recipe, and the order is retried in FIFO
// order whenever stock arrives. Purchase orders are accepted as they are;
// their delivery closes them.
type StockFulfillment struct {
	// MaxBacklogTicks expires backordered orders older than this many ticks
	// when the backlog is next retried. Zero keeps them forever.
	MaxBacklogTicks int64

	backlog []*network.Order
}

// NewStockFulfillment creates a StockFulfillment with an empty backlog.
func NewStockFulfillment(maxBacklogTicks int64) *StockFulfillment {
	return &StockFulfillment{MaxBacklogTicks: maxBacklogTicks}
}

// Backlog returns the backordered orders still waiting, oldest first.
func (f *StockFulfillment) Backlog() []*network.Order {
	return f.backlog
}

func (f *StockFulfillment) ProcessOrder(env Env, o *network.Order) error {
	if o.Kind == network.PurchaseOrder {
		return nil
	}
	filled, err := f.tryFill(env, o)
	if err != nil || filled {
		return err
	}

	o.Status = network.OrderBackordered
	f.backlog = append(f.backlog, o)
	env.Metrics().Backordered()
	logrus.Warnf("[tick %07d] order %d backordered", env.Now(), o.ID)
	env.Logf("Order %d backordered", o.ID)
	return f.requestProduction(env, o)
}

// OnReceipt retries the backlog. Orders that have waited too long expire.
func (f *StockFulfillment) OnReceipt(env Env, _ *network.Node, _ network.SKUID) error {
	if len(f.backlog) == 0 {
		return nil
	}
	waiting := f.backlog[:0]
	for _, o := range f.backlog {
		if f.MaxBacklogTicks > 0 && env.Now()-o.OrderDate > f.MaxBacklogTicks {
			if err := env.CloseOrder(o, network.OrderExpired); err != nil {
				return err
			}
			env.Logf("Order %d expired", o.ID)
			continue
		}
		filled, err := f.tryFill(env, o)
		if err != nil {
			return err
		}
		if !filled {
			waiting = append(waiting, o)
		}
	}
	clear(f.backlog[len(waiting):])
	f.backlog = waiting
	return nil
}

type allocation struct {
	node *network.Node
	sku  network.SKUID
	qty  network.Quantity
}

// tryFill plans a source for every position first and only takes stock
// once all positions are covered.
func (f *StockFulfillment) tryFill(env Env, o *network.Order) (bool, error) {
	net := env.Network()
	customer, ok := net.Registry().Node(o.Counterparty)
	if !ok {
		return false, &ReferentialError{Kind: network.KindNode, ID: int64(o.Counterparty), Source: o.String()}
	}
	candidates, _, err := network.NearestTo(customer.Location, stockingNodes(net))
	if err != nil {
		return false, err
	}

	type key struct {
		node network.NodeID
		sku  network.SKUID
	}
	reserved := make(map[key]network.Quantity)
	plan := make([]allocation, 0, len(o.Positions))
	for _, pos := range o.Positions {
		var src *network.Node
		for _, n := range candidates {
			if n.Inventory.OnHand(pos.SKU)-reserved[key{n.ID, pos.SKU}] >= pos.Quantity {
				src = n
				break
			}
		}
		if src == nil {
			return false, nil
		}
		reserved[key{src.ID, pos.SKU}] += pos.Quantity
		plan = append(plan, allocation{node: src, sku: pos.SKU, qty: pos.Quantity})
	}

	for _, a := range plan {
		if !a.node.Inventory.Take(a.sku, a.qty) {
			return false, fmt.Errorf("stock of %d at %q changed while filling order %d", a.sku, a.node.Name, o.ID)
		}
		sku, _ := net.Registry().SKU(a.sku)
		env.Logf("Shipped %d x %s from %s for order %d", a.qty, sku.Name, a.node.Name, o.ID)
	}
	if err := env.CloseOrder(o, network.OrderFulfilled); err != nil {
		return false, err
	}
	return true, nil
}

// requestProduction queues enough batches at the nearest capable site for
// every position of o that no node can currently cover.
func (f *StockFulfillment) requestProduction(env Env, o *network.Order) error {
	net := env.Network()
	customer, ok := net.Registry().Node(o.Counterparty)
	if !ok {
		return &ReferentialError{Kind: network.KindNode, ID: int64(o.Counterparty), Source: o.String()}
	}
	for _, pos := range o.Positions {
		if availableAnywhere(net, pos) {
			continue
		}
		var capable []*network.Node
		for _, site := range net.ProductionSites() {
			if _, ok := site.Production.RecipeFor(pos.SKU); ok {
				capable = append(capable, site)
			}
		}
		if len(capable) == 0 {
			continue
		}
		sites, _, err := network.NearestTo(customer.Location, capable)
		if err != nil {
			return err
		}
		site := sites[0]
		recipe, _ := site.Production.RecipeFor(pos.SKU)
		batches := int((pos.Quantity + recipe.BatchSize - 1) / recipe.BatchSize)
		env.Logf("Requested %d batches of recipe %d at %s for order %d", batches, recipe.ID, site.Name, o.ID)
		if err := ScheduleProduction(env, site, recipe, batches); err != nil {
			return err
		}
	}
	return nil
}

func stockingNodes(net *network.Network) []*network.Node {
	var nodes []*network.Node
	for _, n := range net.Nodes() {
		if n.Inventory != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func availableAnywhere(net *network.Network, pos network.OrderPosition) bool {
	for _, n := range stockingNodes(net) {
		if n.Inventory.OnHand(pos.SKU) >= pos.Quantity {
			return true
		}
	}
	return false
}
