package sim

import (
	"fmt"

	"github.com/scdt-sim/scdt/sim/network"
)

// ReplenishmentProcess reviews one SKU at a stocking node every review
// interval. When the inventory position (on hand plus on order) is below the
// reorder point it places a purchase order with the nearest supplier for the
// difference to the order-up-to level and spawns the matching delivery.
type ReplenishmentProcess struct {
	node   *network.Node
	policy network.ReorderPolicy
}

// NewReplenishmentProcess creates the review process for one policy.
func NewReplenishmentProcess(node *network.Node, policy network.ReorderPolicy) *ReplenishmentProcess {
	return &ReplenishmentProcess{node: node, policy: policy}
}

func (p *ReplenishmentProcess) ID() string {
	return fmt.Sprintf("replenish-%d-%d", p.node.ID, p.policy.SKU)
}

// Start reviews immediately.
func (p *ReplenishmentProcess) Start(env Env) (Wake, error) {
	return WakeAt(env.Now()), nil
}

func (p *ReplenishmentProcess) Resume(env Env) (Wake, error) {
	next := WakeAt(env.Now() + p.policy.ReviewInterval)

	inv := p.node.Inventory
	position := inv.Position(p.policy.SKU)
	if position >= p.policy.ReorderPoint {
		return next, nil
	}

	net := env.Network()
	suppliers, kms, err := network.NearestTo(p.node.Location, net.Suppliers())
	if err != nil {
		return Wake{}, err
	}
	if len(suppliers) == 0 {
		return Wake{}, &ReferentialError{Kind: network.KindNode, Name: "supplier", Source: p.ID()}
	}
	supplier := suppliers[0]

	qty := p.policy.OrderUpTo - position
	po, err := net.NewOrder(network.PurchaseOrder, supplier.ID, env.Now(), network.OrderPosition{SKU: p.policy.SKU, Quantity: qty})
	if err != nil {
		return Wake{}, err
	}
	po.Receiver = p.node.ID
	inv.ExpectReceipt(p.policy.SKU, qty)

	lead := env.Config().LeadTime(kms[0])
	sku, _ := net.Registry().SKU(p.policy.SKU)
	env.Logf("Purchase order %d: %d x %s from %s to %s, lead time %d", po.ID, qty, sku.Name, supplier.Name, p.node.Name, lead)

	if err := env.Submit(po); err != nil {
		return Wake{}, err
	}
	if err := env.Spawn(NewDeliveryProcess(po, p.node, lead)); err != nil {
		return Wake{}, err
	}
	return next, nil
}
