package network

import (
	"fmt"
	"sort"
)

// ReorderPolicy is a periodic-review (s, S) rule for one SKU at a stocking
// node: every ReviewInterval ticks, if on-hand plus on-order falls below
// ReorderPoint, order up to OrderUpTo.
type ReorderPolicy struct {
	SKU            SKUID
	ReorderPoint   Quantity
	OrderUpTo      Quantity
	ReviewInterval int64
}

// Validate checks the policy parameters.
func (p ReorderPolicy) Validate() error {
	if p.ReviewInterval <= 0 {
		return fmt.Errorf("review_interval must be positive, got %d", p.ReviewInterval)
	}
	if p.ReorderPoint < 0 {
		return fmt.Errorf("reorder_point must be non-negative, got %d", p.ReorderPoint)
	}
	if p.OrderUpTo <= p.ReorderPoint {
		return fmt.Errorf("order_up_to (%d) must exceed reorder_point (%d)", p.OrderUpTo, p.ReorderPoint)
	}
	return nil
}

// Inventory is the stock-holding capability of a node.
type Inventory struct {
	Policies []ReorderPolicy

	onHand  map[SKUID]Quantity
	onOrder map[SKUID]Quantity
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{
		onHand:  make(map[SKUID]Quantity),
		onOrder: make(map[SKUID]Quantity),
	}
}

// OnHand returns the stock of sku.
func (inv *Inventory) OnHand(sku SKUID) Quantity {
	return inv.onHand[sku]
}

// OnOrder returns the quantity of sku ordered but not yet received.
func (inv *Inventory) OnOrder(sku SKUID) Quantity {
	return inv.onOrder[sku]
}

// Position is on-hand plus on-order.
func (inv *Inventory) Position(sku SKUID) Quantity {
	return inv.onHand[sku] + inv.onOrder[sku]
}

// Add increases the stock of sku.
func (inv *Inventory) Add(sku SKUID, q Quantity) {
	if q < 0 {
		panic(fmt.Sprintf("Inventory.Add: negative quantity %d", q))
	}
	inv.onHand[sku] += q
}

// Take removes q units of sku if that many are on hand. Stock is left
// untouched and false returned otherwise.
func (inv *Inventory) Take(sku SKUID, q Quantity) bool {
	if q < 0 || inv.onHand[sku] < q {
		return false
	}
	inv.onHand[sku] -= q
	return true
}

// TakeUpTo removes at most q units of sku and returns how many were taken.
func (inv *Inventory) TakeUpTo(sku SKUID, q Quantity) Quantity {
	taken := min(q, inv.onHand[sku])
	if taken <= 0 {
		return 0
	}
	inv.onHand[sku] -= taken
	return taken
}

// ExpectReceipt records q units of sku as on order.
func (inv *Inventory) ExpectReceipt(sku SKUID, q Quantity) {
	inv.onOrder[sku] += q
}

// Receive moves q units of sku from on-order to on-hand. Receipts that were
// never announced are simply added to stock.
func (inv *Inventory) Receive(sku SKUID, q Quantity) {
	inv.onOrder[sku] = max(0, inv.onOrder[sku]-q)
	inv.Add(sku, q)
}

// SKUs returns the SKUs with stock or open receipts, ascending by id.
func (inv *Inventory) SKUs() []SKUID {
	seen := make(map[SKUID]bool)
	for sku := range inv.onHand {
		seen[sku] = true
	}
	for sku := range inv.onOrder {
		seen[sku] = true
	}
	ids := make([]SKUID, 0, len(seen))
	for sku := range seen {
		ids = append(ids, sku)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
