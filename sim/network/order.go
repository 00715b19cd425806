package network

import "fmt"

// OrderKind distinguishes the order variants.
type OrderKind int

const (
	// CustomerOrder is placed by a demand node; Counterparty is that node.
	CustomerOrder OrderKind = iota
	// PurchaseOrder is placed with a supplier; Counterparty is the supplier
	// and Receiver is the stocking node awaiting delivery.
	PurchaseOrder
)

// String method for OrderKind enum
func (k OrderKind) String() string {
	switch k {
	case CustomerOrder:
		return "CustomerOrder"
	case PurchaseOrder:
		return "PurchaseOrder"
	default:
		return "Unknown"
	}
}

// OrderStatus tracks an order from creation to close.
type OrderStatus int

const (
	OrderOpen OrderStatus = iota
	OrderBackordered
	OrderFulfilled
	OrderExpired
)

// String method for OrderStatus enum
func (s OrderStatus) String() string {
	switch s {
	case OrderOpen:
		return "Open"
	case OrderBackordered:
		return "Backordered"
	case OrderFulfilled:
		return "Fulfilled"
	case OrderExpired:
		return "Expired"
	default:
		return "Unknown"
	}
}

// Closed reports whether the status is terminal.
func (s OrderStatus) Closed() bool {
	return s == OrderFulfilled || s == OrderExpired
}

// OrderPosition is one line of an order.
type OrderPosition struct {
	SKU      SKUID
	Quantity Quantity
}

// Order is a set of positions placed at OrderDate (simulation ticks) with a
// counterparty. Orders are created by processes and handed to an order
// processor; they close as fulfilled or expired.
type Order struct {
	ID           OrderID
	Kind         OrderKind
	Counterparty NodeID
	Receiver     NodeID   // purchase orders only
	Demand       DemandID // customer orders generated by a Demand
	Positions    []OrderPosition
	OrderDate    int64
	Status       OrderStatus
	ClosedAt     int64
}

// TotalQuantity sums the quantities of all positions.
func (o *Order) TotalQuantity() Quantity {
	var total Quantity
	for _, p := range o.Positions {
		total += p.Quantity
	}
	return total
}

// Close moves the order to a terminal status at tick.
func (o *Order) Close(status OrderStatus, tick int64) error {
	if !status.Closed() {
		return fmt.Errorf("order %d: %s is not a closing status", o.ID, status)
	}
	if o.Status.Closed() {
		return fmt.Errorf("order %d already closed as %s", o.ID, o.Status)
	}
	if tick < o.OrderDate {
		return fmt.Errorf("order %d: close at %d precedes order date %d", o.ID, tick, o.OrderDate)
	}
	o.Status = status
	o.ClosedAt = tick
	return nil
}

func (o *Order) String() string {
	return fmt.Sprintf("%s#%d@%d[%s]", o.Kind, o.ID, o.OrderDate, o.Status)
}
