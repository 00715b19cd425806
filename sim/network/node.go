package network

import (
	"fmt"
	"strings"

	"github.com/scdt-sim/scdt/sim/geo"
)

// Quantity counts units of a SKU.
type Quantity int64

// SKU is an immutable stock-keeping unit.
type SKU struct {
	ID   SKUID
	Name string
}

// Location is a latitude/longitude pair in degrees.
type Location struct {
	Lat float64
	Lon float64
}

// DistanceKm returns the great-circle distance to other.
func (l Location) DistanceKm(other Location) (float64, error) {
	return geo.GreatCircleKm(l.Lat, l.Lon, other.Lat, other.Lon)
}

func (l Location) String() string {
	return fmt.Sprintf("(%g, %g)", l.Lat, l.Lon)
}

// NodeKind is the discriminant of a Node.
type NodeKind int

const (
	Supplier NodeKind = iota
	Warehouse
	ProductionSite
	DemandNode
)

// String method for NodeKind enum
func (k NodeKind) String() string {
	switch k {
	case Supplier:
		return "Supplier"
	case Warehouse:
		return "Warehouse"
	case ProductionSite:
		return "ProductionSite"
	case DemandNode:
		return "DemandNode"
	default:
		return "Unknown"
	}
}

// Capability is one behavior a node may carry.
type Capability string

const (
	CapReceivesOrders  Capability = "receives-orders"
	CapHoldsInventory  Capability = "holds-inventory"
	CapGeneratesDemand Capability = "generates-demand"
	CapProducesGoods   Capability = "produces-goods"
)

// Node is a location in the network. Nodes are created once while the
// network is built and never destroyed during a run; only their capability
// substructures (demand history, stock, line queues) change.
//
// Capabilities are optional: a nil Inventory means the node holds no stock,
// a nil Production means it produces nothing, an empty Demands slice means
// it generates no demand.
type Node struct {
	ID       NodeID
	Name     string
	Kind     NodeKind
	Location Location

	Demands    []*Demand
	Inventory  *Inventory
	Production *ProductionCapability
}

// AcceptsOrders reports whether purchase orders may be placed with the node.
func (n *Node) AcceptsOrders() bool {
	return n.Kind == Supplier
}

// Has reports whether the node carries capability c.
func (n *Node) Has(c Capability) bool {
	switch c {
	case CapReceivesOrders:
		return n.AcceptsOrders()
	case CapHoldsInventory:
		return n.Inventory != nil
	case CapGeneratesDemand:
		return len(n.Demands) > 0
	case CapProducesGoods:
		return n.Production != nil
	default:
		return false
	}
}

// Capabilities lists the capabilities the node carries, in a fixed order.
func (n *Node) Capabilities() []Capability {
	var caps []Capability
	for _, c := range []Capability{CapReceivesOrders, CapHoldsInventory, CapGeneratesDemand, CapProducesGoods} {
		if n.Has(c) {
			caps = append(caps, c)
		}
	}
	return caps
}

func (n *Node) String() string {
	caps := make([]string, 0, 4)
	for _, c := range n.Capabilities() {
		caps = append(caps, string(c))
	}
	return fmt.Sprintf("%s#%d %s %s [%s]", n.Kind, n.ID, n.Name, n.Location, strings.Join(caps, ","))
}
