package sim

import (
	"fmt"

	"github.com/scdt-sim/scdt/sim/network"
)

// DeliveryProcess is a one-shot process: it waits for the lead time of a
// purchase order, books the goods into the receiving node and closes the
// order.
type DeliveryProcess struct {
	order    *network.Order
	receiver *network.Node
	lead     int64
}

// NewDeliveryProcess creates the delivery of po to receiver after lead ticks.
func NewDeliveryProcess(po *network.Order, receiver *network.Node, lead int64) *DeliveryProcess {
	return &DeliveryProcess{order: po, receiver: receiver, lead: lead}
}

func (p *DeliveryProcess) ID() string {
	return fmt.Sprintf("delivery-%d", p.order.ID)
}

func (p *DeliveryProcess) Start(env Env) (Wake, error) {
	if p.lead < 0 {
		return Wake{}, fmt.Errorf("negative lead time %d", p.lead)
	}
	return WakeAt(env.Now() + p.lead), nil
}

func (p *DeliveryProcess) Resume(env Env) (Wake, error) {
	env.Logf("Delivery of purchase order %d at %s", p.order.ID, p.receiver.Name)
	if err := env.CloseOrder(p.order, network.OrderFulfilled); err != nil {
		return Wake{}, err
	}
	for _, pos := range p.order.Positions {
		if err := env.Receive(p.receiver, pos.SKU, pos.Quantity); err != nil {
			return Wake{}, err
		}
	}
	return Terminate(), nil
}
