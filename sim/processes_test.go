package sim

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scdt-sim/scdt/sim/internal/testutil"
	"github.com/scdt-sim/scdt/sim/network"
)

// newReferenceNetwork builds a supplier, a stocked warehouse with an (s, S)
// policy and a store ordering 100 units every 15 ticks for 30 days.
func newReferenceNetwork(t *testing.T) *network.Network {
	t.Helper()
	net := network.New("reference")
	sku, err := net.AddSKU("widget")
	require.NoError(t, err)
	_, err = net.AddNode(network.Supplier, "acme", bogota)
	require.NoError(t, err)
	central, err := net.AddNode(network.Warehouse, "central", medellin)
	require.NoError(t, err)
	central.Inventory.Policies = append(central.Inventory.Policies, network.ReorderPolicy{
		SKU: sku.ID, ReorderPoint: 50, OrderUpTo: 200, ReviewInterval: 10,
	})
	store, err := net.AddNode(network.DemandNode, "store", medellin)
	require.NoError(t, err)
	_, err = net.AddDemand(store, sku.ID, network.DemandProcessSpec{
		Kind: network.DemandSimple, Interval: 15, Quantity: 100, LastOrderDate: testStart.AddDate(0, 0, 30),
	})
	require.NoError(t, err)
	return net
}

func newPoissonNetwork(t *testing.T) *network.Network {
	t.Helper()
	net := network.New("poisson")
	sku, err := net.AddSKU("widget")
	require.NoError(t, err)
	for _, name := range []string{"north", "south"} {
		store, err := net.AddNode(network.DemandNode, name, medellin)
		require.NoError(t, err)
		_, err = net.AddDemand(store, sku.ID, network.DemandProcessSpec{
			Kind: network.DemandPoisson, MeanInterval: 3, MeanQuantity: 20, LastOrderDate: farFuture,
		})
		require.NoError(t, err)
	}
	return net
}

func withStockFulfillment(maxBacklog int64) func(*Config) {
	return func(c *Config) { c.Processor = NewStockFulfillment(maxBacklog) }
}

func actionTicks(s *Session, prefix string) []int64 {
	var ticks []int64
	for _, r := range s.Trace().Records {
		if strings.HasPrefix(r.Action, prefix) {
			ticks = append(ticks, r.Tick)
		}
	}
	return ticks
}

func TestSession_ReferenceScenario_GoldenTrace(t *testing.T) {
	s := newInitializedSession(t, newReferenceNetwork(t), withStockFulfillment(0))

	require.NoError(t, s.Run(50))

	testutil.AssertGolden(t, "reference_trace", s.Trace().Bytes())
}

func TestSession_SameSeed_ProducesIdenticalTraces(t *testing.T) {
	run := func(seed int64) []byte {
		s := newInitializedSession(t, newPoissonNetwork(t), func(c *Config) { c.Seed = seed })
		require.NoError(t, s.Run(120))
		return s.Trace().Bytes()
	}

	first := run(7)
	require.NotEmpty(t, first)
	assert.Equal(t, first, run(7), "same seed must reproduce the trace byte for byte")
	assert.NotEqual(t, first, run(8), "different seeds should diverge")
}

func TestPoissonDemand_OrdersArePositiveAndSpaced(t *testing.T) {
	net := newPoissonNetwork(t)
	s := newInitializedSession(t, net)
	require.NoError(t, s.Run(200))

	for _, d := range net.Demands() {
		h := d.History()
		require.NotEmpty(t, h)
		assert.Greater(t, h[0].Tick, int64(0), "first poisson order waits one gap")
		for i, e := range h {
			assert.Greater(t, e.Quantity, network.Quantity(0))
			if i > 0 {
				assert.Greater(t, e.Tick, h[i-1].Tick)
			}
		}
	}
}

func TestReplenishment_OrdersUpToLevelAndReceivesAfterLeadTime(t *testing.T) {
	net := newReferenceNetwork(t)
	// Drop the store so only the warehouse policy acts.
	store, _ := net.Registry().NodeByName("store")
	store.Demands = nil
	central, _ := net.Registry().NodeByName("central")
	s := newInitializedSession(t, net, func(c *Config) { c.TransportKmPerTick = 100 })

	require.NoError(t, s.Run(0))
	require.Len(t, net.Orders(), 1)
	po := net.Orders()[0]
	assert.Equal(t, network.PurchaseOrder, po.Kind)
	assert.Equal(t, central.ID, po.Receiver)
	assert.Equal(t, network.Quantity(200), po.TotalQuantity())
	assert.Equal(t, network.Quantity(200), central.Inventory.OnOrder(1))
	assert.Equal(t, network.Quantity(0), central.Inventory.OnHand(1))

	km, err := medellin.DistanceKm(bogota)
	require.NoError(t, err)
	lead := s.Config().LeadTime(km)
	require.Greater(t, lead, int64(1))

	require.NoError(t, s.Run(lead-1))
	assert.Equal(t, network.OrderOpen, po.Status)

	require.NoError(t, s.Run(100))
	assert.Equal(t, network.OrderFulfilled, po.Status)
	assert.Equal(t, lead, po.ClosedAt)
	assert.Equal(t, network.Quantity(200), central.Inventory.OnHand(1))
	assert.Equal(t, network.Quantity(0), central.Inventory.OnOrder(1))
	assert.Len(t, net.Orders(), 1, "position above the reorder point orders nothing")
}

func TestStockFulfillment_ShipsFromNearestStockedNode(t *testing.T) {
	net := network.New("nearest")
	sku, err := net.AddSKU("widget")
	require.NoError(t, err)
	far, err := net.AddNode(network.Warehouse, "bog", bogota)
	require.NoError(t, err)
	near, err := net.AddNode(network.Warehouse, "med", medellin)
	require.NoError(t, err)
	far.Inventory.Add(sku.ID, 100)
	near.Inventory.Add(sku.ID, 100)
	store, err := net.AddNode(network.DemandNode, "store", network.Location{Lat: 6.25, Lon: -75.56})
	require.NoError(t, err)
	_, err = net.AddDemand(store, sku.ID, network.DemandProcessSpec{
		Kind: network.DemandSimple, Interval: 1, Quantity: 60, LastOrderDate: testStart.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	s := newInitializedSession(t, net, withStockFulfillment(0))

	require.NoError(t, s.Run(5))

	assert.Equal(t, network.Quantity(40), near.Inventory.OnHand(sku.ID))
	assert.Equal(t, network.Quantity(40), far.Inventory.OnHand(sku.ID), "second order falls back to the next nearest node")
	for _, o := range net.Orders() {
		assert.Equal(t, network.OrderFulfilled, o.Status)
	}
	var shipped []string
	for _, r := range s.Trace().Records {
		if strings.HasPrefix(r.Action, "Shipped") {
			shipped = append(shipped, r.Action)
		}
	}
	assert.Equal(t, []string{
		"Shipped 60 x widget from med for order 1",
		"Shipped 60 x widget from bog for order 2",
	}, shipped)
}

func TestStockFulfillment_ExpiresStaleBacklog(t *testing.T) {
	net := newReferenceNetwork(t)
	store, _ := net.Registry().NodeByName("store")
	store.Demands[0].Process.LastOrderDate = testStart
	proc := NewStockFulfillment(3)
	s := newInitializedSession(t, net, func(c *Config) {
		c.Processor = proc
		c.TransportKmPerTick = 10
	})

	require.NoError(t, s.Run(100))

	orders := net.Orders()
	require.Len(t, orders, 2)
	po, co := orders[0], orders[1]
	assert.Equal(t, network.CustomerOrder, co.Kind)
	assert.Equal(t, network.OrderExpired, co.Status)
	assert.Equal(t, po.ClosedAt, co.ClosedAt, "expiry is noticed when stock arrives")
	assert.Empty(t, proc.Backlog())
}

// newPlantNetwork builds a production site making parts from resin and a
// store ordering 60 parts on ticks 0 and 1.
func newPlantNetwork(t *testing.T, lines int) (*network.Network, *network.Node) {
	t.Helper()
	net := network.New("plant")
	resin, err := net.AddSKU("resin")
	require.NoError(t, err)
	part, err := net.AddSKU("part")
	require.NoError(t, err)
	plant, err := net.AddNode(network.ProductionSite, "plant", medellin)
	require.NoError(t, err)
	for i := 0; i < lines; i++ {
		_, err = net.AddLine(plant)
		require.NoError(t, err)
	}
	require.NoError(t, net.AddRecipe(plant, &network.Recipe{
		Product:            part.ID,
		Inputs:             []network.RecipeInput{{SKU: resin.ID, PerUnit: decimal.RequireFromString("0.5")}},
		BatchSize:          50,
		SetupTime:          2,
		ProcessingTimeUnit: 0.1,
	}))
	plant.Inventory.Add(resin.ID, 1000)
	store, err := net.AddNode(network.DemandNode, "store", medellin)
	require.NoError(t, err)
	_, err = net.AddDemand(store, part.ID, network.DemandProcessSpec{
		Kind: network.DemandSimple, Interval: 1, Quantity: 60, LastOrderDate: testStart.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	return net, plant
}

func TestProduction_BackorderTriggersSerialBatches(t *testing.T) {
	net, plant := newPlantNetwork(t, 1)
	s := newInitializedSession(t, net, withStockFulfillment(0))

	require.NoError(t, s.Run(100))

	// Two orders of 60 need two batches of 50 each; one line runs them back to back.
	assert.Equal(t, []int64{7, 14, 21, 28}, actionTicks(s, "Batch done"))
	assert.Equal(t, []int64{0, 7, 14, 21}, actionTicks(s, "Batch start"))

	orders := net.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, network.OrderFulfilled, orders[0].Status)
	assert.Equal(t, int64(14), orders[0].ClosedAt)
	assert.Equal(t, network.OrderFulfilled, orders[1].Status)
	assert.Equal(t, int64(21), orders[1].ClosedAt)

	assert.Equal(t, network.Quantity(80), plant.Inventory.OnHand(2))
	assert.Equal(t, network.Quantity(900), plant.Inventory.OnHand(1), "each batch consumes 25 resin")
	assert.False(t, plant.Production.Lines[0].Busy())
	assert.Equal(t, float64(4), sampleValue(t, s.Metrics(), "scdt_production_batches_total", map[string]string{}))
	assert.Equal(t, float64(200), sampleValue(t, s.Metrics(), "scdt_units_produced_total", map[string]string{}))
	assert.Equal(t, float64(2), sampleValue(t, s.Metrics(), "scdt_backorders_total", map[string]string{}))
}

func TestProduction_JobsSpreadOverLeastLoadedLines(t *testing.T) {
	net, plant := newPlantNetwork(t, 2)
	s := newInitializedSession(t, net, withStockFulfillment(0))

	require.NoError(t, s.Run(1))

	a, b := plant.Production.Lines[0], plant.Production.Lines[1]
	assert.True(t, a.Busy())
	assert.True(t, b.Busy(), "second job goes to the idle line")

	require.NoError(t, s.Run(100))
	assert.Equal(t, []int64{7, 8, 14, 15}, actionTicks(s, "Batch done"))
	assert.False(t, a.Busy())
	assert.False(t, b.Busy())
}

func TestScheduleProduction_Errors(t *testing.T) {
	net, plant := newPlantNetwork(t, 1)
	s := newInitializedSession(t, net)
	recipe := plant.Production.Recipes[0]
	store, _ := net.Registry().NodeByName("store")

	assert.Error(t, ScheduleProduction(s, store, recipe, 1))
	assert.Error(t, ScheduleProduction(s, plant, recipe, 0))

	empty, err := net.AddNode(network.ProductionSite, "empty", medellin)
	require.NoError(t, err)
	assert.ErrorContains(t, ScheduleProduction(s, empty, recipe, 1), "no production line")
}

func TestStockFulfillment_UnknownCustomer_ReturnsReferentialError(t *testing.T) {
	net, _ := newPlantNetwork(t, 1)
	s := newInitializedSession(t, net)
	f := NewStockFulfillment(0)
	o := &network.Order{ID: 99, Kind: network.CustomerOrder, Counterparty: 999,
		Positions: []network.OrderPosition{{SKU: 1, Quantity: 10}}}

	var re *ReferentialError
	require.True(t, errors.As(f.requestProduction(s, o), &re))
	assert.Equal(t, network.KindNode, re.Kind)
	assert.Equal(t, int64(999), re.ID)

	require.True(t, errors.As(f.ProcessOrder(s, o), &re))
	assert.Empty(t, f.Backlog())
}

func TestDeliveryProcess_ClosesAndReceives(t *testing.T) {
	net := newReferenceNetwork(t)
	central, _ := net.Registry().NodeByName("central")
	acme, _ := net.Registry().NodeByName("acme")
	s := newInitializedSession(t, network.New("empty"))
	po, err := net.NewOrder(network.PurchaseOrder, acme.ID, 0, network.OrderPosition{SKU: 1, Quantity: 30})
	require.NoError(t, err)
	require.NoError(t, s.Spawn(NewDeliveryProcess(po, central, 4)))
	require.NoError(t, s.Run(10))

	assert.Equal(t, network.OrderFulfilled, po.Status)
	assert.Equal(t, int64(4), po.ClosedAt)
	assert.Equal(t, network.Quantity(30), central.Inventory.OnHand(1))
	assert.Equal(t, []int64{4}, actionTicks(s, "Delivery"))

	assert.Error(t, s.Spawn(NewDeliveryProcess(po, central, -1)))
}

func TestDemandCutoff_UsesCalendarDate(t *testing.T) {
	net, d := newDemandNetwork(t, 7, 5, time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))
	s := newInitializedSession(t, net)

	require.NoError(t, s.Run(100))

	assert.Equal(t, []int64{0, 7, 14}, func() []int64 {
		var ticks []int64
		for _, e := range d.History() {
			ticks = append(ticks, e.Tick)
		}
		return ticks
	}())
}
