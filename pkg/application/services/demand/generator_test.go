package demand

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/vsinha/mrpsim/pkg/domain/catalog"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/infrastructure/events"
	testhelpers "github.com/vsinha/mrpsim/pkg/infrastructure/testing"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestGenerator_NoFinishedProducts(t *testing.T) {
	cat, err := catalog.New([]entities.Product{{ID: 1, Name: "Steel", Kind: entities.Raw}}, nil, nil)
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}
	ledgers := testhelpers.NewLedgers(nil)
	eventLog := events.NewInMemoryEventStore(nil)
	gen := NewGenerator(cat, ledgers.Orders, eventLog, newRand(1), nil)

	for i := 0; i < 5; i++ {
		created, err := gen.Generate(testhelpers.StartDate, Params{Mean: 5, StdDev: 0, BaseLeadTime: 3})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(created) != 0 {
			t.Fatalf("Expected no orders, got %v", created)
		}
	}
	if ledgers.Orders.Len() != 0 || eventLog.Len() != 0 {
		t.Errorf("Expected nothing recorded, got %d orders and %d events", ledgers.Orders.Len(), eventLog.Len())
	}
}

func TestGenerator_DeterministicOrders(t *testing.T) {
	cat := testhelpers.BuildPrinterCatalog()
	params := Params{Mean: 12, StdDev: 0, BaseLeadTime: 3, OrdersPerDay: 2}

	ledgers := testhelpers.NewLedgers(nil)
	eventLog := events.NewInMemoryEventStore(nil)
	gen := NewGenerator(cat, ledgers.Orders, eventLog, newRand(42), nil)

	created, err := gen.Generate(testhelpers.StartDate, params)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("Expected 2 orders, got %d", len(created))
	}

	for i, order := range created {
		if order.ID != entities.OrderID(i+1) {
			t.Errorf("Expected sequential id %d, got %d", i+1, order.ID)
		}
		if order.Quantity != 12 || order.InitialQuantity != 12 {
			t.Errorf("Expected quantity 12 with zero stddev, got %d/%d", order.Quantity, order.InitialQuantity)
		}
		if order.Status != entities.OrderPending {
			t.Errorf("Expected pending, got %s", order.Status)
		}
		product, _ := cat.Product(order.ProductID)
		if !product.IsFinished() {
			t.Errorf("Expected a finished product, got %+v", product)
		}
		// 3 base days + 12/5 extra days
		if !order.DeliveryDate.Equal(testhelpers.StartDate.AddDays(5)) {
			t.Errorf("Expected delivery in 5 days, got %s", order.DeliveryDate)
		}
	}

	orderEvents := eventLog.ByType(entities.EventOrder)
	if len(orderEvents) != 2 {
		t.Fatalf("Expected 2 order events, got %d", len(orderEvents))
	}
	extra := orderEvents[0].Extra
	if extra["extra_days"] != "2" || extra["total_days"] != "5" || extra[events.ExtraAction] != events.ActionGenerated {
		t.Errorf("Unexpected extra: %v", extra)
	}

	// Same seed, same orders
	replay := testhelpers.NewLedgers(nil)
	again, err := NewGenerator(cat, replay.Orders, events.NewInMemoryEventStore(nil), newRand(42), nil).Generate(testhelpers.StartDate, params)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for i := range created {
		if created[i].ProductID != again[i].ProductID {
			t.Errorf("order %d: expected product %d on replay, got %d", i, created[i].ProductID, again[i].ProductID)
		}
	}
}

func TestDrawQuantity(t *testing.T) {
	rng := newRand(7)

	for i := 0; i < 500; i++ {
		if q := DrawQuantity(rng, 1, 10); q < 1 {
			t.Fatalf("Expected quantities of at least 1, got %d", q)
		}
	}

	tests := []struct {
		mean     float64
		expected entities.Quantity
	}{
		{5, 5},
		{5.9, 5},
		{0, 1},
		{-3, 1},
		{1e19, entities.MaxOrderQuantity},
		{math.Inf(1), entities.MaxOrderQuantity},
	}
	for _, tt := range tests {
		if got := DrawQuantity(rng, tt.mean, 0); got != tt.expected {
			t.Errorf("mean %v: expected %d, got %d", tt.mean, tt.expected, got)
		}
	}
}

func TestGenerator_ZeroOrdersPerDay(t *testing.T) {
	ledgers := testhelpers.NewLedgers(nil)
	eventLog := events.NewInMemoryEventStore(nil)
	gen := NewGenerator(testhelpers.BuildPrinterCatalog(), ledgers.Orders, eventLog, newRand(1), nil)

	created, err := gen.Generate(testhelpers.StartDate, Params{Mean: 5, StdDev: 1, BaseLeadTime: 3, OrdersPerDay: 0})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(created) != 0 || ledgers.Orders.Len() != 0 || eventLog.Len() != 0 {
		t.Errorf("Expected no demand, got %d orders and %d events", ledgers.Orders.Len(), eventLog.Len())
	}
}

func TestGenerator_LargestOrders(t *testing.T) {
	ledgers := testhelpers.NewLedgers(nil)
	gen := NewGenerator(testhelpers.BuildPrinterCatalog(), ledgers.Orders, events.NewInMemoryEventStore(nil), newRand(1), nil)

	params := Params{Mean: 1e6, StdDev: 1e6, BaseLeadTime: entities.MaxLeadTimeDays, OrdersPerDay: 20}
	created, err := gen.Generate(testhelpers.StartDate, params)
	if err != nil {
		t.Fatalf("Expected demand at the limits to succeed, got %v", err)
	}
	for _, order := range created {
		if order.Quantity > entities.MaxOrderQuantity {
			t.Errorf("order %d: expected at most %d units, got %d", order.ID, entities.MaxOrderQuantity, order.Quantity)
		}
		if order.DeliveryDate.After(entities.MaxDate) {
			t.Errorf("order %d: delivery %s is past the calendar", order.ID, order.DeliveryDate)
		}
	}
}
