package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/vsinha/mrpsim/pkg/application/dto"
	"github.com/vsinha/mrpsim/pkg/application/services/demand"
	"github.com/vsinha/mrpsim/pkg/domain/catalog"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/infrastructure/events"
	testhelpers "github.com/vsinha/mrpsim/pkg/infrastructure/testing"
)

type levels = map[entities.ProductID]entities.Quantity

var fixedDemand = demand.Params{Mean: 5, StdDev: 0, BaseLeadTime: 3, OrdersPerDay: 1}

func testConfig(capacity entities.Quantity, seed uint64) Config {
	cfg := DefaultConfig()
	cfg.DailyCapacity = capacity
	cfg.StartDate = testhelpers.StartDate
	cfg.Seed = seed
	cfg.Demand = fixedDemand
	return cfg
}

func simpleSnapshot(stock levels, orders ...entities.Order) dto.Snapshot {
	return dto.Snapshot{
		RunID:       uuid.New(),
		Day:         1,
		CurrentDate: testhelpers.StartDate,
		Inventory:   stock,
		Orders:      orders,
	}
}

func TestSimulator_SimpleScenario(t *testing.T) {
	cat := testhelpers.BuildSimpleCatalog()
	order := *testhelpers.MustReleasedOrder(1, testhelpers.SimpleFinished, 6)
	sim, err := Restore(cat, testConfig(100, 1), simpleSnapshot(levels{testhelpers.SimpleMaterial: 10}, order))
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	result, err := sim.AdvanceDay(fixedDemand)
	if err != nil {
		t.Fatalf("AdvanceDay failed: %v", err)
	}

	if result.Day != 2 || !result.Date.Equal(testhelpers.StartDate.AddDays(1)) {
		t.Errorf("Expected day 2 on %s, got day %d on %s", testhelpers.StartDate.AddDays(1), result.Day, result.Date)
	}
	if result.CapacityUsed != 5 || result.Produced[testhelpers.SimpleFinished] != 5 {
		t.Errorf("Expected 5 units produced, got %d (%v)", result.CapacityUsed, result.Produced)
	}

	inventory := sim.Inventory()
	if inventory[testhelpers.SimpleMaterial] != 0 || inventory[testhelpers.SimpleFinished] != 5 {
		t.Errorf("Expected M=0 F=5, got %v", inventory)
	}

	orders := sim.Orders()
	if orders[0].Status != entities.OrderReleased || orders[0].Quantity != 1 {
		t.Errorf("Expected order 1 released with 1 remaining, got %s/%d", orders[0].Status, orders[0].Quantity)
	}
	if len(result.NewOrders) != 1 || result.NewOrders[0].ID != 2 || result.NewOrders[0].Quantity != 5 {
		t.Fatalf("Expected one generated order #2 of 5 units, got %+v", result.NewOrders)
	}

	history := sim.InventoryHistory()
	if len(history) != 1 || history[0].Inventory[testhelpers.SimpleFinished] != 5 {
		t.Errorf("Expected one end-of-day snapshot with F=5, got %+v", history)
	}
	log := sim.ProductionLog()
	if len(log) != 1 || log[0].Total() != 5 {
		t.Errorf("Expected production log of 5 units, got %+v", log)
	}

	// Pending order 2 needs 10 M, released order 1 still reserves 2 M
	global := sim.GlobalShortage()
	if global[testhelpers.SimpleMaterial] != 12 {
		t.Errorf("Expected global shortage of 12, got %v", global)
	}
	perOrder, err := sim.OrderShortage(2)
	if err != nil {
		t.Fatalf("OrderShortage failed: %v", err)
	}
	if perOrder[testhelpers.SimpleMaterial] != 12 {
		t.Errorf("Expected order 2 shortage of 12, got %v", perOrder)
	}
	if _, err := sim.OrderShortage(99); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected ErrValidation for unknown order, got %v", err)
	}
}

func TestSimulator_PurchaseReceivedOnArrivalDay(t *testing.T) {
	sim, err := New(testhelpers.BuildSimpleCatalog(), testConfig(10, 1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	po, err := sim.PlacePurchaseOrder(testhelpers.SimpleSupplier, testhelpers.SimpleMaterial, 20)
	if err != nil {
		t.Fatalf("PlacePurchaseOrder failed: %v", err)
	}
	if !po.ExpectedArrival.Equal(testhelpers.StartDate.AddDays(3)) {
		t.Errorf("Expected arrival on day 4, got %s", po.ExpectedArrival)
	}

	for day := 2; day <= 4; day++ {
		result, err := sim.AdvanceDay(fixedDemand)
		if err != nil {
			t.Fatalf("day %d: AdvanceDay failed: %v", day, err)
		}
		received := len(result.Received)
		if day < 4 && received != 0 {
			t.Errorf("day %d: expected nothing received, got %d", day, received)
		}
		if day == 4 && received != 1 {
			t.Errorf("day 4: expected the purchase order received, got %d", received)
		}
	}

	if got := sim.Inventory()[testhelpers.SimpleMaterial]; got != 20 {
		t.Errorf("Expected 20 units on hand, got %d", got)
	}
	if status := sim.PurchaseOrders()[0].Status; status != entities.PurchaseReceived {
		t.Errorf("Expected received status, got %s", status)
	}
}

func TestSimulator_ReleaseOrder(t *testing.T) {
	sim, err := New(testhelpers.BuildSimpleCatalog(), testConfig(10, 1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	order, err := sim.CreateOrder(testhelpers.SimpleFinished, 5)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	eventsBefore := len(sim.Events())

	err = sim.ReleaseOrder(order.ID)
	if !errors.Is(err, entities.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState with no stock, got %v", err)
	}
	var blocked *ReleaseBlockedError
	if !errors.As(err, &blocked) || blocked.Shortages[testhelpers.SimpleMaterial] != 10 {
		t.Fatalf("Expected shortage of 10 M, got %v", err)
	}
	if sim.Orders()[0].Status != entities.OrderPending || len(sim.Events()) != eventsBefore {
		t.Error("Expected failed release to leave state untouched")
	}

	if err := sim.ReleaseOrder(42); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected ErrValidation for unknown order, got %v", err)
	}

	if _, err := sim.PlacePurchaseOrder(testhelpers.SimpleSupplier, testhelpers.SimpleMaterial, 10); err != nil {
		t.Fatalf("PlacePurchaseOrder failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := sim.AdvanceDay(fixedDemand); err != nil {
			t.Fatalf("AdvanceDay failed: %v", err)
		}
	}

	if err := sim.ReleaseOrder(order.ID); err != nil {
		t.Fatalf("Expected release once stock arrived, got %v", err)
	}
	last := sim.Events()[len(sim.Events())-1]
	if last.Type != entities.EventOrder || events.Action(last) != events.ActionReleased {
		t.Errorf("Expected a release event, got %+v", last)
	}
	if err := sim.ReleaseOrder(order.ID); !errors.Is(err, entities.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState releasing twice, got %v", err)
	}
}

func TestSimulator_CriticalPath(t *testing.T) {
	sim, err := New(testhelpers.BuildSimpleCatalog(), testConfig(10, 1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	order, err := sim.CreateOrder(testhelpers.SimpleFinished, 5)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	analysis, err := sim.CriticalPath(order.ID, 0)
	if err != nil {
		t.Fatalf("CriticalPath failed: %v", err)
	}
	if cp := analysis.CriticalPath; cp == nil || cp.Source != dto.SourcePurchase || cp.Shortage != 10 {
		t.Fatalf("Expected 10 M to buy, got %+v", cp)
	}

	if _, err := sim.PlacePurchaseOrder(testhelpers.SimpleSupplier, testhelpers.SimpleMaterial, 10); err != nil {
		t.Fatalf("PlacePurchaseOrder failed: %v", err)
	}
	all := sim.CriticalPaths(1)
	if len(all) != 1 || all[0].CriticalPath.Source != dto.SourceInTransit {
		t.Fatalf("Expected the purchase to cover the order, got %+v", all)
	}
	if !all[0].EarliestRelease.Equal(testhelpers.StartDate.AddDays(3)) {
		t.Errorf("Expected release on the arrival date, got %s", all[0].EarliestRelease)
	}
}

func TestSimulator_CreateOrderValidation(t *testing.T) {
	sim, err := New(testhelpers.BuildSimpleCatalog(), testConfig(10, 1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		name    string
		product entities.ProductID
		qty     entities.Quantity
	}{
		{"unknown product", 99, 1},
		{"raw material", testhelpers.SimpleMaterial, 1},
		{"zero quantity", testhelpers.SimpleFinished, 0},
		{"negative quantity", testhelpers.SimpleFinished, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sim.CreateOrder(tt.product, tt.qty); !errors.Is(err, entities.ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
		})
	}
	if len(sim.Orders()) != 0 || len(sim.Events()) != 0 {
		t.Error("Expected rejected orders to leave no trace")
	}
}

func TestSimulator_NoFinishedProducts(t *testing.T) {
	cat, err := catalog.New([]entities.Product{{ID: 1, Name: "Steel", Kind: entities.Raw}}, nil, nil)
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}
	sim, err := Bootstrap(cat, testConfig(10, 3))
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if len(sim.Orders()) != 0 {
		t.Fatalf("Expected no bootstrap orders, got %d", len(sim.Orders()))
	}

	for i := 0; i < 3; i++ {
		result, err := sim.AdvanceDay(fixedDemand)
		if err != nil {
			t.Fatalf("AdvanceDay failed: %v", err)
		}
		if len(result.NewOrders) != 0 {
			t.Errorf("Expected no generated orders, got %d", len(result.NewOrders))
		}
	}
	if sim.Day() != 4 {
		t.Errorf("Expected day 4, got %d", sim.Day())
	}
}

func TestSimulator_Bootstrap(t *testing.T) {
	cat := testhelpers.BuildPrinterCatalog()
	sim, err := Bootstrap(cat, testConfig(10, 11))
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	if sim.Day() != 1 || !sim.CurrentDate().Equal(testhelpers.StartDate) {
		t.Errorf("Expected day 1 on %s, got %d on %s", testhelpers.StartDate, sim.Day(), sim.CurrentDate())
	}
	inventory := sim.Inventory()
	for _, material := range cat.RawMaterials() {
		if qty := inventory[material.ID]; qty < 5 || qty > 20 {
			t.Errorf("material %d: expected opening stock in [5, 20], got %d", material.ID, qty)
		}
	}
	orders := sim.Orders()
	if len(orders) != 2 {
		t.Fatalf("Expected 2 bootstrap orders, got %d", len(orders))
	}
	for _, order := range orders {
		if order.Status != entities.OrderPending || order.Quantity < 1 || order.Quantity > 10 {
			t.Errorf("Unexpected bootstrap order %+v", order)
		}
	}
	stockEvents := sim.Events()
	if len(stockEvents) != len(cat.RawMaterials())+2 {
		t.Errorf("Expected one event per material and order, got %d", len(stockEvents))
	}
}

func TestSimulator_InvalidInput(t *testing.T) {
	cfg := testConfig(-1, 1)
	if _, err := New(testhelpers.BuildSimpleCatalog(), cfg); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected ErrValidation for negative capacity, got %v", err)
	}
	if _, err := New(nil, testConfig(1, 1)); !errors.Is(err, entities.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration without catalog, got %v", err)
	}

	sim, err := New(testhelpers.BuildSimpleCatalog(), testConfig(10, 1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, err = sim.AdvanceDay(demand.Params{Mean: -1, BaseLeadTime: 3})
	if !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected ErrValidation for negative mean, got %v", err)
	}
	if sim.Day() != 1 || len(sim.InventoryHistory()) != 0 {
		t.Errorf("Expected rejected advance to leave day 1, got day %d", sim.Day())
	}
}

// drive releases what it can, buys what the shortage report suggests and
// advances one day, checking the per-day invariants
func drive(t *testing.T, sim *Simulator, days int) {
	t.Helper()
	capacity := sim.Config().DailyCapacity

	for d := 0; d < days; d++ {
		for _, order := range sim.Orders() {
			if order.Status != entities.OrderPending {
				continue
			}
			if err := sim.ReleaseOrder(order.ID); err != nil && !errors.Is(err, entities.ErrInvalidState) {
				t.Fatalf("ReleaseOrder(%d) failed: %v", order.ID, err)
			}
		}

		report, err := sim.ShortageReport(nil)
		if err != nil {
			t.Fatalf("ShortageReport failed: %v", err)
		}
		for _, s := range report.Suggestions {
			if _, err := sim.PlacePurchaseOrder(s.SupplierID, s.MaterialID, s.Quantity); err != nil {
				t.Fatalf("Placing suggestion %+v failed: %v", s, err)
			}
		}

		result, err := sim.AdvanceDay(sim.Config().Demand)
		if err != nil {
			t.Fatalf("AdvanceDay failed: %v", err)
		}
		if result.CapacityUsed > capacity {
			t.Fatalf("day %d: produced %d units over capacity %d", result.Day, result.CapacityUsed, capacity)
		}
		for id, qty := range sim.Inventory() {
			if qty < 0 {
				t.Fatalf("day %d: product %d has negative inventory %d", result.Day, id, qty)
			}
		}
	}
}

func TestSimulator_Conservation(t *testing.T) {
	cat := testhelpers.BuildPrinterCatalog()
	cfg := testConfig(6, 7)
	cfg.Demand = demand.Params{Mean: 4, StdDev: 2, BaseLeadTime: 3, OrdersPerDay: 1}

	sim, err := Bootstrap(cat, cfg)
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	drive(t, sim, 40)

	opening := make(levels)
	for _, e := range sim.Events() {
		if e.Type == entities.EventStock && events.Action(e) == events.ActionBootstrap {
			opening[*e.ProductID] += *e.Quantity
		}
	}
	received := make(levels)
	for _, po := range sim.PurchaseOrders() {
		if po.Status == entities.PurchaseReceived {
			received[po.ProductID] += po.Quantity
		}
	}
	produced := make(levels)
	for _, entry := range sim.ProductionLog() {
		for id, qty := range entry.Produced {
			produced[id] += qty
		}
	}

	inventory := sim.Inventory()
	for _, material := range cat.RawMaterials() {
		var consumed entities.Quantity
		for _, product := range cat.FinishedProducts() {
			for _, edge := range cat.BOM(product.ID) {
				if edge.MaterialID == material.ID {
					consumed += edge.Requirement(produced[product.ID])
				}
			}
		}
		expected := opening[material.ID] + received[material.ID] - consumed
		if inventory[material.ID] != expected {
			t.Errorf("material %d: expected %d on hand, got %d", material.ID, expected, inventory[material.ID])
		}
	}

	built := make(levels)
	for _, order := range sim.Orders() {
		built[order.ProductID] += order.InitialQuantity - order.Quantity
		if order.Status == entities.OrderCompleted && order.Quantity != 0 {
			t.Errorf("order %d completed with %d remaining", order.ID, order.Quantity)
		}
	}
	for _, product := range cat.FinishedProducts() {
		if inventory[product.ID] != produced[product.ID] || built[product.ID] != produced[product.ID] {
			t.Errorf("product %d: produced %d, stocked %d, built against orders %d",
				product.ID, produced[product.ID], inventory[product.ID], built[product.ID])
		}
	}
	if produced[testhelpers.PrinterBasic]+produced[testhelpers.PrinterPro] == 0 {
		t.Error("Expected the driven run to produce something")
	}
}

func TestSimulator_SnapshotRoundTrip(t *testing.T) {
	cat := testhelpers.BuildPrinterCatalog()
	cfg := testConfig(6, 5)

	sim, err := Bootstrap(cat, cfg)
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	drive(t, sim, 15)

	first, err := json.Marshal(sim.Snapshot())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded dto.Snapshot
	if err := json.Unmarshal(first, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	restored, err := Restore(cat, cfg, decoded)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	second, err := json.Marshal(restored.Snapshot())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("Expected identical encodings after round trip\nfirst:  %s\nsecond: %s", first, second)
	}
	if restored.RunID() != sim.RunID() || restored.Day() != sim.Day() {
		t.Errorf("Expected run %s day %d, got %s day %d", sim.RunID(), sim.Day(), restored.RunID(), restored.Day())
	}

	// Restoring twice is the same as restoring once
	again, err := Restore(cat, cfg, restored.Snapshot())
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	third, _ := json.Marshal(again.Snapshot())
	if !bytes.Equal(first, third) {
		t.Error("Expected restore to be idempotent")
	}
}

func TestSimulator_DeterministicReplay(t *testing.T) {
	cat := testhelpers.BuildPrinterCatalog()
	cfg := testConfig(6, 99)
	cfg.Demand = demand.DefaultParams()
	runID := uuid.MustParse("8f1a4a3e-4a55-4c18-9a8e-1d1d5d0b7a10")

	encode := func() []byte {
		sim, err := Bootstrap(cat, cfg, WithRunID(runID))
		if err != nil {
			t.Fatalf("Bootstrap failed: %v", err)
		}
		drive(t, sim, 10)
		data, err := json.Marshal(sim.Snapshot())
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		return data
	}

	if a, b := encode(), encode(); !bytes.Equal(a, b) {
		t.Error("Expected the same seed to replay the same run")
	}
}

func TestRestore_RejectsInvalidSnapshots(t *testing.T) {
	cat := testhelpers.BuildSimpleCatalog()
	valid := func() dto.Snapshot {
		return simpleSnapshot(levels{testhelpers.SimpleMaterial: 4}, *testhelpers.MustOrder(1, testhelpers.SimpleFinished, 2))
	}

	tests := []struct {
		name   string
		mutate func(*dto.Snapshot)
	}{
		{"day zero", func(s *dto.Snapshot) { s.Day = 0 }},
		{"missing date", func(s *dto.Snapshot) { s.CurrentDate = entities.Date{} }},
		{"negative inventory", func(s *dto.Snapshot) { s.Inventory[testhelpers.SimpleMaterial] = -1 }},
		{"order for raw material", func(s *dto.Snapshot) { s.Orders[0].ProductID = testhelpers.SimpleMaterial }},
		{"order quantity above initial", func(s *dto.Snapshot) { s.Orders[0].Quantity = 3 }},
		{"duplicate order", func(s *dto.Snapshot) { s.Orders = append(s.Orders, s.Orders[0]) }},
		{"unknown supplier", func(s *dto.Snapshot) {
			po, _ := entities.NewPurchaseOrder(1, entities.Supplier{ID: 9, ProductID: testhelpers.SimpleMaterial}, 5, testhelpers.StartDate)
			s.PurchaseOrders = []entities.PurchaseOrder{*po}
		}},
		{"event id gap", func(s *dto.Snapshot) {
			s.Events = []entities.Event{{ID: 2, Type: entities.EventStock, SimDate: testhelpers.StartDate}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := valid()
			tt.mutate(&snap)
			if _, err := Restore(cat, testConfig(10, 1), snap); !errors.Is(err, entities.ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
		})
	}

	if _, err := Restore(cat, testConfig(10, 1), valid()); err != nil {
		t.Errorf("Expected the unmodified snapshot to restore, got %v", err)
	}
}

type fakeStore struct {
	snap    *dto.Snapshot
	loadErr error
	saved   []dto.Snapshot
}

func (f *fakeStore) Load(context.Context) (*dto.Snapshot, error) {
	return f.snap, f.loadErr
}

func (f *fakeStore) Save(_ context.Context, snap dto.Snapshot) error {
	f.saved = append(f.saved, snap)
	return nil
}

func TestLoadOrBootstrap(t *testing.T) {
	cat := testhelpers.BuildSimpleCatalog()
	saved := simpleSnapshot(levels{testhelpers.SimpleMaterial: 4})
	saved.Day = 7
	broken := saved
	broken.Day = 0

	tests := []struct {
		name        string
		store       *fakeStore
		wantWarning bool
		wantDay     int
	}{
		{"restores saved state", &fakeStore{snap: &saved}, false, 7},
		{"bootstraps empty store", &fakeStore{loadErr: dto.ErrNoSnapshot}, false, 1},
		{"bootstraps on corrupt state", &fakeStore{loadErr: fmt.Errorf("decode: %w", errors.New("unexpected EOF"))}, true, 1},
		{"bootstraps on invalid state", &fakeStore{snap: &broken}, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, warning, err := LoadOrBootstrap(context.Background(), tt.store, cat, testConfig(10, 1))
			if err != nil {
				t.Fatalf("LoadOrBootstrap failed: %v", err)
			}
			if (warning != nil) != tt.wantWarning {
				t.Errorf("Expected warning %v, got %v", tt.wantWarning, warning)
			}
			if sim.Day() != tt.wantDay {
				t.Errorf("Expected day %d, got %d", tt.wantDay, sim.Day())
			}

			if err := Save(context.Background(), tt.store, sim); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if len(tt.store.saved) != 1 || tt.store.saved[0].RunID != sim.RunID() {
				t.Errorf("Expected the run to be saved, got %+v", tt.store.saved)
			}
		})
	}
}

func TestSimulator_EventHandlers(t *testing.T) {
	var seen []entities.Event
	var productionOnly int
	handler := events.HandlerFunc(func(e entities.Event) error {
		seen = append(seen, e)
		return nil
	})
	counter := events.HandlerFunc(func(entities.Event) error {
		productionOnly++
		return nil
	})

	order := *testhelpers.MustReleasedOrder(1, testhelpers.SimpleFinished, 2)
	sim, err := Restore(testhelpers.BuildSimpleCatalog(), testConfig(10, 1),
		simpleSnapshot(levels{testhelpers.SimpleMaterial: 4}, order),
		WithEventHandler(handler), WithEventHandler(counter, entities.EventProduction))
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if _, err := sim.AdvanceDay(fixedDemand); err != nil {
		t.Fatalf("AdvanceDay failed: %v", err)
	}
	if len(seen) != len(sim.Events()) {
		t.Errorf("Expected handler to see all %d events, got %d", len(sim.Events()), len(seen))
	}
	if productionOnly != 1 {
		t.Errorf("Expected one production event, got %d", productionOnly)
	}
}

func TestSimulator_OrderQuantityLimit(t *testing.T) {
	cat := testhelpers.BuildSimpleCatalog()
	cfg := testConfig(10, 1)
	cfg.Demand.BaseLeadTime = entities.MaxLeadTimeDays
	sim, err := New(cat, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := sim.CreateOrder(testhelpers.SimpleFinished, 100_000_000); !errors.Is(err, entities.ErrValidation) {
		t.Fatalf("Expected ErrValidation for an oversized order, got %v", err)
	}
	if len(sim.Orders()) != 0 || len(sim.Events()) != 0 {
		t.Fatalf("Expected a rejected order to leave no trace, got %d orders and %d events", len(sim.Orders()), len(sim.Events()))
	}

	largest, err := sim.CreateOrder(testhelpers.SimpleFinished, entities.MaxOrderQuantity)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	data, err := json.Marshal(sim.Snapshot())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded dto.Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected the snapshot to decode, got %v", err)
	}
	restored, err := Restore(cat, cfg, decoded)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := restored.Orders()[0].DeliveryDate; !got.Equal(largest.DeliveryDate) {
		t.Errorf("Expected delivery %s after the round trip, got %s", largest.DeliveryDate, got)
	}
}

func TestSimulator_DemandLimits(t *testing.T) {
	sim, err := New(testhelpers.BuildSimpleCatalog(), testConfig(10, 1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		name   string
		params demand.Params
	}{
		{"huge mean", demand.Params{Mean: 1e19, BaseLeadTime: 3, OrdersPerDay: 1}},
		{"huge lead time", demand.Params{Mean: 5, BaseLeadTime: 1_000_000, OrdersPerDay: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sim.AdvanceDay(tt.params); !errors.Is(err, entities.ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
			if sim.Day() != 1 {
				t.Errorf("Expected the day to stay at 1, got %d", sim.Day())
			}
		})
	}

	result, err := sim.AdvanceDay(demand.Params{Mean: 5, BaseLeadTime: 3, OrdersPerDay: 0})
	if err != nil {
		t.Fatalf("AdvanceDay failed: %v", err)
	}
	if len(result.NewOrders) != 0 {
		t.Errorf("Expected no orders with zero orders per day, got %d", len(result.NewOrders))
	}
}

func TestSimulator_RollbackHidesEventsFromSubscribers(t *testing.T) {
	cat := testhelpers.BuildPrinterCatalog()
	frames, _ := cat.Supplier(testhelpers.FrameSupplier)
	boards, _ := cat.Supplier(4)

	// Both arrive on day 2; the board receipt overflows the stock level
	framePO, err := entities.NewPurchaseOrder(1, frames, 2, testhelpers.StartDate.AddDays(-3))
	if err != nil {
		t.Fatalf("NewPurchaseOrder failed: %v", err)
	}
	boardPO, err := entities.NewPurchaseOrder(2, boards, 5, testhelpers.StartDate.AddDays(-2))
	if err != nil {
		t.Fatalf("NewPurchaseOrder failed: %v", err)
	}
	snap := simpleSnapshot(levels{testhelpers.Board: math.MaxInt64 - 1})
	snap.PurchaseOrders = []entities.PurchaseOrder{*framePO, *boardPO}

	var seen []entities.Event
	handler := events.HandlerFunc(func(e entities.Event) error {
		seen = append(seen, e)
		return nil
	})
	sim, err := Restore(cat, testConfig(10, 1), snap, WithEventHandler(handler))
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if _, err := sim.AdvanceDay(fixedDemand); !errors.Is(err, entities.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState from the overflowing receipt, got %v", err)
	}
	if sim.Day() != 1 || len(sim.Events()) != 0 {
		t.Errorf("Expected a rollback to day 1 with no events, got day %d with %d", sim.Day(), len(sim.Events()))
	}
	if len(seen) != 0 {
		t.Errorf("Expected subscribers to see nothing from the failed day, got %+v", seen)
	}
	if sim.PurchaseOrders()[0].Status != entities.PurchaseOrdered {
		t.Errorf("Expected the frame receipt to be rolled back, got %s", sim.PurchaseOrders()[0].Status)
	}
}
