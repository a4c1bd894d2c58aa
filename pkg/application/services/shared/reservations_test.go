package shared

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

type bomMap map[entities.ProductID][]entities.BOMEdge

func (m bomMap) BOM(id entities.ProductID) []entities.BOMEdge { return m[id] }

func TestReservationsFor(t *testing.T) {
	boms := bomMap{
		100: {{FinishedProductID: 100, MaterialID: 1, QuantityPerUnit: 2}},
		200: {
			{FinishedProductID: 200, MaterialID: 1, QuantityPerUnit: 1},
			{FinishedProductID: 200, MaterialID: 2, QuantityPerUnit: 3},
		},
	}
	orders := []*entities.Order{
		{ID: 1, ProductID: 100, Quantity: 4, InitialQuantity: 4, Status: entities.OrderReleased},
		{ID: 2, ProductID: 200, Quantity: 1, InitialQuantity: 5, Status: entities.OrderReleased},
		{ID: 3, ProductID: 200, Quantity: 9, InitialQuantity: 9, Status: entities.OrderPending},
		{ID: 4, ProductID: 100, Quantity: 0, InitialQuantity: 3, Status: entities.OrderCompleted},
	}

	tests := []struct {
		name     string
		exclude  entities.OrderID
		expected map[entities.ProductID]entities.Quantity
	}{
		{"all released", 0, map[entities.ProductID]entities.Quantity{1: 9, 2: 3}},
		{"excluding order 2", 2, map[entities.ProductID]entities.Quantity{1: 8}},
		{"excluding pending order changes nothing", 3, map[entities.ProductID]entities.Quantity{1: 9, 2: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm := ReservationsFor(orders, boms, tt.exclude)
			if rm.Size() != len(tt.expected) {
				t.Fatalf("Expected %d materials, got %s", len(tt.expected), rm)
			}
			for material, qty := range tt.expected {
				if rm.Get(material) != qty {
					t.Errorf("material %d: expected %d reserved, got %d", material, qty, rm.Get(material))
				}
			}
		})
	}
}

func TestReservationMap_Available(t *testing.T) {
	rm := NewReservationMap()
	rm.Reserve(1, 6)
	rm.Reserve(1, 2)
	rm.Reserve(3, 1)

	if got := rm.Available(1, 10); got != 2 {
		t.Errorf("Expected 2 available, got %d", got)
	}
	if got := rm.Available(1, 5); got != -3 {
		t.Errorf("Expected -3 available when over-reserved, got %d", got)
	}
	if got := rm.Available(7, 4); got != 4 {
		t.Errorf("Expected unreserved material to be fully available, got %d", got)
	}
	if rm.Total() != 9 {
		t.Errorf("Expected total 9, got %d", rm.Total())
	}
	if got := rm.String(); got != "ReservationMap{2 entries: 1=8 3=1}" {
		t.Errorf("Unexpected string %q", got)
	}
	if got := NewReservationMap().String(); got != "ReservationMap{empty}" {
		t.Errorf("Unexpected empty string %q", got)
	}
}

func TestSelectBestSupplier(t *testing.T) {
	cheapSlow := entities.Supplier{ID: 1, Name: "Cheap", ProductID: 5, UnitCost: decimal.NewFromInt(1), LeadTimeDays: 5}
	priceyFast := entities.Supplier{ID: 2, Name: "Fast", ProductID: 5, UnitCost: decimal.NewFromInt(4), LeadTimeDays: 1}
	cheapFast := entities.Supplier{ID: 3, Name: "Cheap Fast", ProductID: 5, UnitCost: decimal.NewFromInt(2), LeadTimeDays: 1}
	fastTwin := entities.Supplier{ID: 4, Name: "Twin", ProductID: 5, UnitCost: decimal.NewFromInt(2), LeadTimeDays: 1}
	smallFast := entities.Supplier{ID: 5, Name: "Small", ProductID: 5, UnitCost: decimal.NewFromInt(1), LeadTimeDays: 0, MaxOrderQty: 5}

	tests := []struct {
		name      string
		suppliers []entities.Supplier
		quantity  entities.Quantity
		expected  entities.SupplierID
	}{
		{"lead time first", []entities.Supplier{cheapSlow, priceyFast}, 10, 2},
		{"then cost", []entities.Supplier{priceyFast, cheapFast}, 10, 3},
		{"then id", []entities.Supplier{fastTwin, cheapFast}, 10, 3},
		{"capacity limit skipped", []entities.Supplier{smallFast, cheapSlow}, 10, 1},
		{"capacity limit used when it fits", []entities.Supplier{smallFast, cheapSlow}, 5, 5},
		{"only oversized option", []entities.Supplier{smallFast}, 10, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectBestSupplier(tt.suppliers, tt.quantity)
			if !ok {
				t.Fatal("Expected a supplier")
			}
			if got.ID != tt.expected {
				t.Errorf("Expected supplier %d, got %d", tt.expected, got.ID)
			}
		})
	}

	if _, ok := SelectBestSupplier(nil, 1); ok {
		t.Error("Expected no supplier from an empty list")
	}
}
