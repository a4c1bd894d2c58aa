// Package reporting derives read-only summaries from simulation state.
package reporting

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/mrpsim/pkg/application/dto"
	"github.com/vsinha/mrpsim/pkg/domain/catalog"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// State is the view of a simulation the reports read from
type State interface {
	RunID() uuid.UUID
	Day() int
	CurrentDate() entities.Date
	Catalog() *catalog.Catalog
	Inventory() map[entities.ProductID]entities.Quantity
	Orders() []entities.Order
	PurchaseOrders() []entities.PurchaseOrder
	Events() []entities.Event
	ProductionLog() []entities.ProductionLogEntry
	GlobalShortage() map[entities.ProductID]entities.Quantity
}

// Summarize builds the status overview of a run
func Summarize(state State) dto.StatusSummary {
	orders := state.Orders()
	purchases := state.PurchaseOrders()

	byStatus := map[entities.OrderStatus]int{
		entities.OrderPending:   0,
		entities.OrderReleased:  0,
		entities.OrderCompleted: 0,
	}
	for _, order := range orders {
		byStatus[order.Status]++
	}

	open := 0
	committed := decimal.Zero
	for i := range purchases {
		if purchases[i].Status == entities.PurchaseOrdered {
			open++
		}
		committed = committed.Add(purchases[i].TotalCost())
	}

	var onHand entities.Quantity
	for _, qty := range state.Inventory() {
		onHand += qty
	}
	var produced entities.Quantity
	for _, entry := range state.ProductionLog() {
		produced += entry.Total()
	}

	return dto.StatusSummary{
		RunID:              state.RunID().String(),
		Day:                state.Day(),
		Date:               state.CurrentDate(),
		OrdersByStatus:     byStatus,
		OpenPurchaseOrders: open,
		InventoryUnits:     onHand,
		UnitsProduced:      produced,
		LateOrders:         len(LateOrders(orders, state.CurrentDate())),
		Events:             len(state.Events()),
		ShortMaterials:     len(state.GlobalShortage()),
		CommittedSpend:     committed,
		SupplierSpend:      SupplierSpend(state.Catalog(), purchases),
	}
}

// LateOrders returns open orders whose delivery date is before today
func LateOrders(orders []entities.Order, today entities.Date) []entities.Order {
	late := make([]entities.Order, 0)
	for _, order := range orders {
		if order.IsOpen() && order.DeliveryDate.Before(today) {
			late = append(late, order)
		}
	}
	return late
}

// SupplierSpend totals purchase orders per supplier, ordered by supplier id
func SupplierSpend(cat *catalog.Catalog, purchases []entities.PurchaseOrder) []dto.SupplierSpend {
	bySupplier := make(map[entities.SupplierID]*dto.SupplierSpend)
	for i := range purchases {
		po := &purchases[i]
		spend, ok := bySupplier[po.SupplierID]
		if !ok {
			spend = &dto.SupplierSpend{SupplierID: po.SupplierID, Total: decimal.Zero}
			if supplier, found := cat.Supplier(po.SupplierID); found {
				spend.SupplierName = supplier.Name
			}
			bySupplier[po.SupplierID] = spend
		}
		spend.PurchaseOrders++
		spend.Units += po.Quantity
		spend.Total = spend.Total.Add(po.TotalCost())
	}

	out := make([]dto.SupplierSpend, 0, len(bySupplier))
	for _, spend := range bySupplier {
		out = append(out, *spend)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SupplierID < out[j].SupplierID })
	return out
}
