package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// DayResult contains everything that happened during one day advance
type DayResult struct {
	Day            int                                      `json:"day"`
	Date           entities.Date                            `json:"date"`
	Received       []entities.PurchaseOrder                 `json:"received"`
	Production     []ProductionLine                         `json:"production"`
	Produced       map[entities.ProductID]entities.Quantity `json:"produced"`
	CapacityUsed   entities.Quantity                        `json:"capacity_used"`
	NewOrders      []entities.Order                         `json:"new_orders"`
	EventsRecorded int                                      `json:"events_recorded"`
}

// ProductionLine is the production of one order within a day
type ProductionLine struct {
	OrderID   entities.OrderID   `json:"order_id"`
	ProductID entities.ProductID `json:"product_id"`
	Units     entities.Quantity  `json:"units"`
	Completed bool               `json:"completed"`
}

// ShortageLine is one material short for an order or for all pending orders
type ShortageLine struct {
	MaterialID   entities.ProductID `json:"material_id"`
	MaterialName string             `json:"material_name"`
	Shortage     entities.Quantity  `json:"shortage"`
	InTransit    entities.Quantity  `json:"in_transit"`
}

// PurchaseSuggestion proposes a purchase covering a material shortage
type PurchaseSuggestion struct {
	MaterialID      entities.ProductID  `json:"material_id"`
	MaterialName    string              `json:"material_name"`
	SupplierID      entities.SupplierID `json:"supplier_id"`
	SupplierName    string              `json:"supplier_name"`
	Quantity        entities.Quantity   `json:"quantity"`
	UnitCost        decimal.Decimal     `json:"unit_cost"`
	TotalCost       decimal.Decimal     `json:"total_cost"`
	LeadTimeDays    int                 `json:"lead_time"`
	ExpectedArrival entities.Date       `json:"expected_arrival"`
}

// ShortageReport pairs a shortage mapping with suggested purchases
type ShortageReport struct {
	OrderID     *entities.OrderID    `json:"order_id,omitempty"`
	Lines       []ShortageLine       `json:"lines"`
	Suggestions []PurchaseSuggestion `json:"suggestions"`
}

// StatusSummary is a point-in-time overview of the simulation
type StatusSummary struct {
	RunID              string                       `json:"run_id"`
	Day                int                          `json:"day"`
	Date               entities.Date                `json:"date"`
	OrdersByStatus     map[entities.OrderStatus]int `json:"orders_by_status"`
	OpenPurchaseOrders int                          `json:"open_purchase_orders"`
	InventoryUnits     entities.Quantity            `json:"inventory_units"`
	UnitsProduced      entities.Quantity            `json:"units_produced"`
	LateOrders         int                          `json:"late_orders"`
	Events             int                          `json:"events"`
	ShortMaterials     int                          `json:"short_materials"`
	CommittedSpend     decimal.Decimal              `json:"committed_spend"`
	SupplierSpend      []SupplierSpend              `json:"supplier_spend"`
}

// SupplierSpend totals the purchases placed with one supplier
type SupplierSpend struct {
	SupplierID     entities.SupplierID `json:"supplier_id"`
	SupplierName   string              `json:"supplier_name"`
	PurchaseOrders int                 `json:"purchase_orders"`
	Units          entities.Quantity   `json:"units"`
	Total          decimal.Decimal     `json:"total"`
}
