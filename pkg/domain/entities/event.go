package entities

// EventType categorises entries in the event log
type EventType string

const (
	EventPurchase   EventType = "purchase"
	EventStock      EventType = "stock"
	EventOrder      EventType = "order"
	EventProduction EventType = "production"
)

// Valid reports whether the type is one of the known event types
func (t EventType) Valid() bool {
	switch t {
	case EventPurchase, EventStock, EventOrder, EventProduction:
		return true
	default:
		return false
	}
}

// Event is one append-only audit record of the simulation.
// Correlation fields are nil when they do not apply.
type Event struct {
	ID          EventID           `json:"id"`
	SimDate     Date              `json:"sim_date"`
	Type        EventType         `json:"type"`
	Description string            `json:"description"`
	ProductID   *ProductID        `json:"product_id,omitempty"`
	OrderID     *OrderID          `json:"order_id,omitempty"`
	SupplierID  *SupplierID       `json:"supplier_id,omitempty"`
	Quantity    *Quantity         `json:"quantity,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// InventorySnapshot is the full inventory mapping at the end of a day
type InventorySnapshot struct {
	Date      Date                   `json:"date"`
	Inventory map[ProductID]Quantity `json:"inventory"`
}

// ProductionLogEntry records units produced per product on one day
type ProductionLogEntry struct {
	Date     Date                   `json:"date"`
	Produced map[ProductID]Quantity `json:"produced"`
}

// Total returns the units produced across all products
func (e ProductionLogEntry) Total() Quantity {
	var total Quantity
	for _, qty := range e.Produced {
		total += qty
	}
	return total
}
