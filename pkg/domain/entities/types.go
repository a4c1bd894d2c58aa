package entities

// ProductID identifies a raw material or finished product in the catalog
type ProductID int

// SupplierID identifies a supplier in the catalog
type SupplierID int

// OrderID identifies a customer order in the order book
type OrderID int

// PurchaseOrderID identifies a purchase order in the procurement ledger
type PurchaseOrderID int

// EventID is the sequence number of an event in the event log
type EventID int

// Quantity represents an integer quantity value for discrete manufacturing units
type Quantity int64

// CopyLevels returns an independent copy of an inventory mapping.
// A nil mapping yields an empty, non-nil one.
func CopyLevels(levels map[ProductID]Quantity) map[ProductID]Quantity {
	out := make(map[ProductID]Quantity, len(levels))
	for id, qty := range levels {
		out[id] = qty
	}
	return out
}
