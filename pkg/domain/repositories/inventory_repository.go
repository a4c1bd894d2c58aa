package repositories

import "github.com/vsinha/mrpsim/pkg/domain/entities"

// InventoryRepository provides access to on-hand quantities per product
type InventoryRepository interface {
	OnHand(productID entities.ProductID) entities.Quantity
	Receive(productID entities.ProductID, quantity entities.Quantity) error
	// Consume fails without mutating when quantity exceeds on-hand stock
	Consume(productID entities.ProductID, quantity entities.Quantity) error
	Snapshot() map[entities.ProductID]entities.Quantity
	Load(levels map[entities.ProductID]entities.Quantity) error
}
