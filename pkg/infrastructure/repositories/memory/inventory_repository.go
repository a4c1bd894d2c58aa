package memory

import (
	"fmt"
	"math"

	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/domain/repositories"
)

// InventoryRepository provides in-memory on-hand inventory storage
type InventoryRepository struct {
	levels map[entities.ProductID]entities.Quantity
}

// NewInventoryRepository creates a new in-memory inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		levels: make(map[entities.ProductID]entities.Quantity),
	}
}

// Verify interface compliance
var _ repositories.InventoryRepository = (*InventoryRepository)(nil)

// Load replaces all levels with the given mapping
func (r *InventoryRepository) Load(levels map[entities.ProductID]entities.Quantity) error {
	for id, qty := range levels {
		if qty < 0 {
			return fmt.Errorf("%w: product %d has negative inventory %d", entities.ErrValidation, id, qty)
		}
	}
	r.levels = entities.CopyLevels(levels)
	return nil
}

// OnHand returns the quantity held for a product, zero if never stocked
func (r *InventoryRepository) OnHand(productID entities.ProductID) entities.Quantity {
	return r.levels[productID]
}

// Receive adds stock for a product
func (r *InventoryRepository) Receive(productID entities.ProductID, quantity entities.Quantity) error {
	if quantity < 0 {
		return fmt.Errorf("%w: cannot receive negative quantity %d of product %d", entities.ErrValidation, quantity, productID)
	}
	if onHand := r.levels[productID]; onHand > math.MaxInt64-quantity {
		return fmt.Errorf("%w: receiving %d of product %d overflows on-hand %d", entities.ErrInvalidState, quantity, productID, onHand)
	}
	r.levels[productID] += quantity
	return nil
}

// Consume removes stock for a product
func (r *InventoryRepository) Consume(productID entities.ProductID, quantity entities.Quantity) error {
	if quantity < 0 {
		return fmt.Errorf("%w: cannot consume negative quantity %d of product %d", entities.ErrValidation, quantity, productID)
	}
	onHand := r.levels[productID]
	if quantity > onHand {
		return fmt.Errorf("%w: consuming %d of product %d exceeds on-hand %d", entities.ErrInvalidState, quantity, productID, onHand)
	}
	r.levels[productID] = onHand - quantity
	return nil
}

// Snapshot returns an independent copy of all levels
func (r *InventoryRepository) Snapshot() map[entities.ProductID]entities.Quantity {
	return entities.CopyLevels(r.levels)
}
