// Package shortage computes net material shortages for pending work after
// netting out stock already reserved by released orders. Calculations are
// read-only over the ledgers.
package shortage

import (
	"github.com/vsinha/mrpsim/pkg/application/services/shared"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/domain/repositories"
)

// Calculator derives shortage mappings from the order book and inventory
type Calculator struct {
	boms      shared.BOMSource
	orders    repositories.OrderRepository
	inventory repositories.InventoryRepository
}

// NewCalculator creates a shortage calculator
func NewCalculator(
	boms shared.BOMSource,
	orders repositories.OrderRepository,
	inventory repositories.InventoryRepository,
) *Calculator {
	return &Calculator{boms: boms, orders: orders, inventory: inventory}
}

// Global returns the shortage of every material required by pending orders
// or reserved by released ones. Only positive shortages are included.
func (c *Calculator) Global() map[entities.ProductID]entities.Quantity {
	all := c.orders.All()
	reserved := shared.ReservationsFor(all, c.boms, 0)

	required := make(map[entities.ProductID]entities.Quantity)
	for _, order := range all {
		if order.Status != entities.OrderPending {
			continue
		}
		for material, qty := range entities.Requirements(c.boms.BOM(order.ProductID), order.Quantity) {
			required[material] += qty
		}
	}
	for _, material := range reserved.Materials() {
		if _, ok := required[material]; !ok {
			required[material] = 0
		}
	}

	return c.net(required, reserved)
}

// ForOrder returns the shortage of a single order against the stock left
// after every other released order takes its reservation
func (c *Calculator) ForOrder(id entities.OrderID) (map[entities.ProductID]entities.Quantity, error) {
	order, err := c.orders.Get(id)
	if err != nil {
		return nil, err
	}
	return c.ForOrderValue(order), nil
}

// ForOrderValue is ForOrder for an order already in hand. Completed orders
// have no shortage.
func (c *Calculator) ForOrderValue(order *entities.Order) map[entities.ProductID]entities.Quantity {
	if order.Status == entities.OrderCompleted {
		return make(map[entities.ProductID]entities.Quantity)
	}
	reserved := shared.ReservationsFor(c.orders.All(), c.boms, order.ID)
	required := entities.Requirements(c.boms.BOM(order.ProductID), order.Quantity)
	return c.net(required, reserved)
}

func (c *Calculator) net(required map[entities.ProductID]entities.Quantity, reserved shared.ReservationMap) map[entities.ProductID]entities.Quantity {
	shortages := make(map[entities.ProductID]entities.Quantity)
	for material, need := range required {
		available := reserved.Available(material, c.inventory.OnHand(material))
		if short := need - available; short > 0 {
			shortages[material] = short
		}
	}
	return shortages
}
