// Package production runs the daily capacity-constrained production step.
//
// Released orders are served strictly in order-book sequence: the first
// released order takes as much capacity and material as it can use before
// the next one is considered. There is no fair-share balancing.
package production

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/mrpsim/pkg/application/dto"
	"github.com/vsinha/mrpsim/pkg/application/services/shared"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/domain/repositories"
	"github.com/vsinha/mrpsim/pkg/infrastructure/events"
)

// Result is the outcome of one production run
type Result struct {
	Lines        []dto.ProductionLine
	Produced     map[entities.ProductID]entities.Quantity
	CapacityUsed entities.Quantity
}

// Allocator allocates daily capacity and material to released orders
type Allocator struct {
	boms      shared.BOMSource
	orders    repositories.OrderRepository
	inventory repositories.InventoryRepository
	eventLog  events.EventStore
	logger    *zap.Logger
}

// NewAllocator creates a production allocator
func NewAllocator(
	boms shared.BOMSource,
	orders repositories.OrderRepository,
	inventory repositories.InventoryRepository,
	eventLog events.EventStore,
	logger *zap.Logger,
) *Allocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Allocator{
		boms:      boms,
		orders:    orders,
		inventory: inventory,
		eventLog:  eventLog,
		logger:    logger,
	}
}

// MaxProducible returns how many units inventory and capacity allow for one
// unit-BOM. Zero-quantity edges do not constrain; an empty BOM is bounded by
// capacity alone.
func MaxProducible(bom []entities.BOMEdge, inventory repositories.InventoryRepository, capacity entities.Quantity) entities.Quantity {
	limit := capacity
	for _, edge := range bom {
		if edge.QuantityPerUnit <= 0 {
			continue
		}
		if byMaterial := inventory.OnHand(edge.MaterialID) / edge.QuantityPerUnit; byMaterial < limit {
			limit = byMaterial
		}
	}
	if limit < 0 {
		return 0
	}
	return limit
}

// Run produces released orders on date within capacity units. Orders with
// nothing producible are skipped and keep their place for the next day.
func (a *Allocator) Run(date entities.Date, capacity entities.Quantity) (*Result, error) {
	result := &Result{
		Lines:    make([]dto.ProductionLine, 0),
		Produced: make(map[entities.ProductID]entities.Quantity),
	}
	remaining := capacity

	for _, order := range a.orders.ByStatus(entities.OrderReleased) {
		if remaining <= 0 {
			break
		}

		bom := a.boms.BOM(order.ProductID)
		units := min(order.Quantity, MaxProducible(bom, a.inventory, remaining))
		if units <= 0 {
			a.logger.Debug("order blocked",
				zap.Int("order_id", int(order.ID)),
				zap.Int64("remaining_capacity", int64(remaining)))
			continue
		}

		if err := a.produce(order, bom, units); err != nil {
			return nil, err
		}
		remaining -= units

		result.Lines = append(result.Lines, dto.ProductionLine{
			OrderID:   order.ID,
			ProductID: order.ProductID,
			Units:     units,
			Completed: order.Status == entities.OrderCompleted,
		})
		result.Produced[order.ProductID] += units
		result.CapacityUsed += units

		if _, err := a.eventLog.Append(events.ProductionRecorded(date, order, units, remaining)); err != nil {
			return nil, err
		}
		a.logger.Debug("order produced",
			zap.Int("order_id", int(order.ID)),
			zap.Int64("units", int64(units)),
			zap.Int64("order_remaining", int64(order.Quantity)))
	}

	return result, nil
}

// produce consumes materials, stocks the finished product and updates the order
func (a *Allocator) produce(order *entities.Order, bom []entities.BOMEdge, units entities.Quantity) error {
	for material, qty := range entities.Requirements(bom, units) {
		if err := a.inventory.Consume(material, qty); err != nil {
			return fmt.Errorf("producing order %d: %w", order.ID, err)
		}
	}
	if err := a.inventory.Receive(order.ProductID, units); err != nil {
		return fmt.Errorf("producing order %d: %w", order.ID, err)
	}
	return order.Produce(units)
}
