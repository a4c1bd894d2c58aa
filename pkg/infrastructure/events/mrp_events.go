package events

import (
	"fmt"
	"strconv"

	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// Extra keys and action values attached to simulation events
const (
	ExtraAction = "action"

	ActionPlaced       = "placed"
	ActionReceived     = "received"
	ActionReleased     = "released"
	ActionGenerated    = "generated"
	ActionManual       = "manual"
	ActionBootstrap    = "bootstrap"
	ActionDayProcessed = "day_processed"
	ActionPartial      = "partial"
	ActionCompleted    = "completed"
)

// Action returns the action recorded on an event, empty if none
func Action(e entities.Event) string {
	return e.Extra[ExtraAction]
}

func PurchasePlaced(date entities.Date, po *entities.PurchaseOrder, supplierName string) entities.Event {
	return entities.Event{
		SimDate:     date,
		Type:        entities.EventPurchase,
		Description: fmt.Sprintf("Purchase order %d placed with %s for %d units of product %d", po.ID, supplierName, po.Quantity, po.ProductID),
		ProductID:   ptr(po.ProductID),
		SupplierID:  ptr(po.SupplierID),
		Quantity:    ptr(po.Quantity),
		Extra: map[string]string{
			ExtraAction:        ActionPlaced,
			"purchase_order":   strconv.Itoa(int(po.ID)),
			"expected_arrival": po.ExpectedArrival.String(),
			"total_cost":       po.TotalCost().StringFixed(2),
		},
	}
}

func PurchaseReceived(date entities.Date, po *entities.PurchaseOrder) entities.Event {
	return entities.Event{
		SimDate:     date,
		Type:        entities.EventPurchase,
		Description: fmt.Sprintf("Received %d units of product %d from purchase order %d", po.Quantity, po.ProductID, po.ID),
		ProductID:   ptr(po.ProductID),
		SupplierID:  ptr(po.SupplierID),
		Quantity:    ptr(po.Quantity),
		Extra: map[string]string{
			ExtraAction:      ActionReceived,
			"purchase_order": strconv.Itoa(int(po.ID)),
		},
	}
}

// OrderCreated records a new order. action is generated, manual or bootstrap;
// extra carries additional detail such as the delivery estimate breakdown.
func OrderCreated(date entities.Date, order *entities.Order, action string, extra map[string]string) entities.Event {
	fields := map[string]string{
		ExtraAction:     action,
		"delivery_date": order.DeliveryDate.String(),
	}
	for k, v := range extra {
		fields[k] = v
	}
	return entities.Event{
		SimDate:     date,
		Type:        entities.EventOrder,
		Description: fmt.Sprintf("Order %d created for %d units of product %d", order.ID, order.Quantity, order.ProductID),
		ProductID:   ptr(order.ProductID),
		OrderID:     ptr(order.ID),
		Quantity:    ptr(order.Quantity),
		Extra:       fields,
	}
}

func OrderReleased(date entities.Date, order *entities.Order) entities.Event {
	return entities.Event{
		SimDate:     date,
		Type:        entities.EventOrder,
		Description: fmt.Sprintf("Order %d released to production", order.ID),
		ProductID:   ptr(order.ProductID),
		OrderID:     ptr(order.ID),
		Quantity:    ptr(order.Quantity),
		Extra:       map[string]string{ExtraAction: ActionReleased},
	}
}

// ProductionRecorded records units built for an order after the order was updated
func ProductionRecorded(date entities.Date, order *entities.Order, units, capacityRemaining entities.Quantity) entities.Event {
	action := ActionPartial
	description := fmt.Sprintf("Produced %d units of product %d for order %d, %d remaining", units, order.ProductID, order.ID, order.Quantity)
	if order.Status == entities.OrderCompleted {
		action = ActionCompleted
		description = fmt.Sprintf("Produced %d units of product %d, order %d completed", units, order.ProductID, order.ID)
	}
	return entities.Event{
		SimDate:     date,
		Type:        entities.EventProduction,
		Description: description,
		ProductID:   ptr(order.ProductID),
		OrderID:     ptr(order.ID),
		Quantity:    ptr(units),
		Extra: map[string]string{
			ExtraAction:          action,
			"remaining":          strconv.FormatInt(int64(order.Quantity), 10),
			"capacity_remaining": strconv.FormatInt(int64(capacityRemaining), 10),
		},
	}
}

func DayProcessed(date entities.Date, day int, produced entities.Quantity) entities.Event {
	return entities.Event{
		SimDate:     date,
		Type:        entities.EventStock,
		Description: fmt.Sprintf("Day %d processed, %d units produced", day, produced),
		Quantity:    ptr(produced),
		Extra: map[string]string{
			ExtraAction: ActionDayProcessed,
			"day":       strconv.Itoa(day),
		},
	}
}

// StockInitialised records the opening inventory of a fresh simulation
func StockInitialised(date entities.Date, productID entities.ProductID, quantity entities.Quantity) entities.Event {
	return entities.Event{
		SimDate:     date,
		Type:        entities.EventStock,
		Description: fmt.Sprintf("Opening stock of %d units for product %d", quantity, productID),
		ProductID:   ptr(productID),
		Quantity:    ptr(quantity),
		Extra:       map[string]string{ExtraAction: ActionBootstrap},
	}
}

func ptr[T any](v T) *T {
	return &v
}
