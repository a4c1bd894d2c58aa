package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the lifecycle state of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrdered  PurchaseOrderStatus = "ordered"
	PurchaseReceived PurchaseOrderStatus = "received"
)

// PurchaseOrder represents raw material bought from a supplier and in transit until received
type PurchaseOrder struct {
	ID              PurchaseOrderID     `json:"id"`
	SupplierID      SupplierID          `json:"supplier_id"`
	ProductID       ProductID           `json:"product_id"`
	Quantity        Quantity            `json:"quantity"`
	OrderDate       Date                `json:"order_date"`
	ExpectedArrival Date                `json:"expected_arrival"`
	Status          PurchaseOrderStatus `json:"status"`
	UnitCost        decimal.Decimal     `json:"unit_cost"`
}

// NewPurchaseOrder creates a validated PurchaseOrder placed with supplier on orderDate
func NewPurchaseOrder(id PurchaseOrderID, supplier Supplier, quantity Quantity, orderDate Date) (*PurchaseOrder, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: purchase order id must be positive, got %d", ErrValidation, id)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", ErrValidation, quantity)
	}
	if supplier.MinOrderQty > 0 && quantity < supplier.MinOrderQty {
		return nil, fmt.Errorf("%w: quantity %d below supplier %d minimum order quantity %d",
			ErrValidation, quantity, supplier.ID, supplier.MinOrderQty)
	}
	if supplier.MaxOrderQty > 0 && quantity > supplier.MaxOrderQty {
		return nil, fmt.Errorf("%w: quantity %d above supplier %d maximum order quantity %d",
			ErrValidation, quantity, supplier.ID, supplier.MaxOrderQty)
	}

	arrival := orderDate.AddDays(supplier.LeadTimeDays)
	if arrival.After(MaxDate) {
		return nil, fmt.Errorf("%w: expected arrival is after %s", ErrValidation, MaxDate)
	}

	return &PurchaseOrder{
		ID:              id,
		SupplierID:      supplier.ID,
		ProductID:       supplier.ProductID,
		Quantity:        quantity,
		OrderDate:       orderDate,
		ExpectedArrival: arrival,
		Status:          PurchaseOrdered,
		UnitCost:        supplier.UnitCost,
	}, nil
}

// IsDue reports whether an ordered purchase has arrived by the given date
func (po *PurchaseOrder) IsDue(today Date) bool {
	return po.Status == PurchaseOrdered && !po.ExpectedArrival.After(today)
}

// Receive marks the purchase order as received. Receipt happens exactly once.
func (po *PurchaseOrder) Receive() error {
	if po.Status != PurchaseOrdered {
		return fmt.Errorf("%w: purchase order %d already %s", ErrInvalidState, po.ID, po.Status)
	}
	po.Status = PurchaseReceived
	return nil
}

// TotalCost returns unit cost times quantity
func (po *PurchaseOrder) TotalCost() decimal.Decimal {
	return po.UnitCost.Mul(decimal.NewFromInt(int64(po.Quantity)))
}

// Validate checks the invariants of a restored purchase order
func (po *PurchaseOrder) Validate() error {
	if po.ID <= 0 {
		return fmt.Errorf("%w: purchase order id must be positive, got %d", ErrValidation, po.ID)
	}
	if po.Quantity <= 0 {
		return fmt.Errorf("%w: purchase order %d quantity must be positive, got %d", ErrValidation, po.ID, po.Quantity)
	}
	if po.Status != PurchaseOrdered && po.Status != PurchaseReceived {
		return fmt.Errorf("%w: purchase order %d has unknown status %q", ErrValidation, po.ID, po.Status)
	}
	if po.ExpectedArrival.Before(po.OrderDate) {
		return fmt.Errorf("%w: purchase order %d arrives before it was ordered", ErrValidation, po.ID)
	}
	return nil
}
