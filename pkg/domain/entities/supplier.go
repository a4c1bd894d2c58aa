package entities

import "github.com/shopspring/decimal"

// Supplier offers one raw material at a fixed unit cost and lead time
type Supplier struct {
	ID           SupplierID      `json:"id"                           validate:"gt=0"`
	Name         string          `json:"name"                         validate:"required"`
	ProductID    ProductID       `json:"product_id"                   validate:"gt=0"`
	UnitCost     decimal.Decimal `json:"unit_cost"                    validate:"-"`
	LeadTimeDays int             `json:"lead_time"                    validate:"gte=0,lte=3650"`
	MinOrderQty  Quantity        `json:"min_order_quantity,omitempty" validate:"gte=0"`
	MaxOrderQty  Quantity        `json:"max_order_quantity,omitempty" validate:"gte=0"`
}

// Cost returns the total price of ordering quantity units
func (s Supplier) Cost(quantity Quantity) decimal.Decimal {
	return s.UnitCost.Mul(decimal.NewFromInt(int64(quantity)))
}

// RoundOrderQty raises a requested quantity to the supplier's minimum order quantity
func (s Supplier) RoundOrderQty(quantity Quantity) Quantity {
	if s.MinOrderQty > 0 && quantity < s.MinOrderQty {
		return s.MinOrderQty
	}
	return quantity
}
