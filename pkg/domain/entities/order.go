package entities

import "fmt"

// OrderStatus represents the lifecycle state of a customer order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderReleased  OrderStatus = "released"
	OrderCompleted OrderStatus = "completed"
)

// Valid reports whether the status is one of the known states
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderReleased, OrderCompleted:
		return true
	default:
		return false
	}
}

// Order represents customer demand for a finished product.
// Quantity is what remains to be produced; InitialQuantity never changes.
type Order struct {
	ID              OrderID     `json:"id"`
	CreationDate    Date        `json:"creation_date"`
	ProductID       ProductID   `json:"product_id"`
	Quantity        Quantity    `json:"quantity"`
	InitialQuantity Quantity    `json:"initial_quantity"`
	Status          OrderStatus `json:"status"`
	DeliveryDate    Date        `json:"delivery_date"`
}

// Upper bounds on demand. Together they keep delivery dates of any run
// started before year 9000 well inside MaxDate.
const (
	MaxOrderQuantity Quantity = 1_000_000
	MaxLeadTimeDays           = 3650
)

// NewOrder creates a validated pending Order
func NewOrder(id OrderID, productID ProductID, quantity Quantity, creationDate, deliveryDate Date) (*Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: order id must be positive, got %d", ErrValidation, id)
	}
	if productID <= 0 {
		return nil, fmt.Errorf("%w: product id must be positive, got %d", ErrValidation, productID)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", ErrValidation, quantity)
	}
	if quantity > MaxOrderQuantity {
		return nil, fmt.Errorf("%w: quantity %d exceeds the maximum of %d", ErrValidation, quantity, MaxOrderQuantity)
	}
	if deliveryDate.After(MaxDate) {
		return nil, fmt.Errorf("%w: delivery date is after %s", ErrValidation, MaxDate)
	}
	if deliveryDate.Before(creationDate) {
		return nil, fmt.Errorf("%w: delivery date %s cannot be before creation date %s",
			ErrValidation, deliveryDate, creationDate)
	}

	return &Order{
		ID:              id,
		CreationDate:    creationDate,
		ProductID:       productID,
		Quantity:        quantity,
		InitialQuantity: quantity,
		Status:          OrderPending,
		DeliveryDate:    deliveryDate,
	}, nil
}

// EstimateDeliveryDate is the creation date plus the base lead time plus one
// extra day per five units ordered
func EstimateDeliveryDate(creationDate Date, baseLeadTime int, quantity Quantity) Date {
	return creationDate.AddDays(baseLeadTime + int(quantity/5))
}

// Release moves a pending order into production
func (o *Order) Release() error {
	if o.Status != OrderPending {
		return fmt.Errorf("%w: order %d is %s, only pending orders can be released", ErrInvalidState, o.ID, o.Status)
	}
	o.Status = OrderReleased
	return nil
}

// Produce records units built for a released order and completes it when nothing remains
func (o *Order) Produce(units Quantity) error {
	if o.Status != OrderReleased {
		return fmt.Errorf("%w: order %d is %s, only released orders can be produced", ErrInvalidState, o.ID, o.Status)
	}
	if units <= 0 || units > o.Quantity {
		return fmt.Errorf("%w: order %d cannot produce %d units with %d remaining", ErrInvalidState, o.ID, units, o.Quantity)
	}
	o.Quantity -= units
	if o.Quantity == 0 {
		o.Status = OrderCompleted
	}
	return nil
}

// Produced returns the units built so far
func (o *Order) Produced() Quantity {
	return o.InitialQuantity - o.Quantity
}

// IsOpen reports whether the order still has remaining work
func (o *Order) IsOpen() bool {
	return o.Status != OrderCompleted
}

// Validate checks the quantity and status invariants of a restored order
func (o *Order) Validate() error {
	if o.ID <= 0 {
		return fmt.Errorf("%w: order id must be positive, got %d", ErrValidation, o.ID)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("%w: order %d has unknown status %q", ErrValidation, o.ID, o.Status)
	}
	if o.InitialQuantity <= 0 {
		return fmt.Errorf("%w: order %d initial quantity must be positive, got %d", ErrValidation, o.ID, o.InitialQuantity)
	}
	if o.Quantity < 0 || o.Quantity > o.InitialQuantity {
		return fmt.Errorf("%w: order %d quantity %d outside [0, %d]", ErrValidation, o.ID, o.Quantity, o.InitialQuantity)
	}
	if (o.Quantity == 0) != (o.Status == OrderCompleted) {
		return fmt.Errorf("%w: order %d is %s with %d remaining", ErrValidation, o.ID, o.Status, o.Quantity)
	}
	if o.Status == OrderPending && o.Quantity != o.InitialQuantity {
		return fmt.Errorf("%w: pending order %d has partial production", ErrValidation, o.ID)
	}
	return nil
}
