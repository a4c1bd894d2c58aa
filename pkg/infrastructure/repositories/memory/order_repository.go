package memory

import (
	"fmt"

	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/domain/repositories"
)

// OrderRepository provides in-memory order book storage in insertion order
type OrderRepository struct {
	orders    []*entities.Order
	ordersMap map[entities.OrderID]int
}

// NewOrderRepository creates a new in-memory order repository
func NewOrderRepository(expectedOrders int) *OrderRepository {
	return &OrderRepository{
		orders:    make([]*entities.Order, 0, expectedOrders),
		ordersMap: make(map[entities.OrderID]int, expectedOrders),
	}
}

// Verify interface compliance
var _ repositories.OrderRepository = (*OrderRepository)(nil)

// Load replaces the order book with copies of the given orders
func (r *OrderRepository) Load(orders []entities.Order) error {
	r.orders = make([]*entities.Order, 0, len(orders))
	r.ordersMap = make(map[entities.OrderID]int, len(orders))
	for i := range orders {
		order := orders[i]
		if err := r.Add(&order); err != nil {
			return err
		}
	}
	return nil
}

// Add appends an order to the book
func (r *OrderRepository) Add(order *entities.Order) error {
	if _, exists := r.ordersMap[order.ID]; exists {
		return fmt.Errorf("%w: duplicate order id %d", entities.ErrValidation, order.ID)
	}
	r.ordersMap[order.ID] = len(r.orders)
	r.orders = append(r.orders, order)
	return nil
}

// Get returns the order with the given id
func (r *OrderRepository) Get(id entities.OrderID) (*entities.Order, error) {
	index, exists := r.ordersMap[id]
	if !exists {
		return nil, fmt.Errorf("%w: order %d not found", entities.ErrValidation, id)
	}
	return r.orders[index], nil
}

// All returns every order in insertion order
func (r *OrderRepository) All() []*entities.Order {
	return append([]*entities.Order(nil), r.orders...)
}

// ByStatus returns the orders in the given status in insertion order
func (r *OrderRepository) ByStatus(status entities.OrderStatus) []*entities.Order {
	var orders []*entities.Order
	for _, order := range r.orders {
		if order.Status == status {
			orders = append(orders, order)
		}
	}
	return orders
}

// NextID returns one more than the largest id in the book
func (r *OrderRepository) NextID() entities.OrderID {
	var maxID entities.OrderID
	for id := range r.ordersMap {
		if id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// Len returns the number of orders
func (r *OrderRepository) Len() int {
	return len(r.orders)
}
