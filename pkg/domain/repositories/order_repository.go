package repositories

import "github.com/vsinha/mrpsim/pkg/domain/entities"

// OrderRepository provides access to the order book. Traversal methods
// return orders in insertion order, which is the production priority.
type OrderRepository interface {
	Add(order *entities.Order) error
	Get(id entities.OrderID) (*entities.Order, error)
	All() []*entities.Order
	ByStatus(status entities.OrderStatus) []*entities.Order
	NextID() entities.OrderID
	Len() int
	Load(orders []entities.Order) error
}
