package repositories

import "github.com/vsinha/mrpsim/pkg/domain/entities"

// PurchaseOrderRepository provides access to the procurement ledger
type PurchaseOrderRepository interface {
	Add(po *entities.PurchaseOrder) error
	Get(id entities.PurchaseOrderID) (*entities.PurchaseOrder, error)
	All() []*entities.PurchaseOrder
	// Due returns ordered purchases whose expected arrival is on or before date
	Due(date entities.Date) []*entities.PurchaseOrder
	InTransit(material entities.ProductID) entities.Quantity
	NextID() entities.PurchaseOrderID
	Load(pos []entities.PurchaseOrder) error
}
