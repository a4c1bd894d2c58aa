package procurement

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/mrpsim/pkg/domain/catalog"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/domain/repositories"
	"github.com/vsinha/mrpsim/pkg/infrastructure/events"
)

// Service places purchase orders and receives them when they arrive
type Service struct {
	catalog   *catalog.Catalog
	purchases repositories.PurchaseOrderRepository
	inventory repositories.InventoryRepository
	eventLog  events.EventStore
	logger    *zap.Logger
}

func NewService(
	cat *catalog.Catalog,
	purchases repositories.PurchaseOrderRepository,
	inventory repositories.InventoryRepository,
	eventLog events.EventStore,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog:   cat,
		purchases: purchases,
		inventory: inventory,
		eventLog:  eventLog,
		logger:    logger,
	}
}

// Place records a purchase of material from supplier on date. The supplier
// and material must exist and the supplier must offer the material.
func (s *Service) Place(date entities.Date, supplierID entities.SupplierID, material entities.ProductID, quantity entities.Quantity) (*entities.PurchaseOrder, error) {
	supplier, ok := s.catalog.Supplier(supplierID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown supplier %d", entities.ErrValidation, supplierID)
	}
	product, ok := s.catalog.Product(material)
	if !ok {
		return nil, fmt.Errorf("%w: unknown product %d", entities.ErrValidation, material)
	}
	if !product.IsRaw() {
		return nil, fmt.Errorf("%w: product %d is %s and cannot be purchased", entities.ErrValidation, material, product.Kind)
	}
	if supplier.ProductID != material {
		return nil, fmt.Errorf("%w: supplier %d does not offer product %d", entities.ErrValidation, supplierID, material)
	}

	po, err := entities.NewPurchaseOrder(s.purchases.NextID(), supplier, quantity, date)
	if err != nil {
		return nil, err
	}
	if err := s.purchases.Add(po); err != nil {
		return nil, err
	}
	if _, err := s.eventLog.Append(events.PurchasePlaced(date, po, supplier.Name)); err != nil {
		return nil, err
	}

	s.logger.Info("purchase order placed",
		zap.Int("purchase_order_id", int(po.ID)),
		zap.Int("supplier_id", int(supplierID)),
		zap.Int("material_id", int(material)),
		zap.Int64("quantity", int64(quantity)),
		zap.String("expected_arrival", po.ExpectedArrival.String()))

	return po, nil
}

// ReceiveDue receives every ordered purchase arriving on or before date
func (s *Service) ReceiveDue(date entities.Date) ([]entities.PurchaseOrder, error) {
	received := make([]entities.PurchaseOrder, 0)
	for _, po := range s.purchases.Due(date) {
		if err := po.Receive(); err != nil {
			return nil, err
		}
		if err := s.inventory.Receive(po.ProductID, po.Quantity); err != nil {
			return nil, err
		}
		if _, err := s.eventLog.Append(events.PurchaseReceived(date, po)); err != nil {
			return nil, err
		}
		received = append(received, *po)

		s.logger.Debug("purchase order received",
			zap.Int("purchase_order_id", int(po.ID)),
			zap.Int("material_id", int(po.ProductID)),
			zap.Int64("quantity", int64(po.Quantity)))
	}
	return received, nil
}
