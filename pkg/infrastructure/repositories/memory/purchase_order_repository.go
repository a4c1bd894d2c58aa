package memory

import (
	"fmt"

	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/domain/repositories"
)

// PurchaseOrderRepository provides in-memory procurement ledger storage
type PurchaseOrderRepository struct {
	pos        []*entities.PurchaseOrder
	posMap     map[entities.PurchaseOrderID]int
	byMaterial map[entities.ProductID][]int
}

// NewPurchaseOrderRepository creates a new in-memory purchase order repository
func NewPurchaseOrderRepository(expected int) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{
		pos:        make([]*entities.PurchaseOrder, 0, expected),
		posMap:     make(map[entities.PurchaseOrderID]int, expected),
		byMaterial: make(map[entities.ProductID][]int),
	}
}

// Verify interface compliance
var _ repositories.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)

// Load replaces the ledger with copies of the given purchase orders
func (r *PurchaseOrderRepository) Load(pos []entities.PurchaseOrder) error {
	r.pos = make([]*entities.PurchaseOrder, 0, len(pos))
	r.posMap = make(map[entities.PurchaseOrderID]int, len(pos))
	r.byMaterial = make(map[entities.ProductID][]int)
	for i := range pos {
		po := pos[i]
		if err := r.Add(&po); err != nil {
			return err
		}
	}
	return nil
}

// Add appends a purchase order to the ledger
func (r *PurchaseOrderRepository) Add(po *entities.PurchaseOrder) error {
	if _, exists := r.posMap[po.ID]; exists {
		return fmt.Errorf("%w: duplicate purchase order id %d", entities.ErrValidation, po.ID)
	}
	index := len(r.pos)
	r.posMap[po.ID] = index
	r.byMaterial[po.ProductID] = append(r.byMaterial[po.ProductID], index)
	r.pos = append(r.pos, po)
	return nil
}

// Get returns the purchase order with the given id
func (r *PurchaseOrderRepository) Get(id entities.PurchaseOrderID) (*entities.PurchaseOrder, error) {
	index, exists := r.posMap[id]
	if !exists {
		return nil, fmt.Errorf("%w: purchase order %d not found", entities.ErrValidation, id)
	}
	return r.pos[index], nil
}

// All returns every purchase order in placement order
func (r *PurchaseOrderRepository) All() []*entities.PurchaseOrder {
	return append([]*entities.PurchaseOrder(nil), r.pos...)
}

// Due returns purchases still ordered whose arrival is on or before date
func (r *PurchaseOrderRepository) Due(date entities.Date) []*entities.PurchaseOrder {
	var due []*entities.PurchaseOrder
	for _, po := range r.pos {
		if po.IsDue(date) {
			due = append(due, po)
		}
	}
	return due
}

// InTransit returns the quantity of a material ordered but not yet received
func (r *PurchaseOrderRepository) InTransit(material entities.ProductID) entities.Quantity {
	var total entities.Quantity
	for _, index := range r.byMaterial[material] {
		if po := r.pos[index]; po.Status == entities.PurchaseOrdered {
			total += po.Quantity
		}
	}
	return total
}

// NextID returns one more than the largest id in the ledger
func (r *PurchaseOrderRepository) NextID() entities.PurchaseOrderID {
	var maxID entities.PurchaseOrderID
	for id := range r.posMap {
		if id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}
