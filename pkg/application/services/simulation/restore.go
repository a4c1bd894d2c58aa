package simulation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vsinha/mrpsim/pkg/application/dto"
	"github.com/vsinha/mrpsim/pkg/domain/catalog"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// Snapshot captures the full state of the run. The result shares no memory
// with the simulator.
func (s *Simulator) Snapshot() dto.Snapshot {
	snap := dto.Snapshot{
		RunID:            s.runID,
		Day:              s.day,
		CurrentDate:      s.currentDate,
		Inventory:        s.inventory.Snapshot(),
		Orders:           s.Orders(),
		PurchaseOrders:   s.PurchaseOrders(),
		Events:           copyEvents(s.eventLog.All()),
		InventoryHistory: s.InventoryHistory(),
		ProductionLog:    s.ProductionLog(),
	}
	snap.Normalize()
	return snap
}

// Restore rebuilds a simulation from a snapshot taken earlier. The random
// source is not part of the snapshot and is seeded from cfg.
func Restore(cat *catalog.Catalog, cfg Config, snap dto.Snapshot, opts ...Option) (*Simulator, error) {
	s, err := newSimulator(cat, cfg, opts)
	if err != nil {
		return nil, err
	}
	if err := s.load(snap); err != nil {
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}
	return s, nil
}

func (s *Simulator) load(snap dto.Snapshot) error {
	snap.Normalize()
	if err := checkSnapshot(s.catalog, snap); err != nil {
		return err
	}

	if err := s.inventory.Load(snap.Inventory); err != nil {
		return err
	}
	if err := s.orders.Load(snap.Orders); err != nil {
		return err
	}
	if err := s.purchases.Load(snap.PurchaseOrders); err != nil {
		return err
	}
	if err := s.eventLog.Load(copyEvents(snap.Events)); err != nil {
		return err
	}

	if snap.RunID != uuid.Nil {
		s.runID = snap.RunID
	}
	s.day = snap.Day
	s.currentDate = snap.CurrentDate

	s.inventoryHistory = make([]entities.InventorySnapshot, 0, len(snap.InventoryHistory))
	for _, h := range snap.InventoryHistory {
		s.inventoryHistory = append(s.inventoryHistory, entities.InventorySnapshot{
			Date:      h.Date,
			Inventory: entities.CopyLevels(h.Inventory),
		})
	}
	s.productionLog = make([]entities.ProductionLogEntry, 0, len(snap.ProductionLog))
	for _, p := range snap.ProductionLog {
		s.productionLog = append(s.productionLog, entities.ProductionLogEntry{
			Date:     p.Date,
			Produced: entities.CopyLevels(p.Produced),
		})
	}
	return nil
}

// checkSnapshot rejects snapshots that break ledger invariants or refer to
// things the catalog does not know
func checkSnapshot(cat *catalog.Catalog, snap dto.Snapshot) error {
	if snap.Day < 1 {
		return fmt.Errorf("%w: day must be at least 1, got %d", entities.ErrValidation, snap.Day)
	}
	if snap.CurrentDate.IsZero() {
		return fmt.Errorf("%w: snapshot has no current date", entities.ErrValidation)
	}
	for id, qty := range snap.Inventory {
		if qty < 0 {
			return fmt.Errorf("%w: product %d has negative inventory %d", entities.ErrValidation, id, qty)
		}
	}

	seenOrders := make(map[entities.OrderID]bool, len(snap.Orders))
	for i := range snap.Orders {
		order := snap.Orders[i]
		if err := order.Validate(); err != nil {
			return err
		}
		if seenOrders[order.ID] {
			return fmt.Errorf("%w: duplicate order id %d", entities.ErrValidation, order.ID)
		}
		seenOrders[order.ID] = true
		product, ok := cat.Product(order.ProductID)
		if !ok || !product.IsFinished() {
			return fmt.Errorf("%w: order %d refers to unknown finished product %d", entities.ErrValidation, order.ID, order.ProductID)
		}
	}

	seenPOs := make(map[entities.PurchaseOrderID]bool, len(snap.PurchaseOrders))
	for i := range snap.PurchaseOrders {
		po := snap.PurchaseOrders[i]
		if err := po.Validate(); err != nil {
			return err
		}
		if seenPOs[po.ID] {
			return fmt.Errorf("%w: duplicate purchase order id %d", entities.ErrValidation, po.ID)
		}
		seenPOs[po.ID] = true
		supplier, ok := cat.Supplier(po.SupplierID)
		if !ok {
			return fmt.Errorf("%w: purchase order %d refers to unknown supplier %d", entities.ErrValidation, po.ID, po.SupplierID)
		}
		if supplier.ProductID != po.ProductID {
			return fmt.Errorf("%w: purchase order %d is for product %d, supplier %d offers %d",
				entities.ErrValidation, po.ID, po.ProductID, supplier.ID, supplier.ProductID)
		}
	}

	for i, e := range snap.Events {
		if e.ID != entities.EventID(i+1) {
			return fmt.Errorf("%w: event at position %d has id %d, expected %d", entities.ErrValidation, i, e.ID, i+1)
		}
		if !e.Type.Valid() {
			return fmt.Errorf("%w: event %d has unknown type %q", entities.ErrValidation, e.ID, e.Type)
		}
	}

	return nil
}

func copyEvents(in []entities.Event) []entities.Event {
	out := make([]entities.Event, 0, len(in))
	for _, e := range in {
		if e.Extra != nil {
			extra := make(map[string]string, len(e.Extra))
			for k, v := range e.Extra {
				extra[k] = v
			}
			e.Extra = extra
		}
		out = append(out, e)
	}
	return out
}
