// Package simulation drives the day-by-day MRP simulation. A Simulator owns
// every ledger of a run and is not safe for concurrent use; callers that
// share one across goroutines must serialise access.
package simulation

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vsinha/mrpsim/pkg/application/dto"
	"github.com/vsinha/mrpsim/pkg/application/services/criticalpath"
	"github.com/vsinha/mrpsim/pkg/application/services/demand"
	"github.com/vsinha/mrpsim/pkg/application/services/procurement"
	"github.com/vsinha/mrpsim/pkg/application/services/production"
	"github.com/vsinha/mrpsim/pkg/application/services/shortage"
	"github.com/vsinha/mrpsim/pkg/domain/catalog"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/domain/repositories"
	"github.com/vsinha/mrpsim/pkg/domain/validation"
	"github.com/vsinha/mrpsim/pkg/infrastructure/events"
	"github.com/vsinha/mrpsim/pkg/infrastructure/repositories/memory"
)

// ReleaseBlockedError reports an order that cannot be released while
// materials are short. It matches entities.ErrInvalidState.
type ReleaseBlockedError struct {
	OrderID   entities.OrderID
	Shortages map[entities.ProductID]entities.Quantity
}

func (e *ReleaseBlockedError) Error() string {
	ids := make([]entities.ProductID, 0, len(e.Shortages))
	for id := range e.Shortages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("material %d short %d", id, e.Shortages[id]))
	}
	return fmt.Sprintf("%s: order %d has unresolved shortages (%s)", entities.ErrInvalidState, e.OrderID, strings.Join(parts, ", "))
}

func (e *ReleaseBlockedError) Unwrap() error {
	return entities.ErrInvalidState
}

// Simulator is the state of one simulation run
type Simulator struct {
	cfg     Config
	catalog *catalog.Catalog
	runID   uuid.UUID
	rng     *rand.Rand
	logger  *zap.Logger

	day              int
	currentDate      entities.Date
	inventory        repositories.InventoryRepository
	orders           repositories.OrderRepository
	purchases        repositories.PurchaseOrderRepository
	eventLog         events.EventStore
	inventoryHistory []entities.InventorySnapshot
	productionLog    []entities.ProductionLogEntry
	subscriptions    []subscription

	shortages    *shortage.Calculator
	advisor      *shortage.Advisor
	criticalPath *criticalpath.CriticalPathService
	allocator    *production.Allocator
	procurement  *procurement.Service
	demand       *demand.Generator
}

// New creates an empty simulation on day 1. Use Bootstrap for a run with
// opening stock and orders.
func New(cat *catalog.Catalog, cfg Config, opts ...Option) (*Simulator, error) {
	s, err := newSimulator(cat, cfg, opts)
	if err != nil {
		return nil, err
	}
	s.day = 1
	s.currentDate = cfg.StartDate
	if s.currentDate.IsZero() {
		s.currentDate = entities.Today()
	}
	return s, nil
}

func newSimulator(cat *catalog.Catalog, cfg Config, opts []Option) (*Simulator, error) {
	if cat == nil {
		return nil, fmt.Errorf("%w: simulation requires a catalog", entities.ErrConfiguration)
	}
	if err := validation.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrValidation, validation.Describe(err))
	}

	s := &Simulator{
		cfg:              cfg,
		catalog:          cat,
		runID:            uuid.New(),
		logger:           zap.NewNop(),
		inventory:        memory.NewInventoryRepository(),
		orders:           memory.NewOrderRepository(64),
		purchases:        memory.NewPurchaseOrderRepository(16),
		inventoryHistory: make([]entities.InventorySnapshot, 0),
		productionLog:    make([]entities.ProductionLogEntry, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = NewRand(cfg.Seed)
	}

	eventLog := events.NewInMemoryEventStore(s.logger)
	for _, sub := range s.subscriptions {
		if err := eventLog.Subscribe(sub.types, sub.handler); err != nil {
			return nil, err
		}
	}
	s.eventLog = eventLog

	s.shortages = shortage.NewCalculator(cat, s.orders, s.inventory)
	s.advisor = shortage.NewAdvisor(cat, s.purchases)
	s.criticalPath = criticalpath.NewCriticalPathService(cat, s.orders, s.purchases, s.shortages, cfg.DailyCapacity)
	s.allocator = production.NewAllocator(cat, s.orders, s.inventory, s.eventLog, s.logger)
	s.procurement = procurement.NewService(cat, s.purchases, s.inventory, s.eventLog, s.logger)
	s.demand = demand.NewGenerator(cat, s.orders, s.eventLog, s.rng, s.logger)

	return s, nil
}

// AdvanceDay moves the clock forward one day: receipts, production, the
// inventory snapshot, then new demand. If any step fails the run is rolled
// back to the state before the call. Subscribers only see the day's events
// once it has succeeded.
func (s *Simulator) AdvanceDay(params demand.Params) (*dto.DayResult, error) {
	if err := validation.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrValidation, validation.Describe(err))
	}
	if s.currentDate.AddDays(1).After(entities.MaxDate) {
		return nil, fmt.Errorf("%w: the calendar ends on %s", entities.ErrInvalidState, entities.MaxDate)
	}

	before := s.Snapshot()
	s.eventLog.Hold()
	result, err := s.advance(params)
	if err != nil {
		s.eventLog.Discard()
		if rerr := s.load(before); rerr != nil {
			return nil, errors.Join(err, fmt.Errorf("rolling back day %d: %w", before.Day+1, rerr))
		}
		return nil, fmt.Errorf("advancing to day %d: %w", before.Day+1, err)
	}
	s.eventLog.Flush()
	return result, nil
}

func (s *Simulator) advance(params demand.Params) (*dto.DayResult, error) {
	eventsBefore := s.eventLog.Len()

	s.day++
	s.currentDate = s.currentDate.AddDays(1)
	date := s.currentDate

	received, err := s.procurement.ReceiveDue(date)
	if err != nil {
		return nil, err
	}

	run, err := s.allocator.Run(date, s.cfg.DailyCapacity)
	if err != nil {
		return nil, err
	}
	s.productionLog = append(s.productionLog, entities.ProductionLogEntry{
		Date:     date,
		Produced: entities.CopyLevels(run.Produced),
	})
	if _, err := s.eventLog.Append(events.DayProcessed(date, s.day, run.CapacityUsed)); err != nil {
		return nil, err
	}

	s.inventoryHistory = append(s.inventoryHistory, entities.InventorySnapshot{
		Date:      date,
		Inventory: s.inventory.Snapshot(),
	})

	created, err := s.demand.Generate(date, params)
	if err != nil {
		return nil, err
	}

	s.logger.Info("day advanced",
		zap.String("run_id", s.runID.String()),
		zap.Int("day", s.day),
		zap.String("date", date.String()),
		zap.Int("received", len(received)),
		zap.Int64("produced", int64(run.CapacityUsed)),
		zap.Int("new_orders", len(created)))

	return &dto.DayResult{
		Day:            s.day,
		Date:           date,
		Received:       received,
		Production:     run.Lines,
		Produced:       run.Produced,
		CapacityUsed:   run.CapacityUsed,
		NewOrders:      created,
		EventsRecorded: s.eventLog.Len() - eventsBefore,
	}, nil
}

// GlobalShortage returns the net shortage of all pending orders
func (s *Simulator) GlobalShortage() map[entities.ProductID]entities.Quantity {
	return s.shortages.Global()
}

// OrderShortage returns the net shortage of one order
func (s *Simulator) OrderShortage(id entities.OrderID) (map[entities.ProductID]entities.Quantity, error) {
	return s.shortages.ForOrder(id)
}

// ShortageReport describes the global shortage, or one order's when orderID
// is non-nil, with purchase suggestions for what is not already in transit
func (s *Simulator) ShortageReport(orderID *entities.OrderID) (dto.ShortageReport, error) {
	shortages := s.GlobalShortage()
	if orderID != nil {
		var err error
		if shortages, err = s.OrderShortage(*orderID); err != nil {
			return dto.ShortageReport{}, err
		}
	}
	report := s.advisor.Report(shortages, s.currentDate)
	report.OrderID = orderID
	return report, nil
}

// CriticalPath ranks the materials holding up an open order, keeping the
// top N paths
func (s *Simulator) CriticalPath(id entities.OrderID, topN int) (*dto.CriticalPathAnalysis, error) {
	return s.criticalPath.AnalyzeCriticalPath(id, s.currentDate, topN)
}

// CriticalPaths analyses every open order
func (s *Simulator) CriticalPaths(topN int) []*dto.CriticalPathAnalysis {
	return s.criticalPath.AnalyzeOpenOrders(s.currentDate, topN)
}

// ReleaseOrder moves a pending order into production. It fails with
// ErrInvalidState unless the order is pending and has no shortage.
func (s *Simulator) ReleaseOrder(id entities.OrderID) error {
	order, err := s.orders.Get(id)
	if err != nil {
		return err
	}
	if order.Status != entities.OrderPending {
		return order.Release()
	}
	if short := s.shortages.ForOrderValue(order); len(short) > 0 {
		return &ReleaseBlockedError{OrderID: id, Shortages: short}
	}
	if err := order.Release(); err != nil {
		return err
	}
	if _, err := s.eventLog.Append(events.OrderReleased(s.currentDate, order)); err != nil {
		return err
	}

	s.logger.Info("order released",
		zap.Int("order_id", int(id)),
		zap.Int("product_id", int(order.ProductID)),
		zap.Int64("quantity", int64(order.Quantity)))
	return nil
}

// PlacePurchaseOrder buys quantity of material from supplier today
func (s *Simulator) PlacePurchaseOrder(supplierID entities.SupplierID, material entities.ProductID, quantity entities.Quantity) (*entities.PurchaseOrder, error) {
	po, err := s.procurement.Place(s.currentDate, supplierID, material, quantity)
	if err != nil {
		return nil, err
	}
	copied := *po
	return &copied, nil
}

// CreateOrder enters a customer order by hand. The delivery estimate uses
// the configured base lead time.
func (s *Simulator) CreateOrder(productID entities.ProductID, quantity entities.Quantity) (*entities.Order, error) {
	product, ok := s.catalog.Product(productID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown product %d", entities.ErrValidation, productID)
	}
	if !product.IsFinished() {
		return nil, fmt.Errorf("%w: product %d is %s, orders need a finished product", entities.ErrValidation, productID, product.Kind)
	}
	return s.addOrder(product, quantity, events.ActionManual)
}

func (s *Simulator) addOrder(product entities.Product, quantity entities.Quantity, action string) (*entities.Order, error) {
	delivery := entities.EstimateDeliveryDate(s.currentDate, s.cfg.Demand.BaseLeadTime, quantity)
	order, err := entities.NewOrder(s.orders.NextID(), product.ID, quantity, s.currentDate, delivery)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Add(order); err != nil {
		return nil, err
	}
	extra := map[string]string{"product_name": product.Name}
	if _, err := s.eventLog.Append(events.OrderCreated(s.currentDate, order, action, extra)); err != nil {
		return nil, err
	}
	copied := *order
	return &copied, nil
}

// Subscribe attaches an event handler after construction
func (s *Simulator) Subscribe(handler events.EventHandler, types ...entities.EventType) error {
	if len(types) == 0 {
		types = events.AllTypes()
	}
	if err := s.eventLog.Subscribe(types, handler); err != nil {
		return err
	}
	s.subscriptions = append(s.subscriptions, subscription{types: types, handler: handler})
	return nil
}

func (s *Simulator) RunID() uuid.UUID           { return s.runID }
func (s *Simulator) Day() int                   { return s.day }
func (s *Simulator) CurrentDate() entities.Date { return s.currentDate }
func (s *Simulator) Config() Config             { return s.cfg }
func (s *Simulator) Catalog() *catalog.Catalog  { return s.catalog }

// Inventory returns a copy of the on-hand levels
func (s *Simulator) Inventory() map[entities.ProductID]entities.Quantity {
	return s.inventory.Snapshot()
}

// Orders returns copies of every order in the book
func (s *Simulator) Orders() []entities.Order {
	all := s.orders.All()
	out := make([]entities.Order, 0, len(all))
	for _, o := range all {
		out = append(out, *o)
	}
	return out
}

// PurchaseOrders returns copies of every purchase order
func (s *Simulator) PurchaseOrders() []entities.PurchaseOrder {
	all := s.purchases.All()
	out := make([]entities.PurchaseOrder, 0, len(all))
	for _, po := range all {
		out = append(out, *po)
	}
	return out
}

// Events returns the event log
func (s *Simulator) Events() []entities.Event {
	return s.eventLog.All()
}

// InventoryHistory returns the end-of-day inventory series
func (s *Simulator) InventoryHistory() []entities.InventorySnapshot {
	out := make([]entities.InventorySnapshot, 0, len(s.inventoryHistory))
	for _, snap := range s.inventoryHistory {
		out = append(out, entities.InventorySnapshot{Date: snap.Date, Inventory: entities.CopyLevels(snap.Inventory)})
	}
	return out
}

// ProductionLog returns the per-day production series
func (s *Simulator) ProductionLog() []entities.ProductionLogEntry {
	out := make([]entities.ProductionLogEntry, 0, len(s.productionLog))
	for _, entry := range s.productionLog {
		out = append(out, entities.ProductionLogEntry{Date: entry.Date, Produced: entities.CopyLevels(entry.Produced)})
	}
	return out
}
