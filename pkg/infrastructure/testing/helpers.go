package testing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/mrpsim/pkg/domain/catalog"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/infrastructure/repositories/memory"
)

// Product ids of the simple scenario
const (
	SimpleFinished entities.ProductID = 1
	SimpleMaterial entities.ProductID = 2
	SimpleSupplier entities.SupplierID = 1
)

// Product ids of the printer scenario
const (
	PrinterBasic  entities.ProductID = 1
	PrinterPro    entities.ProductID = 2
	Frame         entities.ProductID = 10
	Extruder      entities.ProductID = 11
	Board         entities.ProductID = 12
	Filament      entities.ProductID = 13
	FrameSupplier entities.SupplierID = 1
)

// StartDate is the calendar day fixtures start on
var StartDate = entities.NewDate(2025, time.January, 6)

// Ledgers bundles fresh in-memory repositories
type Ledgers struct {
	Inventory *memory.InventoryRepository
	Orders    *memory.OrderRepository
	Purchases *memory.PurchaseOrderRepository
}

// NewLedgers creates empty ledgers seeded with the given stock levels
func NewLedgers(stock map[entities.ProductID]entities.Quantity) Ledgers {
	l := Ledgers{
		Inventory: memory.NewInventoryRepository(),
		Orders:    memory.NewOrderRepository(8),
		Purchases: memory.NewPurchaseOrderRepository(8),
	}
	if err := l.Inventory.Load(stock); err != nil {
		panic(err)
	}
	return l
}

// BuildSimpleCatalog builds one finished product F that needs 2 units of
// raw material M per unit, and a supplier of M with a 3 day lead time
func BuildSimpleCatalog() *catalog.Catalog {
	return mustCatalog(
		[]entities.Product{
			{ID: SimpleFinished, Name: "F", Kind: entities.Finished},
			{ID: SimpleMaterial, Name: "M", Kind: entities.Raw},
		},
		[]entities.BOMEdge{
			{FinishedProductID: SimpleFinished, MaterialID: SimpleMaterial, QuantityPerUnit: 2},
		},
		[]entities.Supplier{
			{ID: SimpleSupplier, Name: "M Supply", ProductID: SimpleMaterial, UnitCost: decimal.RequireFromString("1.25"), LeadTimeDays: 3},
		},
	)
}

// BuildPrinterCatalog builds a 3D printer shop with two models sharing parts
func BuildPrinterCatalog() *catalog.Catalog {
	return mustCatalog(
		[]entities.Product{
			{ID: PrinterBasic, Name: "Printer Basic", Kind: entities.Finished},
			{ID: PrinterPro, Name: "Printer Pro", Kind: entities.Finished},
			{ID: Frame, Name: "Aluminium frame", Kind: entities.Raw},
			{ID: Extruder, Name: "Extruder", Kind: entities.Raw},
			{ID: Board, Name: "Control board", Kind: entities.Raw},
			{ID: Filament, Name: "PLA filament", Kind: entities.Raw},
		},
		[]entities.BOMEdge{
			{FinishedProductID: PrinterBasic, MaterialID: Frame, QuantityPerUnit: 1},
			{FinishedProductID: PrinterBasic, MaterialID: Extruder, QuantityPerUnit: 1},
			{FinishedProductID: PrinterBasic, MaterialID: Board, QuantityPerUnit: 1},
			{FinishedProductID: PrinterBasic, MaterialID: Filament, QuantityPerUnit: 0},
			{FinishedProductID: PrinterPro, MaterialID: Frame, QuantityPerUnit: 1},
			{FinishedProductID: PrinterPro, MaterialID: Extruder, QuantityPerUnit: 2},
			{FinishedProductID: PrinterPro, MaterialID: Board, QuantityPerUnit: 1},
		},
		[]entities.Supplier{
			{ID: FrameSupplier, Name: "Frames Ltd", ProductID: Frame, UnitCost: decimal.NewFromInt(45), LeadTimeDays: 4},
			{ID: 2, Name: "Frames Express", ProductID: Frame, UnitCost: decimal.NewFromInt(60), LeadTimeDays: 1},
			{ID: 3, Name: "Hot End Co", ProductID: Extruder, UnitCost: decimal.RequireFromString("22.50"), LeadTimeDays: 2, MinOrderQty: 10},
			{ID: 4, Name: "PCB Works", ProductID: Board, UnitCost: decimal.NewFromInt(30), LeadTimeDays: 3, MaxOrderQty: 50},
			{ID: 5, Name: "Filament Depot", ProductID: Filament, UnitCost: decimal.RequireFromString("18.99"), LeadTimeDays: 2},
		},
	)
}

// MustOrder creates a pending order created on StartDate, panicking on error
func MustOrder(id entities.OrderID, product entities.ProductID, qty entities.Quantity) *entities.Order {
	order, err := entities.NewOrder(id, product, qty, StartDate, entities.EstimateDeliveryDate(StartDate, 3, qty))
	if err != nil {
		panic(err)
	}
	return order
}

// MustReleasedOrder creates a released order, panicking on error
func MustReleasedOrder(id entities.OrderID, product entities.ProductID, qty entities.Quantity) *entities.Order {
	order := MustOrder(id, product, qty)
	if err := order.Release(); err != nil {
		panic(err)
	}
	return order
}

// AddOrders adds orders to the ledgers in the given sequence
func (l Ledgers) AddOrders(orders ...*entities.Order) {
	for _, order := range orders {
		if err := l.Orders.Add(order); err != nil {
			panic(err)
		}
	}
}

func mustCatalog(products []entities.Product, edges []entities.BOMEdge, suppliers []entities.Supplier) *catalog.Catalog {
	c, err := catalog.New(products, edges, suppliers)
	if err != nil {
		panic(err)
	}
	return c
}
