// Package criticalpath finds the material that holds up an order longest.
// Each BOM material is one path, covered from stock, from purchases already
// in transit or from a new purchase with the best supplier.
package criticalpath

import (
	"fmt"
	"sort"

	"github.com/vsinha/mrpsim/pkg/application/dto"
	"github.com/vsinha/mrpsim/pkg/application/services/shared"
	"github.com/vsinha/mrpsim/pkg/domain/catalog"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/domain/repositories"
)

// ShortageSource computes the shortage of one order
type ShortageSource interface {
	ForOrderValue(order *entities.Order) map[entities.ProductID]entities.Quantity
}

// CriticalPathService performs critical path analysis on open orders
type CriticalPathService struct {
	catalog   *catalog.Catalog
	orders    repositories.OrderRepository
	purchases repositories.PurchaseOrderRepository
	shortages ShortageSource
	capacity  entities.Quantity
}

// NewCriticalPathService creates a new critical path service. capacity is the
// daily production capacity used to estimate completion dates.
func NewCriticalPathService(
	cat *catalog.Catalog,
	orders repositories.OrderRepository,
	purchases repositories.PurchaseOrderRepository,
	shortages ShortageSource,
	capacity entities.Quantity,
) *CriticalPathService {
	return &CriticalPathService{
		catalog:   cat,
		orders:    orders,
		purchases: purchases,
		shortages: shortages,
		capacity:  capacity,
	}
}

// AnalyzeCriticalPath analyses the order with the given id on today and keeps
// the top N paths. topN <= 0 keeps every path.
func (cps *CriticalPathService) AnalyzeCriticalPath(id entities.OrderID, today entities.Date, topN int) (*dto.CriticalPathAnalysis, error) {
	order, err := cps.orders.Get(id)
	if err != nil {
		return nil, err
	}
	if order.Status == entities.OrderCompleted {
		return nil, fmt.Errorf("%w: order %d is completed", entities.ErrInvalidState, id)
	}
	return cps.analyze(order, today, topN), nil
}

// AnalyzeOpenOrders analyses every pending and released order in priority order
func (cps *CriticalPathService) AnalyzeOpenOrders(today entities.Date, topN int) []*dto.CriticalPathAnalysis {
	var analyses []*dto.CriticalPathAnalysis
	for _, order := range cps.orders.All() {
		if !order.IsOpen() {
			continue
		}
		analyses = append(analyses, cps.analyze(order, today, topN))
	}
	return analyses
}

func (cps *CriticalPathService) analyze(order *entities.Order, today entities.Date, topN int) *dto.CriticalPathAnalysis {
	shortages := cps.shortages.ForOrderValue(order)
	required := entities.Requirements(cps.catalog.BOM(order.ProductID), order.Quantity)

	paths := make([]dto.MaterialPath, 0, len(required))
	for material, qty := range required {
		paths = append(paths, cps.materialPath(material, qty, shortages[material], today))
	}

	// Unsourced paths first, then effective lead time, then total lead time
	sort.Slice(paths, func(i, j int) bool {
		a, b := paths[i], paths[j]
		if a.Unsourced() != b.Unsourced() {
			return a.Unsourced()
		}
		if a.EffectiveLeadTime != b.EffectiveLeadTime {
			return a.EffectiveLeadTime > b.EffectiveLeadTime
		}
		if a.TotalLeadTime != b.TotalLeadTime {
			return a.TotalLeadTime > b.TotalLeadTime
		}
		return a.MaterialID < b.MaterialID
	})

	analysis := &dto.CriticalPathAnalysis{
		OrderID:      order.ID,
		ProductID:    order.ProductID,
		Quantity:     order.Quantity,
		AnalysisDate: today,
		DeliveryDate: order.DeliveryDate,
		TopPaths:     paths,
		TotalPaths:   len(paths),
	}
	if topN > 0 && len(paths) > topN {
		analysis.TopPaths = paths[:topN]
	}

	effective := 0
	if len(paths) > 0 {
		critical := paths[0]
		analysis.CriticalPath = &critical
		effective = critical.EffectiveLeadTime
		if critical.Unsourced() {
			analysis.AtRisk = true
			return analysis
		}
	}

	release := today.AddDays(effective)
	if order.Status == entities.OrderReleased {
		release = today
	}
	analysis.EarliestRelease = release
	analysis.EarliestCompletion = release.AddDays(cps.productionDays(order.Quantity))
	analysis.AtRisk = analysis.EarliestCompletion.After(order.DeliveryDate)
	return analysis
}

// materialPath works out when a material shortage can be covered
func (cps *CriticalPathService) materialPath(material entities.ProductID, required, short entities.Quantity, today entities.Date) dto.MaterialPath {
	path := dto.MaterialPath{
		MaterialID:  material,
		RequiredQty: required,
		Shortage:    short,
		InTransit:   cps.purchases.InTransit(material),
		ReadyDate:   today,
		Source:      dto.SourceStock,
	}
	if p, ok := cps.catalog.Product(material); ok {
		path.MaterialName = p.Name
	}

	suppliers := cps.catalog.SuppliersFor(material)
	best, hasSupplier := shared.SelectBestSupplier(suppliers, short)
	if hasSupplier {
		path.TotalLeadTime = best.LeadTimeDays
	}
	if short <= 0 {
		return path
	}

	if arrival, ok := cps.coveringArrival(material, short); ok {
		path.Source = dto.SourceInTransit
		path.ReadyDate = arrival
		path.EffectiveLeadTime = max(today.DaysUntil(arrival), 0)
		return path
	}

	if !hasSupplier {
		path.Source = dto.SourceNone
		path.ReadyDate = entities.Date{}
		return path
	}
	path.Source = dto.SourcePurchase
	path.SupplierID = &best.ID
	path.EffectiveLeadTime = best.LeadTimeDays
	path.ReadyDate = today.AddDays(best.LeadTimeDays)
	return path
}

// coveringArrival returns the arrival date by which open purchases of
// material add up to quantity
func (cps *CriticalPathService) coveringArrival(material entities.ProductID, quantity entities.Quantity) (entities.Date, bool) {
	var open []*entities.PurchaseOrder
	for _, po := range cps.purchases.All() {
		if po.ProductID == material && po.Status == entities.PurchaseOrdered {
			open = append(open, po)
		}
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].ExpectedArrival.Before(open[j].ExpectedArrival) })

	var covered entities.Quantity
	for _, po := range open {
		covered += po.Quantity
		if covered >= quantity {
			return po.ExpectedArrival, true
		}
	}
	return entities.Date{}, false
}

// productionDays is the number of day advances needed to build quantity
// with the whole daily capacity
func (cps *CriticalPathService) productionDays(quantity entities.Quantity) int {
	if cps.capacity <= 0 || quantity <= 0 {
		return 1
	}
	return int((quantity + cps.capacity - 1) / cps.capacity)
}
