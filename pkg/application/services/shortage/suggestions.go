package shortage

import (
	"sort"

	"github.com/vsinha/mrpsim/pkg/application/dto"
	"github.com/vsinha/mrpsim/pkg/application/services/shared"
	"github.com/vsinha/mrpsim/pkg/domain/catalog"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/domain/repositories"
)

// Advisor turns shortage mappings into report lines and purchase
// suggestions. Quantities already in transit are netted off.
type Advisor struct {
	catalog   *catalog.Catalog
	purchases repositories.PurchaseOrderRepository
}

// NewAdvisor creates a purchase advisor
func NewAdvisor(cat *catalog.Catalog, purchases repositories.PurchaseOrderRepository) *Advisor {
	return &Advisor{catalog: cat, purchases: purchases}
}

// Report builds the shortage lines and suggestions for placing orders on today
func (a *Advisor) Report(shortages map[entities.ProductID]entities.Quantity, today entities.Date) dto.ShortageReport {
	report := dto.ShortageReport{
		Lines:       make([]dto.ShortageLine, 0, len(shortages)),
		Suggestions: make([]dto.PurchaseSuggestion, 0, len(shortages)),
	}

	for _, material := range sortedMaterials(shortages) {
		short := shortages[material]
		inTransit := a.purchases.InTransit(material)
		name := ""
		if p, ok := a.catalog.Product(material); ok {
			name = p.Name
		}

		report.Lines = append(report.Lines, dto.ShortageLine{
			MaterialID:   material,
			MaterialName: name,
			Shortage:     short,
			InTransit:    inTransit,
		})

		uncovered := short - inTransit
		if uncovered <= 0 {
			continue
		}
		if s, ok := a.suggest(material, name, uncovered, today); ok {
			report.Suggestions = append(report.Suggestions, s)
		}
	}

	return report
}

func (a *Advisor) suggest(material entities.ProductID, name string, quantity entities.Quantity, today entities.Date) (dto.PurchaseSuggestion, bool) {
	supplier, ok := shared.SelectBestSupplier(a.catalog.SuppliersFor(material), quantity)
	if !ok {
		return dto.PurchaseSuggestion{}, false
	}

	qty := supplier.RoundOrderQty(quantity)
	if supplier.MaxOrderQty > 0 && qty > supplier.MaxOrderQty {
		qty = supplier.MaxOrderQty
	}

	return dto.PurchaseSuggestion{
		MaterialID:      material,
		MaterialName:    name,
		SupplierID:      supplier.ID,
		SupplierName:    supplier.Name,
		Quantity:        qty,
		UnitCost:        supplier.UnitCost,
		TotalCost:       supplier.Cost(qty),
		LeadTimeDays:    supplier.LeadTimeDays,
		ExpectedArrival: today.AddDays(supplier.LeadTimeDays),
	}, true
}

func sortedMaterials(m map[entities.ProductID]entities.Quantity) []entities.ProductID {
	ids := make([]entities.ProductID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
