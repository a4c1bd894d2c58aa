package shared

import (
	"sort"

	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// SelectBestSupplier picks the supplier to cover a shortage: the shortest lead
// time wins, then the lowest total cost for the ordered quantity, then the
// lowest id. Suppliers whose maximum order quantity cannot cover the
// quantity are only chosen when no other supplier can.
// Returns false if no suppliers are provided.
func SelectBestSupplier(suppliers []entities.Supplier, quantity entities.Quantity) (entities.Supplier, bool) {
	if len(suppliers) == 0 {
		return entities.Supplier{}, false
	}

	sorted := make([]entities.Supplier, len(suppliers))
	copy(sorted, suppliers)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if fa, fb := fits(a, quantity), fits(b, quantity); fa != fb {
			return fa
		}
		if a.LeadTimeDays != b.LeadTimeDays {
			return a.LeadTimeDays < b.LeadTimeDays
		}
		ca, cb := a.Cost(a.RoundOrderQty(quantity)), b.Cost(b.RoundOrderQty(quantity))
		if !ca.Equal(cb) {
			return ca.LessThan(cb)
		}
		return a.ID < b.ID
	})

	return sorted[0], true
}

func fits(s entities.Supplier, quantity entities.Quantity) bool {
	return s.MaxOrderQty == 0 || s.RoundOrderQty(quantity) <= s.MaxOrderQty
}
