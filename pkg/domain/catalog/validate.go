package catalog

import (
	"fmt"

	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/domain/validation"
)

// ValidationResult contains the results of catalog validation
type ValidationResult struct {
	DuplicateProducts  []entities.ProductID
	DuplicateSuppliers []entities.SupplierID
	DuplicateEdges     []entities.BOMEdge
	DanglingRefs       []string
	Errors             []string
}

// Valid reports whether validation found no errors
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks field constraints and referential integrity of a catalog
func Validate(products []entities.Product, edges []entities.BOMEdge, suppliers []entities.Supplier) *ValidationResult {
	result := &ValidationResult{
		DuplicateProducts:  make([]entities.ProductID, 0),
		DuplicateSuppliers: make([]entities.SupplierID, 0),
		DuplicateEdges:     make([]entities.BOMEdge, 0),
		DanglingRefs:       make([]string, 0),
		Errors:             make([]string, 0),
	}

	kinds := make(map[entities.ProductID]entities.ProductKind, len(products))
	for i, p := range products {
		if err := validation.Struct(p); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("product #%d: %s", i+1, validation.Describe(err)))
		}
		if _, exists := kinds[p.ID]; exists {
			result.DuplicateProducts = append(result.DuplicateProducts, p.ID)
			continue
		}
		kinds[p.ID] = p.Kind
	}

	result.DuplicateEdges = detectDuplicateEdges(edges)
	for i, e := range edges {
		if err := validation.Struct(e); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("bom edge #%d: %s", i+1, validation.Describe(err)))
		}
		result.checkRef(kinds, e.FinishedProductID, entities.Finished,
			fmt.Sprintf("bom edge #%d finished product", i+1))
		result.checkRef(kinds, e.MaterialID, entities.Raw,
			fmt.Sprintf("bom edge #%d material", i+1))
	}

	seenSuppliers := make(map[entities.SupplierID]bool, len(suppliers))
	for i, s := range suppliers {
		if err := validation.Struct(s); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("supplier #%d: %s", i+1, validation.Describe(err)))
		}
		if seenSuppliers[s.ID] {
			result.DuplicateSuppliers = append(result.DuplicateSuppliers, s.ID)
		}
		seenSuppliers[s.ID] = true

		if s.UnitCost.IsNegative() {
			result.Errors = append(result.Errors, fmt.Sprintf("supplier %d: unit cost %s is negative", s.ID, s.UnitCost))
		}
		if s.MaxOrderQty > 0 && s.MinOrderQty > s.MaxOrderQty {
			result.Errors = append(result.Errors, fmt.Sprintf("supplier %d: minimum order quantity %d exceeds maximum %d",
				s.ID, s.MinOrderQty, s.MaxOrderQty))
		}
		result.checkRef(kinds, s.ProductID, entities.Raw, fmt.Sprintf("supplier %d product", s.ID))
	}

	if len(result.DuplicateProducts) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("duplicate product ids: %v", result.DuplicateProducts))
	}
	if len(result.DuplicateSuppliers) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("duplicate supplier ids: %v", result.DuplicateSuppliers))
	}
	if len(result.DuplicateEdges) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("found %d duplicate bom edges", len(result.DuplicateEdges)))
	}
	result.Errors = append(result.Errors, result.DanglingRefs...)

	return result
}

// checkRef records a reference to a product that is missing or of the wrong kind
func (r *ValidationResult) checkRef(kinds map[entities.ProductID]entities.ProductKind, id entities.ProductID, want entities.ProductKind, what string) {
	kind, ok := kinds[id]
	switch {
	case !ok:
		r.DanglingRefs = append(r.DanglingRefs, fmt.Sprintf("%s %d does not exist", what, id))
	case kind != want:
		r.DanglingRefs = append(r.DanglingRefs, fmt.Sprintf("%s %d is %s, expected %s", what, id, kind, want))
	}
}

// detectDuplicateEdges finds edges repeating the same (finished product, material) pair
func detectDuplicateEdges(edges []entities.BOMEdge) []entities.BOMEdge {
	type key struct {
		parent, material entities.ProductID
	}
	seen := make(map[key]bool, len(edges))
	duplicates := make([]entities.BOMEdge, 0)

	for _, e := range edges {
		k := key{e.FinishedProductID, e.MaterialID}
		if seen[k] {
			duplicates = append(duplicates, e)
			continue
		}
		seen[k] = true
	}

	return duplicates
}
