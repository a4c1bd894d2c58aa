package catalog

import (
	"fmt"

	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// AuditResult lists catalog entries that are valid but likely mistakes.
// None of them stop a simulation from running.
type AuditResult struct {
	// OrphanedMaterials are raw materials no BOM consumes
	OrphanedMaterials []entities.ProductID
	// UnsourcedMaterials are consumed raw materials no supplier sells
	UnsourcedMaterials []entities.ProductID
	// EmptyBOMs are finished products built from nothing
	EmptyBOMs []entities.ProductID
}

// Warnings renders each finding as one line
func (a AuditResult) Warnings() []string {
	warnings := make([]string, 0, len(a.OrphanedMaterials)+len(a.UnsourcedMaterials)+len(a.EmptyBOMs))
	for _, id := range a.OrphanedMaterials {
		warnings = append(warnings, fmt.Sprintf("raw material %d is not used by any bom", id))
	}
	for _, id := range a.UnsourcedMaterials {
		warnings = append(warnings, fmt.Sprintf("raw material %d has no supplier and cannot be replenished", id))
	}
	for _, id := range a.EmptyBOMs {
		warnings = append(warnings, fmt.Sprintf("finished product %d has an empty bom", id))
	}
	return warnings
}

// Audit inspects the catalog for orphaned, unsourced and empty entries
func (c *Catalog) Audit() AuditResult {
	used := make(map[entities.ProductID]bool)
	for _, e := range c.edges {
		if e.QuantityPerUnit > 0 {
			used[e.MaterialID] = true
		}
	}

	var result AuditResult
	for _, p := range c.products {
		switch p.Kind {
		case entities.Raw:
			if !used[p.ID] {
				result.OrphanedMaterials = append(result.OrphanedMaterials, p.ID)
			} else if len(c.byMaterial[p.ID]) == 0 {
				result.UnsourcedMaterials = append(result.UnsourcedMaterials, p.ID)
			}
		case entities.Finished:
			if len(c.BOM(p.ID)) == 0 {
				result.EmptyBOMs = append(result.EmptyBOMs, p.ID)
			}
		}
	}
	return result
}
