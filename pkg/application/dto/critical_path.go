package dto

import (
	"fmt"

	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// Ways a material requirement gets covered
const (
	SourceStock     = "stock"
	SourceInTransit = "in_transit"
	SourcePurchase  = "purchase"
	SourceNone      = "none"
)

// MaterialPath is the route by which one material of an order becomes
// available for release
type MaterialPath struct {
	MaterialID   entities.ProductID `json:"material_id"`
	MaterialName string             `json:"material_name"`
	RequiredQty  entities.Quantity  `json:"required"`
	Shortage     entities.Quantity  `json:"shortage"`
	InTransit    entities.Quantity  `json:"in_transit"`
	Source       string             `json:"source"`
	// SupplierID is set when the shortage has to be bought
	SupplierID *entities.SupplierID `json:"supplier_id,omitempty"`
	// TotalLeadTime is the best supplier lead time ignoring stock
	TotalLeadTime int `json:"total_lead_time"`
	// EffectiveLeadTime is the wait in days after stock and deliveries
	EffectiveLeadTime int           `json:"effective_lead_time"`
	ReadyDate         entities.Date `json:"ready_date"`
}

// Unsourced reports whether no supplier can cover the shortage
func (p MaterialPath) Unsourced() bool {
	return p.Source == SourceNone
}

// CriticalPathAnalysis ranks the materials of one order by how long they
// hold up its release
type CriticalPathAnalysis struct {
	OrderID            entities.OrderID   `json:"order_id"`
	ProductID          entities.ProductID `json:"product_id"`
	Quantity           entities.Quantity  `json:"quantity"`
	AnalysisDate       entities.Date      `json:"analysis_date"`
	DeliveryDate       entities.Date      `json:"delivery_date"`
	CriticalPath       *MaterialPath      `json:"critical_path,omitempty"`
	TopPaths           []MaterialPath     `json:"top_paths"`
	TotalPaths         int                `json:"total_paths"`
	EarliestRelease    entities.Date      `json:"earliest_release"`
	EarliestCompletion entities.Date      `json:"earliest_completion"`
	AtRisk             bool               `json:"at_risk"`
}

// Summary returns a one-line description of the critical path
func (a *CriticalPathAnalysis) Summary() string {
	if a.CriticalPath == nil {
		return fmt.Sprintf("order %d needs no materials", a.OrderID)
	}
	cp := a.CriticalPath
	if cp.Unsourced() {
		return fmt.Sprintf("order %d is blocked: %s has no supplier", a.OrderID, cp.MaterialName)
	}
	summary := fmt.Sprintf("order %d critical path: %s, %d days (%d effective), release %s",
		a.OrderID, cp.MaterialName, cp.TotalLeadTime, cp.EffectiveLeadTime, a.EarliestRelease)
	if a.AtRisk {
		summary += ", at risk"
	}
	return summary
}
