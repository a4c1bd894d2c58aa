package entities

// BOMEdge is one line of a bill of materials: how much of a raw material one
// unit of a finished product consumes
type BOMEdge struct {
	FinishedProductID ProductID `json:"finished_product_id" validate:"gt=0"`
	MaterialID        ProductID `json:"material_id"         validate:"gt=0"`
	QuantityPerUnit   Quantity  `json:"quantity"            validate:"gte=0"`
}

// Requirement returns the material quantity needed to build units of the parent
func (e BOMEdge) Requirement(units Quantity) Quantity {
	return e.QuantityPerUnit * units
}

// Requirements aggregates the material requirements of building units of a
// product with the given BOM. Zero-quantity edges contribute nothing.
func Requirements(bom []BOMEdge, units Quantity) map[ProductID]Quantity {
	reqs := make(map[ProductID]Quantity, len(bom))
	for _, edge := range bom {
		if edge.QuantityPerUnit == 0 {
			continue
		}
		reqs[edge.MaterialID] += edge.Requirement(units)
	}
	return reqs
}
