package entities

// ProductKind distinguishes purchasable raw materials from producible finished goods
type ProductKind string

const (
	Raw      ProductKind = "raw"
	Finished ProductKind = "finished"
)

// Valid reports whether the kind is one of the known kinds
func (k ProductKind) Valid() bool {
	return k == Raw || k == Finished
}

// Product represents a catalog entry, either a raw material or a finished good
type Product struct {
	ID          ProductID   `json:"id"                    validate:"gt=0"`
	Name        string      `json:"name"                  validate:"required"`
	Kind        ProductKind `json:"type"                  validate:"oneof=raw finished"`
	Description string      `json:"description,omitempty"`
}

// IsFinished reports whether the product is a finished good
func (p Product) IsFinished() bool {
	return p.Kind == Finished
}

// IsRaw reports whether the product is a raw material
func (p Product) IsRaw() bool {
	return p.Kind == Raw
}
