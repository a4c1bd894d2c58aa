// Package catalog holds the static reference data of a simulation run:
// products, bill-of-materials edges and suppliers. A Catalog is immutable
// once built.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// Catalog indexes products, BOM edges and suppliers for lookup
type Catalog struct {
	products  []entities.Product
	edges     []entities.BOMEdge
	suppliers []entities.Supplier

	productByID  map[entities.ProductID]entities.Product
	supplierByID map[entities.SupplierID]entities.Supplier
	bomByParent  map[entities.ProductID][]entities.BOMEdge
	byMaterial   map[entities.ProductID][]entities.Supplier
}

// New validates the records and builds a Catalog. Any inconsistency is
// reported as one ErrConfiguration listing every problem found.
func New(products []entities.Product, edges []entities.BOMEdge, suppliers []entities.Supplier) (*Catalog, error) {
	result := Validate(products, edges, suppliers)
	if !result.Valid() {
		return nil, fmt.Errorf("%w: %s", entities.ErrConfiguration, strings.Join(result.Errors, "; "))
	}

	c := &Catalog{
		products:     append([]entities.Product(nil), products...),
		edges:        append([]entities.BOMEdge(nil), edges...),
		suppliers:    append([]entities.Supplier(nil), suppliers...),
		productByID:  make(map[entities.ProductID]entities.Product, len(products)),
		supplierByID: make(map[entities.SupplierID]entities.Supplier, len(suppliers)),
		bomByParent:  make(map[entities.ProductID][]entities.BOMEdge),
		byMaterial:   make(map[entities.ProductID][]entities.Supplier),
	}

	sort.SliceStable(c.products, func(i, j int) bool { return c.products[i].ID < c.products[j].ID })
	sort.SliceStable(c.suppliers, func(i, j int) bool { return c.suppliers[i].ID < c.suppliers[j].ID })

	for _, p := range c.products {
		c.productByID[p.ID] = p
	}
	for _, e := range c.edges {
		c.bomByParent[e.FinishedProductID] = append(c.bomByParent[e.FinishedProductID], e)
	}
	for _, s := range c.suppliers {
		c.supplierByID[s.ID] = s
		c.byMaterial[s.ProductID] = append(c.byMaterial[s.ProductID], s)
	}

	return c, nil
}

// Product returns the product with the given id
func (c *Catalog) Product(id entities.ProductID) (entities.Product, bool) {
	p, ok := c.productByID[id]
	return p, ok
}

// Supplier returns the supplier with the given id
func (c *Catalog) Supplier(id entities.SupplierID) (entities.Supplier, bool) {
	s, ok := c.supplierByID[id]
	return s, ok
}

// Products returns every product ordered by id
func (c *Catalog) Products() []entities.Product {
	return append([]entities.Product(nil), c.products...)
}

// FinishedProducts returns the producible products ordered by id
func (c *Catalog) FinishedProducts() []entities.Product {
	return c.filter(entities.Finished)
}

// RawMaterials returns the purchasable products ordered by id
func (c *Catalog) RawMaterials() []entities.Product {
	return c.filter(entities.Raw)
}

func (c *Catalog) filter(kind entities.ProductKind) []entities.Product {
	out := make([]entities.Product, 0, len(c.products))
	for _, p := range c.products {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// BOM returns the edges of a finished product in load order. Products
// without a bill of materials return nil.
func (c *Catalog) BOM(id entities.ProductID) []entities.BOMEdge {
	return c.bomByParent[id]
}

// Edges returns every BOM edge in load order
func (c *Catalog) Edges() []entities.BOMEdge {
	return append([]entities.BOMEdge(nil), c.edges...)
}

// Suppliers returns every supplier ordered by id
func (c *Catalog) Suppliers() []entities.Supplier {
	return append([]entities.Supplier(nil), c.suppliers...)
}

// SuppliersFor returns the suppliers offering a material ordered by id
func (c *Catalog) SuppliersFor(material entities.ProductID) []entities.Supplier {
	return append([]entities.Supplier(nil), c.byMaterial[material]...)
}
