// Package jsoncatalog loads a catalog from a single JSON configuration file
// with products, boms and suppliers arrays.
package jsoncatalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vsinha/mrpsim/pkg/domain/catalog"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// Document is the on-disk layout of a catalog file
type Document struct {
	Products  []entities.Product  `json:"products"`
	BOMs      []entities.BOMEdge  `json:"boms"`
	Suppliers []entities.Supplier `json:"suppliers"`
}

// LoadFile reads and validates the catalog at path
func LoadFile(path string) (*catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open catalog file %s: %v", entities.ErrConfiguration, path, err)
	}
	cat, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// Load decodes a catalog document from r
func Load(r io.Reader) (*catalog.Catalog, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: malformed catalog: %v", entities.ErrConfiguration, err)
	}
	return catalog.New(doc.Products, doc.BOMs, doc.Suppliers)
}

// Encode writes cat as an indented catalog document
func Encode(w io.Writer, cat *catalog.Catalog) error {
	doc := Document{
		Products:  cat.Products(),
		BOMs:      cat.Edges(),
		Suppliers: cat.Suppliers(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
