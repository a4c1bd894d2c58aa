package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/mrpsim/pkg/domain/catalog"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// Scenario file names inside a catalog directory
const (
	ProductsFile  = "products.csv"
	BOMFile       = "bom.csv"
	SuppliersFile = "suppliers.csv"
)

var (
	productsHeader  = []string{"id", "name", "type", "description"}
	bomHeader       = []string{"finished_product_id", "material_id", "quantity"}
	suppliersHeader = []string{"id", "name", "product_id", "unit_cost", "lead_time", "min_order_qty", "max_order_qty"}
)

// Loader handles loading catalog data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadCatalog reads products.csv, bom.csv and suppliers.csv from dir and
// builds a validated catalog
func (l *Loader) LoadCatalog(dir string) (*catalog.Catalog, error) {
	products, err := l.LoadProducts(filepath.Join(dir, ProductsFile))
	if err != nil {
		return nil, err
	}
	edges, err := l.LoadBOM(filepath.Join(dir, BOMFile))
	if err != nil {
		return nil, err
	}
	suppliers, err := l.LoadSuppliers(filepath.Join(dir, SuppliersFile))
	if err != nil {
		return nil, err
	}
	return catalog.New(products, edges, suppliers)
}

// LoadProducts loads products from a CSV file
func (l *Loader) LoadProducts(filename string) ([]entities.Product, error) {
	records, err := readRecords(filename, "products", productsHeader, true)
	if err != nil {
		return nil, err
	}

	products := make([]entities.Product, 0, len(records))
	for i, record := range records {
		id, err := parseInt(record[0], "id")
		if err != nil {
			return nil, rowError("products", i, err)
		}
		products = append(products, entities.Product{
			ID:          entities.ProductID(id),
			Name:        strings.TrimSpace(record[1]),
			Kind:        entities.ProductKind(strings.ToLower(strings.TrimSpace(record[2]))),
			Description: strings.TrimSpace(record[3]),
		})
	}
	return products, nil
}

// LoadBOM loads bill of materials edges from a CSV file
func (l *Loader) LoadBOM(filename string) ([]entities.BOMEdge, error) {
	records, err := readRecords(filename, "BOM", bomHeader, false)
	if err != nil {
		return nil, err
	}

	edges := make([]entities.BOMEdge, 0, len(records))
	for i, record := range records {
		parent, err := parseInt(record[0], "finished_product_id")
		if err != nil {
			return nil, rowError("BOM", i, err)
		}
		material, err := parseInt(record[1], "material_id")
		if err != nil {
			return nil, rowError("BOM", i, err)
		}
		qty, err := parseInt(record[2], "quantity")
		if err != nil {
			return nil, rowError("BOM", i, err)
		}
		edges = append(edges, entities.BOMEdge{
			FinishedProductID: entities.ProductID(parent),
			MaterialID:        entities.ProductID(material),
			QuantityPerUnit:   entities.Quantity(qty),
		})
	}
	return edges, nil
}

// LoadSuppliers loads suppliers from a CSV file. Empty order quantity
// limits mean no limit.
func (l *Loader) LoadSuppliers(filename string) ([]entities.Supplier, error) {
	records, err := readRecords(filename, "suppliers", suppliersHeader, false)
	if err != nil {
		return nil, err
	}

	suppliers := make([]entities.Supplier, 0, len(records))
	for i, record := range records {
		supplier, err := parseSupplier(record)
		if err != nil {
			return nil, rowError("suppliers", i, err)
		}
		suppliers = append(suppliers, supplier)
	}
	return suppliers, nil
}

func parseSupplier(record []string) (entities.Supplier, error) {
	id, err := parseInt(record[0], "id")
	if err != nil {
		return entities.Supplier{}, err
	}
	product, err := parseInt(record[2], "product_id")
	if err != nil {
		return entities.Supplier{}, err
	}
	cost, err := decimal.NewFromString(strings.TrimSpace(record[3]))
	if err != nil {
		return entities.Supplier{}, fmt.Errorf("invalid unit_cost: %s", record[3])
	}
	lead, err := parseInt(record[4], "lead_time")
	if err != nil {
		return entities.Supplier{}, err
	}
	minQty, err := parseOptionalInt(record[5], "min_order_qty")
	if err != nil {
		return entities.Supplier{}, err
	}
	maxQty, err := parseOptionalInt(record[6], "max_order_qty")
	if err != nil {
		return entities.Supplier{}, err
	}

	return entities.Supplier{
		ID:           entities.SupplierID(id),
		Name:         strings.TrimSpace(record[1]),
		ProductID:    entities.ProductID(product),
		UnitCost:     cost,
		LeadTimeDays: int(lead),
		MinOrderQty:  entities.Quantity(minQty),
		MaxOrderQty:  entities.Quantity(maxQty),
	}, nil
}

// Helper functions for parsing CSV records

func readRecords(filename, kind string, expectedHeader []string, requireRows bool) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s file %s: %v", entities.ErrConfiguration, kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s CSV: %v", entities.ErrConfiguration, kind, err)
	}

	if len(records) == 0 || (requireRows && len(records) < 2) {
		return nil, fmt.Errorf("%w: %s CSV must have header and at least one data row", entities.ErrConfiguration, kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%w: %s CSV header mismatch. Expected: %v, Got: %v", entities.ErrConfiguration, kind, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%w: %s CSV row %d: expected %d columns, got %d",
				entities.ErrConfiguration, kind, i+2, len(expectedHeader), len(record))
		}
	}
	return rows, nil
}

func rowError(kind string, index int, err error) error {
	return fmt.Errorf("%w: %s CSV row %d: %v", entities.ErrConfiguration, kind, index+2, err)
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseInt(value, field string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", field, value)
	}
	return n, nil
}

func parseOptionalInt(value, field string) (int64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	return parseInt(value, field)
}
