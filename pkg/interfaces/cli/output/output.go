package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vsinha/mrpsim/pkg/application/dto"
	"github.com/vsinha/mrpsim/pkg/domain/catalog"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// Supported formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Printer renders command results as text tables or indented JSON
type Printer struct {
	w       io.Writer
	format  string
	catalog *catalog.Catalog
}

// New creates a printer. The catalog resolves product and supplier names
// in text output.
func New(w io.Writer, format string, cat *catalog.Catalog) (*Printer, error) {
	switch format {
	case FormatText, FormatJSON:
	default:
		return nil, fmt.Errorf("%w: unsupported output format: %s", entities.ErrConfiguration, format)
	}
	return &Printer{w: w, format: format, catalog: cat}, nil
}

// Status is everything the status command prints
type Status struct {
	Summary        dto.StatusSummary                        `json:"summary"`
	Inventory      map[entities.ProductID]entities.Quantity `json:"inventory"`
	Orders         []entities.Order                         `json:"orders"`
	PurchaseOrders []entities.PurchaseOrder                 `json:"purchase_orders"`
}

// History is the inventory and production series
type History struct {
	Inventory  []entities.InventorySnapshot  `json:"inventory"`
	Production []entities.ProductionLogEntry `json:"production"`
}

func (p *Printer) jsonOut(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(data))
	return err
}

// Message prints a one-line confirmation. JSON output prints v instead.
func (p *Printer) Message(v any, format string, args ...any) error {
	if p.format == FormatJSON {
		return p.jsonOut(v)
	}
	_, err := fmt.Fprintf(p.w, format+"\n", args...)
	return err
}

// DayResults prints one block per advanced day
func (p *Printer) DayResults(results []*dto.DayResult) error {
	if p.format == FormatJSON {
		return p.jsonOut(results)
	}
	for _, r := range results {
		fmt.Fprintf(p.w, "📅 Day %d (%s)\n", r.Day, r.Date)
		fmt.Fprintf(p.w, "  Capacity used: %d\n", r.CapacityUsed)

		for _, po := range r.Received {
			fmt.Fprintf(p.w, "  Received PO %d: %d x %s from %s\n",
				po.ID, po.Quantity, p.productName(po.ProductID), p.supplierName(po.SupplierID))
		}
		for _, line := range r.Production {
			done := ""
			if line.Completed {
				done = " (completed)"
			}
			fmt.Fprintf(p.w, "  Produced %d x %s for order %d%s\n",
				line.Units, p.productName(line.ProductID), line.OrderID, done)
		}
		for _, o := range r.NewOrders {
			fmt.Fprintf(p.w, "  New order %d: %d x %s due %s\n",
				o.ID, o.Quantity, p.productName(o.ProductID), o.DeliveryDate)
		}
		fmt.Fprintln(p.w)
	}
	return nil
}

// Order prints a single customer order
func (p *Printer) Order(o entities.Order) error {
	if p.format == FormatJSON {
		return p.jsonOut(o)
	}
	p.ordersTable([]entities.Order{o})
	return nil
}

// PurchaseOrder prints a single purchase order
func (p *Printer) PurchaseOrder(po entities.PurchaseOrder) error {
	if p.format == FormatJSON {
		return p.jsonOut(po)
	}
	p.purchaseTable([]entities.PurchaseOrder{po})
	return nil
}

// ShortageReport prints shortage lines and purchase suggestions
func (p *Printer) ShortageReport(report dto.ShortageReport) error {
	if p.format == FormatJSON {
		return p.jsonOut(report)
	}

	if report.OrderID != nil {
		fmt.Fprintf(p.w, "⚠️  Shortage for order %d\n", *report.OrderID)
	} else {
		fmt.Fprintf(p.w, "⚠️  Shortage for all pending orders\n")
	}
	if len(report.Lines) == 0 {
		fmt.Fprintf(p.w, "No materials short\n")
		return nil
	}

	fmt.Fprintf(p.w, "%-6s %-20s %-10s %-10s\n", "ID", "Material", "Short", "In Transit")
	fmt.Fprintf(p.w, "%-6s %-20s %-10s %-10s\n", "------", "--------------------", "----------", "----------")
	for _, line := range report.Lines {
		fmt.Fprintf(p.w, "%-6d %-20s %-10d %-10d\n", line.MaterialID, line.MaterialName, line.Shortage, line.InTransit)
	}
	fmt.Fprintln(p.w)

	if len(report.Suggestions) == 0 {
		return nil
	}
	fmt.Fprintf(p.w, "🛒 Suggested purchases:\n")
	fmt.Fprintf(p.w, "%-20s %-20s %-8s %-10s %-12s %-12s\n",
		"Material", "Supplier", "Qty", "Unit Cost", "Total", "Arrives")
	fmt.Fprintf(p.w, "%-20s %-20s %-8s %-10s %-12s %-12s\n",
		"--------------------", "--------------------", "--------", "----------", "------------", "------------")
	for _, s := range report.Suggestions {
		fmt.Fprintf(p.w, "%-20s %-20s %-8d %-10s %-12s %-12s\n",
			s.MaterialName, s.SupplierName, s.Quantity, s.UnitCost.StringFixed(2), s.TotalCost.StringFixed(2), s.ExpectedArrival)
	}
	return nil
}

// CriticalPaths prints one material table per analysed order
func (p *Printer) CriticalPaths(analyses []*dto.CriticalPathAnalysis) error {
	if p.format == FormatJSON {
		if analyses == nil {
			analyses = []*dto.CriticalPathAnalysis{}
		}
		return p.jsonOut(analyses)
	}
	if len(analyses) == 0 {
		fmt.Fprintf(p.w, "No open orders\n")
		return nil
	}

	for _, a := range analyses {
		fmt.Fprintf(p.w, "🎯 %s\n", a.Summary())
		fmt.Fprintf(p.w, "%-20s %-8s %-8s %-11s %-10s %-10s %-12s\n",
			"Material", "Needed", "Short", "Source", "Lead", "Effective", "Ready")
		fmt.Fprintf(p.w, "%-20s %-8s %-8s %-11s %-10s %-10s %-12s\n",
			"--------------------", "--------", "--------", "-----------", "----------", "----------", "------------")
		for _, path := range a.TopPaths {
			ready := "-"
			if !path.ReadyDate.IsZero() {
				ready = path.ReadyDate.String()
			}
			fmt.Fprintf(p.w, "%-20s %-8d %-8d %-11s %-10d %-10d %-12s\n",
				path.MaterialName, path.RequiredQty, path.Shortage, path.Source,
				path.TotalLeadTime, path.EffectiveLeadTime, ready)
		}
		if hidden := a.TotalPaths - len(a.TopPaths); hidden > 0 {
			fmt.Fprintf(p.w, "  ... %d more\n", hidden)
		}
		fmt.Fprintln(p.w)
	}
	return nil
}

// Status prints the summary followed by inventory, orders and purchases
func (p *Printer) Status(s Status) error {
	if p.format == FormatJSON {
		return p.jsonOut(s)
	}

	sum := s.Summary
	fmt.Fprintf(p.w, "📊 Simulation Status\n")
	fmt.Fprintf(p.w, "====================\n\n")
	fmt.Fprintf(p.w, "Run: %s\n", sum.RunID)
	fmt.Fprintf(p.w, "Day: %d (%s)\n", sum.Day, sum.Date)
	fmt.Fprintf(p.w, "Orders: %s\n", statusCounts(sum.OrdersByStatus))
	fmt.Fprintf(p.w, "Late orders: %d\n", sum.LateOrders)
	fmt.Fprintf(p.w, "Open purchase orders: %d\n", sum.OpenPurchaseOrders)
	fmt.Fprintf(p.w, "Units produced: %d\n", sum.UnitsProduced)
	fmt.Fprintf(p.w, "Materials short: %d\n", sum.ShortMaterials)
	fmt.Fprintf(p.w, "Committed spend: %s\n", sum.CommittedSpend.StringFixed(2))
	fmt.Fprintf(p.w, "Events: %d\n\n", sum.Events)

	fmt.Fprintf(p.w, "📦 Inventory:\n")
	fmt.Fprintf(p.w, "%-6s %-20s %-10s %-8s\n", "ID", "Product", "Type", "On Hand")
	fmt.Fprintf(p.w, "%-6s %-20s %-10s %-8s\n", "------", "--------------------", "----------", "--------")
	for _, id := range sortedIDs(s.Inventory) {
		fmt.Fprintf(p.w, "%-6d %-20s %-10s %-8d\n", id, p.productName(id), p.productKind(id), s.Inventory[id])
	}
	fmt.Fprintln(p.w)

	if len(s.Orders) > 0 {
		fmt.Fprintf(p.w, "📋 Orders:\n")
		p.ordersTable(s.Orders)
		fmt.Fprintln(p.w)
	}
	if len(s.PurchaseOrders) > 0 {
		fmt.Fprintf(p.w, "🚚 Purchase Orders:\n")
		p.purchaseTable(s.PurchaseOrders)
		fmt.Fprintln(p.w)
	}
	if len(sum.SupplierSpend) > 0 {
		fmt.Fprintf(p.w, "💰 Spend by supplier:\n")
		fmt.Fprintf(p.w, "%-20s %-6s %-8s %-12s\n", "Supplier", "POs", "Units", "Total")
		fmt.Fprintf(p.w, "%-20s %-6s %-8s %-12s\n", "--------------------", "------", "--------", "------------")
		for _, spend := range sum.SupplierSpend {
			fmt.Fprintf(p.w, "%-20s %-6d %-8d %-12s\n", spend.SupplierName, spend.PurchaseOrders, spend.Units, spend.Total.StringFixed(2))
		}
	}
	return nil
}

// History prints end-of-day inventory totals next to daily production
func (p *Printer) History(h History) error {
	if p.format == FormatJSON {
		return p.jsonOut(h)
	}

	produced := make(map[string]entities.Quantity, len(h.Production))
	for _, entry := range h.Production {
		produced[entry.Date.String()] = entry.Total()
	}

	fmt.Fprintf(p.w, "%-12s %-10s %-10s\n", "Date", "Stock", "Produced")
	fmt.Fprintf(p.w, "%-12s %-10s %-10s\n", "------------", "----------", "----------")
	for _, snap := range h.Inventory {
		var stock entities.Quantity
		for _, qty := range snap.Inventory {
			stock += qty
		}
		fmt.Fprintf(p.w, "%-12s %-10d %-10d\n", snap.Date, stock, produced[snap.Date.String()])
	}
	return nil
}

// Events prints the event log, oldest first
func (p *Printer) Events(events []entities.Event) error {
	if p.format == FormatJSON {
		return p.jsonOut(events)
	}
	fmt.Fprintf(p.w, "%-6s %-12s %-11s %s\n", "ID", "Date", "Type", "Description")
	fmt.Fprintf(p.w, "%-6s %-12s %-11s %s\n", "------", "------------", "-----------", "-----------")
	for _, e := range events {
		fmt.Fprintf(p.w, "%-6d %-12s %-11s %s\n", e.ID, e.SimDate, e.Type, e.Description)
	}
	return nil
}

func (p *Printer) ordersTable(orders []entities.Order) {
	fmt.Fprintf(p.w, "%-6s %-20s %-8s %-8s %-10s %-12s %-12s\n",
		"ID", "Product", "Qty", "Left", "Status", "Created", "Due")
	fmt.Fprintf(p.w, "%-6s %-20s %-8s %-8s %-10s %-12s %-12s\n",
		"------", "--------------------", "--------", "--------", "----------", "------------", "------------")
	for _, o := range orders {
		fmt.Fprintf(p.w, "%-6d %-20s %-8d %-8d %-10s %-12s %-12s\n",
			o.ID, p.productName(o.ProductID), o.InitialQuantity, o.Quantity, o.Status, o.CreationDate, o.DeliveryDate)
	}
}

func (p *Printer) purchaseTable(pos []entities.PurchaseOrder) {
	fmt.Fprintf(p.w, "%-6s %-20s %-20s %-8s %-12s %-10s %-12s\n",
		"ID", "Supplier", "Material", "Qty", "Total", "Status", "Arrives")
	fmt.Fprintf(p.w, "%-6s %-20s %-20s %-8s %-12s %-10s %-12s\n",
		"------", "--------------------", "--------------------", "--------", "------------", "----------", "------------")
	for _, po := range pos {
		fmt.Fprintf(p.w, "%-6d %-20s %-20s %-8d %-12s %-10s %-12s\n",
			po.ID, p.supplierName(po.SupplierID), p.productName(po.ProductID), po.Quantity,
			po.TotalCost().StringFixed(2), po.Status, po.ExpectedArrival)
	}
}

func (p *Printer) productName(id entities.ProductID) string {
	if p.catalog != nil {
		if product, ok := p.catalog.Product(id); ok {
			return product.Name
		}
	}
	return fmt.Sprintf("#%d", id)
}

func (p *Printer) productKind(id entities.ProductID) string {
	if p.catalog != nil {
		if product, ok := p.catalog.Product(id); ok {
			return string(product.Kind)
		}
	}
	return ""
}

func (p *Printer) supplierName(id entities.SupplierID) string {
	if p.catalog != nil {
		if supplier, ok := p.catalog.Supplier(id); ok {
			return supplier.Name
		}
	}
	return fmt.Sprintf("#%d", id)
}

func statusCounts(counts map[entities.OrderStatus]int) string {
	statuses := []entities.OrderStatus{entities.OrderPending, entities.OrderReleased, entities.OrderCompleted}
	parts := make([]string, 0, len(statuses))
	for _, status := range statuses {
		parts = append(parts, fmt.Sprintf("%d %s", counts[status], status))
	}
	return strings.Join(parts, ", ")
}

func sortedIDs(levels map[entities.ProductID]entities.Quantity) []entities.ProductID {
	ids := make([]entities.ProductID, 0, len(levels))
	for id := range levels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
