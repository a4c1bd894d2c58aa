package dto

import (
	"errors"

	"github.com/google/uuid"

	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// ErrNoSnapshot is returned by state stores that hold no saved state yet
var ErrNoSnapshot = errors.New("no saved snapshot")

// Snapshot is the complete persisted state of a simulation run. Slices and
// maps are never nil so that encoding is stable across round trips.
type Snapshot struct {
	RunID            uuid.UUID                                `json:"run_id"`
	Day              int                                      `json:"day"`
	CurrentDate      entities.Date                            `json:"current_date"`
	Inventory        map[entities.ProductID]entities.Quantity `json:"inventory"`
	Orders           []entities.Order                         `json:"orders"`
	PurchaseOrders   []entities.PurchaseOrder                 `json:"purchase_orders"`
	Events           []entities.Event                         `json:"events"`
	InventoryHistory []entities.InventorySnapshot             `json:"inventory_history"`
	ProductionLog    []entities.ProductionLogEntry            `json:"production_log"`
}

// Normalize replaces nil collections with empty ones
func (s *Snapshot) Normalize() {
	if s.Inventory == nil {
		s.Inventory = make(map[entities.ProductID]entities.Quantity)
	}
	if s.Orders == nil {
		s.Orders = make([]entities.Order, 0)
	}
	if s.PurchaseOrders == nil {
		s.PurchaseOrders = make([]entities.PurchaseOrder, 0)
	}
	if s.Events == nil {
		s.Events = make([]entities.Event, 0)
	}
	if s.InventoryHistory == nil {
		s.InventoryHistory = make([]entities.InventorySnapshot, 0)
	}
	if s.ProductionLog == nil {
		s.ProductionLog = make([]entities.ProductionLogEntry, 0)
	}
	for i := range s.InventoryHistory {
		if s.InventoryHistory[i].Inventory == nil {
			s.InventoryHistory[i].Inventory = make(map[entities.ProductID]entities.Quantity)
		}
	}
	for i := range s.ProductionLog {
		if s.ProductionLog[i].Produced == nil {
			s.ProductionLog[i].Produced = make(map[entities.ProductID]entities.Quantity)
		}
	}
}
