package simulation

import (
	"go.uber.org/zap"

	"github.com/vsinha/mrpsim/pkg/domain/catalog"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/infrastructure/events"
)

const (
	bootstrapOrders   = 2
	bootstrapStockMin = 5
	bootstrapStockMax = 20
	bootstrapQtyMax   = 10
)

// Bootstrap creates a fresh run on day 1 with random opening stock for
// every raw material and two pending orders for random finished products.
func Bootstrap(cat *catalog.Catalog, cfg Config, opts ...Option) (*Simulator, error) {
	s, err := New(cat, cfg, opts...)
	if err != nil {
		return nil, err
	}

	for _, material := range cat.RawMaterials() {
		qty := entities.Quantity(bootstrapStockMin + s.rng.IntN(bootstrapStockMax-bootstrapStockMin+1))
		if err := s.inventory.Receive(material.ID, qty); err != nil {
			return nil, err
		}
		if _, err := s.eventLog.Append(events.StockInitialised(s.currentDate, material.ID, qty)); err != nil {
			return nil, err
		}
	}

	finished := cat.FinishedProducts()
	if len(finished) > 0 {
		for i := 0; i < bootstrapOrders; i++ {
			product := finished[s.rng.IntN(len(finished))]
			qty := entities.Quantity(1 + s.rng.IntN(bootstrapQtyMax))
			if _, err := s.addOrder(product, qty, events.ActionBootstrap); err != nil {
				return nil, err
			}
		}
	}

	s.logger.Info("simulation bootstrapped",
		zap.String("run_id", s.runID.String()),
		zap.String("start_date", s.currentDate.String()),
		zap.Int("raw_materials", len(cat.RawMaterials())),
		zap.Int("orders", s.orders.Len()))
	return s, nil
}
