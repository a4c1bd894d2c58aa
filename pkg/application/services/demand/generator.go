// Package demand synthesises customer orders for finished products.
package demand

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"go.uber.org/zap"

	"github.com/vsinha/mrpsim/pkg/domain/catalog"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/domain/repositories"
	"github.com/vsinha/mrpsim/pkg/infrastructure/events"
)

// Params controls the size and lead time of generated orders. The limits on
// Mean and BaseLeadTime are entities.MaxOrderQuantity and
// entities.MaxLeadTimeDays.
type Params struct {
	Mean         float64 `json:"mean"           validate:"gte=0,lte=1000000"`
	StdDev       float64 `json:"stddev"         validate:"gte=0,lte=1000000"`
	BaseLeadTime int     `json:"base_lead_time" validate:"gte=0,lte=3650"`
	OrdersPerDay int     `json:"orders_per_day" validate:"gte=0,lte=1000"`
}

// DefaultParams matches the default slider settings of the dashboard
func DefaultParams() Params {
	return Params{Mean: 5, StdDev: 2, BaseLeadTime: 3, OrdersPerDay: 1}
}

// Generator creates pending orders from a seeded random source
type Generator struct {
	catalog  *catalog.Catalog
	orders   repositories.OrderRepository
	eventLog events.EventStore
	rng      *rand.Rand
	logger   *zap.Logger
}

func NewGenerator(
	cat *catalog.Catalog,
	orders repositories.OrderRepository,
	eventLog events.EventStore,
	rng *rand.Rand,
	logger *zap.Logger,
) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{catalog: cat, orders: orders, eventLog: eventLog, rng: rng, logger: logger}
}

// DrawQuantity samples a normal quantity, truncated, floored at one unit and
// capped at entities.MaxOrderQuantity
func DrawQuantity(rng *rand.Rand, mean, stddev float64) entities.Quantity {
	sample := mean + rng.NormFloat64()*math.Abs(stddev)
	if math.IsNaN(sample) || sample < 1 {
		return 1
	}
	if sample >= float64(entities.MaxOrderQuantity) {
		return entities.MaxOrderQuantity
	}
	return entities.Quantity(sample)
}

// Generate creates params.OrdersPerDay orders dated today. With zero
// OrdersPerDay or no finished products in the catalog nothing is created.
func (g *Generator) Generate(today entities.Date, params Params) ([]entities.Order, error) {
	created := make([]entities.Order, 0)

	finished := g.catalog.FinishedProducts()
	if len(finished) == 0 {
		g.logger.Debug("no finished products, skipping demand generation")
		return created, nil
	}

	for i := 0; i < params.OrdersPerDay; i++ {
		quantity := DrawQuantity(g.rng, params.Mean, params.StdDev)
		product := finished[g.rng.IntN(len(finished))]

		extraDays := int(quantity / 5)
		delivery := entities.EstimateDeliveryDate(today, params.BaseLeadTime, quantity)

		order, err := entities.NewOrder(g.orders.NextID(), product.ID, quantity, today, delivery)
		if err != nil {
			return nil, fmt.Errorf("generating order: %w", err)
		}
		if err := g.orders.Add(order); err != nil {
			return nil, err
		}

		extra := map[string]string{
			"product_name":   product.Name,
			"base_lead_time": strconv.Itoa(params.BaseLeadTime),
			"extra_days":     strconv.Itoa(extraDays),
			"total_days":     strconv.Itoa(params.BaseLeadTime + extraDays),
		}
		if _, err := g.eventLog.Append(events.OrderCreated(today, order, events.ActionGenerated, extra)); err != nil {
			return nil, err
		}
		created = append(created, *order)

		g.logger.Debug("order generated",
			zap.Int("order_id", int(order.ID)),
			zap.Int("product_id", int(product.ID)),
			zap.Int64("quantity", int64(quantity)),
			zap.String("delivery_date", delivery.String()))
	}

	return created, nil
}
