// Package metrics exposes simulation activity as Prometheus collectors fed
// from the event log.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/infrastructure/events"
)

const namespace = "mrpsim"

// Recorder is an event handler that updates collectors for every event
type Recorder struct {
	events          *prometheus.CounterVec
	unitsProduced   *prometheus.CounterVec
	unitsReceived   *prometheus.CounterVec
	ordersCreated   *prometheus.CounterVec
	purchasesPlaced prometheus.Counter
	currentDay      prometheus.Gauge
}

// NewRecorder creates the collectors and registers them on reg
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Events appended to the simulation log.",
		}, []string{"type", "action"}),
		unitsProduced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_produced_total",
			Help:      "Finished units produced.",
		}, []string{"product_id"}),
		unitsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_received_total",
			Help:      "Raw material units received from suppliers.",
		}, []string{"product_id"}),
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Customer orders entered, by origin.",
		}, []string{"origin"}),
		purchasesPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchase_orders_placed_total",
			Help:      "Purchase orders placed with suppliers.",
		}),
		currentDay: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_day",
			Help:      "Last simulated day processed.",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.events, r.unitsProduced, r.unitsReceived, r.ordersCreated, r.purchasesPlaced, r.currentDay,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Verify interface compliance
var _ events.EventHandler = (*Recorder)(nil)

func (r *Recorder) CanHandle(eventType entities.EventType) bool {
	return eventType.Valid()
}

func (r *Recorder) Handle(event entities.Event) error {
	action := events.Action(event)
	r.events.WithLabelValues(string(event.Type), action).Inc()

	switch event.Type {
	case entities.EventProduction:
		if event.ProductID != nil && event.Quantity != nil {
			r.unitsProduced.WithLabelValues(productLabel(*event.ProductID)).Add(float64(*event.Quantity))
		}
	case entities.EventPurchase:
		switch action {
		case events.ActionPlaced:
			r.purchasesPlaced.Inc()
		case events.ActionReceived:
			if event.ProductID != nil && event.Quantity != nil {
				r.unitsReceived.WithLabelValues(productLabel(*event.ProductID)).Add(float64(*event.Quantity))
			}
		}
	case entities.EventOrder:
		if action != events.ActionReleased {
			r.ordersCreated.WithLabelValues(action).Inc()
		}
	case entities.EventStock:
		if action == events.ActionDayProcessed {
			if day, err := strconv.Atoi(event.Extra["day"]); err == nil {
				r.currentDay.Set(float64(day))
			}
		}
	}
	return nil
}

// SetDay seeds the day gauge, used after restoring a saved run
func (r *Recorder) SetDay(day int) {
	r.currentDay.Set(float64(day))
}

func productLabel(id entities.ProductID) string {
	return strconv.Itoa(int(id))
}
