// Package api serves a simulation over HTTP. Every request that touches the
// simulation holds one lock, and mutating requests persist the snapshot
// before responding.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vsinha/mrpsim/pkg/application/dto"
	"github.com/vsinha/mrpsim/pkg/application/services/demand"
	"github.com/vsinha/mrpsim/pkg/application/services/reporting"
	"github.com/vsinha/mrpsim/pkg/application/services/simulation"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/domain/validation"
)

// Server exposes one simulation run
type Server struct {
	mu       sync.Mutex
	sim      *simulation.Simulator
	store    simulation.StateStore
	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// NewServer wraps sim. store and gatherer may be nil to disable persistence
// and the metrics endpoint.
func NewServer(sim *simulation.Simulator, store simulation.StateStore, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{sim: sim, store: store, gatherer: gatherer, logger: logger}
}

// Routes returns the router with the middleware stack attached
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		recovery(s.logger),
		middleware.RequestID,
		requestLogger(s.logger),
	)

	r.Get("/healthz", s.health)
	r.Get("/state", s.state)
	r.Get("/status", s.status)
	r.Get("/inventory", s.inventory)
	r.Get("/shortage", s.globalShortage)
	r.Get("/critical-paths", s.criticalPaths)
	r.Post("/days", s.advance)
	r.Get("/events", s.events)

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", s.listOrders)
		r.Post("/", s.createOrder)
		r.Get("/{id}/shortage", s.orderShortage)
		r.Get("/{id}/critical-path", s.orderCriticalPath)
		r.Post("/{id}/release", s.releaseOrder)
	})
	r.Route("/purchase-orders", func(r chi.Router) {
		r.Get("/", s.listPurchaseOrders)
		r.Post("/", s.placePurchaseOrder)
	})
	r.Route("/history", func(r chi.Router) {
		r.Get("/inventory", s.inventoryHistory)
		r.Get("/production", s.productionHistory)
	})

	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

type createOrderRequest struct {
	ProductID entities.ProductID `json:"product_id" validate:"gt=0"`
	Quantity  entities.Quantity  `json:"quantity"   validate:"gt=0"`
}

type purchaseOrderRequest struct {
	SupplierID entities.SupplierID `json:"supplier_id" validate:"gt=0"`
	MaterialID entities.ProductID  `json:"material_id" validate:"gt=0"`
	Quantity   entities.Quantity   `json:"quantity"    validate:"gt=0"`
}

type advanceRequest struct {
	Days   int            `json:"days"   validate:"gte=0,lte=365"`
	Demand *demand.Params `json:"demand"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	day := s.sim.Day()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "day": day})
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.sim.Snapshot())
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, reporting.Summarize(s.sim))
}

func (s *Server) inventory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.sim.Inventory())
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := s.sim.Orders()
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := make([]entities.Order, 0, len(orders))
		for _, o := range orders {
			if string(o.Status) == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decode(w, r, &req, false) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.sim.CreateOrder(req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	if !s.persist(r.Context(), w) {
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) orderShortage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.orderParam(w, r)
	if !ok {
		return
	}
	report, err := s.sim.ShortageReport(&id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) orderCriticalPath(w http.ResponseWriter, r *http.Request) {
	top, ok := intQuery(w, r, "top")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.orderParam(w, r)
	if !ok {
		return
	}
	analysis, err := s.sim.CriticalPath(id, top)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) criticalPaths(w http.ResponseWriter, r *http.Request) {
	top, ok := intQuery(w, r, "top")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	analyses := s.sim.CriticalPaths(top)
	if analyses == nil {
		analyses = make([]*dto.CriticalPathAnalysis, 0)
	}
	writeJSON(w, http.StatusOK, analyses)
}

func (s *Server) releaseOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.orderParam(w, r)
	if !ok {
		return
	}
	if err := s.sim.ReleaseOrder(id); err != nil {
		writeError(w, err)
		return
	}
	if !s.persist(r.Context(), w) {
		return
	}
	writeJSON(w, http.StatusOK, s.findOrder(id))
}

func (s *Server) globalShortage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.sim.ShortageReport(nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) listPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.sim.PurchaseOrders())
}

func (s *Server) placePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req purchaseOrderRequest
	if !decode(w, r, &req, false) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	po, err := s.sim.PlacePurchaseOrder(req.SupplierID, req.MaterialID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	if !s.persist(r.Context(), w) {
		return
	}
	writeJSON(w, http.StatusCreated, po)
}

func (s *Server) advance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if !decode(w, r, &req, true) {
		return
	}
	if req.Days == 0 {
		req.Days = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	params := s.sim.Config().Demand
	if req.Demand != nil {
		params = *req.Demand
	}

	results := make([]*dto.DayResult, 0, req.Days)
	for i := 0; i < req.Days; i++ {
		result, err := s.sim.AdvanceDay(params)
		if err != nil {
			// Days already advanced stay advanced
			if len(results) > 0 {
				s.persist(r.Context(), nil)
			}
			writeError(w, err)
			return
		}
		results = append(results, result)
	}
	if !s.persist(r.Context(), w) {
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	limit, ok := intQuery(w, r, "limit")
	if !ok {
		return
	}
	eventType := entities.EventType(r.URL.Query().Get("type"))
	if eventType != "" && !eventType.Valid() {
		writeErrorStatus(w, http.StatusBadRequest, fmt.Sprintf("unknown event type %q", eventType))
		return
	}

	s.mu.Lock()
	all := s.sim.Events()
	s.mu.Unlock()

	out := make([]entities.Event, 0, len(all))
	for _, e := range all {
		if eventType == "" || e.Type == eventType {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) inventoryHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.sim.InventoryHistory())
}

func (s *Server) productionHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.sim.ProductionLog())
}

// intQuery parses an optional non-negative query parameter
func intQuery(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeErrorStatus(w, http.StatusBadRequest, fmt.Sprintf("invalid %s %q", name, raw))
		return 0, false
	}
	return n, true
}

// orderParam parses the {id} path segment. Malformed ids are 400, ids the
// order book does not hold are 404. Callers hold s.mu.
func (s *Server) orderParam(w http.ResponseWriter, r *http.Request) (entities.OrderID, bool) {
	raw := chi.URLParam(r, "id")
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		writeErrorStatus(w, http.StatusBadRequest, fmt.Sprintf("invalid order id %q", raw))
		return 0, false
	}
	id := entities.OrderID(n)
	if s.findOrder(id) == nil {
		writeErrorStatus(w, http.StatusNotFound, fmt.Sprintf("order %d not found", id))
		return 0, false
	}
	return id, true
}

func (s *Server) findOrder(id entities.OrderID) *entities.Order {
	for _, o := range s.sim.Orders() {
		if o.ID == id {
			return &o
		}
	}
	return nil
}

// persist saves the snapshot when a store is configured. With a nil
// writer failures are only logged.
func (s *Server) persist(ctx context.Context, w http.ResponseWriter) bool {
	if s.store == nil {
		return true
	}
	if err := simulation.Save(ctx, s.store, s.sim); err != nil {
		s.logger.Error("failed to persist state", zap.Error(err))
		if w != nil {
			writeError(w, err)
		}
		return false
	}
	return true
}

// decode reads a JSON body into dst and validates it. An empty body is
// accepted when optional is set.
func decode(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !(optional && errors.Is(err, io.EOF)) {
		writeErrorStatus(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	if err := validation.Struct(dst); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:  fmt.Sprintf("%s: %s", entities.ErrValidation, validation.Describe(err)),
			Fields: validation.FieldErrors(err),
		})
		return false
	}
	return true
}
