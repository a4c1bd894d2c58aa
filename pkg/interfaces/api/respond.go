package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vsinha/mrpsim/pkg/application/services/simulation"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// writeJSON writes v as JSON with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error     string                                   `json:"error"`
	Fields    map[string]string                        `json:"fields,omitempty"`
	Shortages map[entities.ProductID]entities.Quantity `json:"shortages,omitempty"`
}

func writeErrorStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// writeError maps err to an HTTP status code and writes a JSON error body.
// Wrapped sentinels are matched with errors.Is.
func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}
	var blocked *simulation.ReleaseBlockedError
	if errors.As(err, &blocked) {
		body.Shortages = blocked.Shortages
	}
	writeJSON(w, statusFor(err), body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrValidation):
		return http.StatusUnprocessableEntity // 422
	case errors.Is(err, entities.ErrInvalidState):
		return http.StatusConflict // 409
	case errors.Is(err, entities.ErrConfiguration):
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

// requestLogger logs each request once it completes
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int64("latency_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

// recovery turns handler panics into 500 responses
func recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.Any("error", rec),
						zap.String("stack", string(debug.Stack())))
					writeErrorStatus(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
