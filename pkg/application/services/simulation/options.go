package simulation

import (
	"math/rand/v2"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vsinha/mrpsim/pkg/application/services/demand"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/infrastructure/events"
)

// DefaultDailyCapacity is the production capacity used when none is configured
const DefaultDailyCapacity entities.Quantity = 10

// Config holds the tunable parameters of a run
type Config struct {
	DailyCapacity entities.Quantity `validate:"gte=0"`
	Demand        demand.Params
	// StartDate is the calendar day of day 1. Zero means today.
	StartDate entities.Date
	// Seed fixes the random source. Zero picks a random seed.
	Seed uint64
}

// DefaultConfig returns the configuration of a stock run
func DefaultConfig() Config {
	return Config{
		DailyCapacity: DefaultDailyCapacity,
		Demand:        demand.DefaultParams(),
	}
}

type subscription struct {
	types   []entities.EventType
	handler events.EventHandler
}

// Option configures a Simulator
type Option func(*Simulator)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRand injects the random source used for demand and bootstrap
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulator) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithRunID fixes the identity of a fresh run
func WithRunID(id uuid.UUID) Option {
	return func(s *Simulator) {
		s.runID = id
	}
}

// WithEventHandler subscribes handler to the event log. With no types it
// receives every event.
func WithEventHandler(handler events.EventHandler, types ...entities.EventType) Option {
	return func(s *Simulator) {
		if len(types) == 0 {
			types = events.AllTypes()
		}
		s.subscriptions = append(s.subscriptions, subscription{types: types, handler: handler})
	}
}

// NewRand builds a PCG source from seed. Zero draws a random seed.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed))
}
