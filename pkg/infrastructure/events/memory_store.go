package events

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// InMemoryEventStore is the append-only event log. Subscribers are notified
// synchronously, in subscription order, after each append, or on Flush while
// the store is held.
type InMemoryEventStore struct {
	allEvents   []entities.Event
	subscribers map[entities.EventType][]EventHandler
	held        bool
	pending     []notification
	mutex       sync.RWMutex
	logger      *zap.Logger
}

type notification struct {
	handlers []EventHandler
	event    entities.Event
}

func NewInMemoryEventStore(logger *zap.Logger) *InMemoryEventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventStore{
		allEvents:   make([]entities.Event, 0),
		subscribers: make(map[entities.EventType][]EventHandler),
		logger:      logger,
	}
}

var _ EventStore = (*InMemoryEventStore)(nil)

// Append assigns the next sequence id and records the event
func (s *InMemoryEventStore) Append(event entities.Event) (entities.Event, error) {
	if !event.Type.Valid() {
		return entities.Event{}, fmt.Errorf("%w: unknown event type %q", entities.ErrValidation, event.Type)
	}

	s.mutex.Lock()
	event.ID = entities.EventID(len(s.allEvents) + 1)
	s.allEvents = append(s.allEvents, event)
	handlers := append([]EventHandler(nil), s.subscribers[event.Type]...)
	if s.held {
		s.pending = append(s.pending, notification{handlers: handlers, event: event})
		s.mutex.Unlock()
		return event, nil
	}
	s.mutex.Unlock()

	s.notifySubscribers(handlers, event)

	return event, nil
}

// Hold queues notifications for events appended from now on
func (s *InMemoryEventStore) Hold() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.held = true
}

// Flush delivers the queued notifications in append order and stops holding
func (s *InMemoryEventStore) Flush() {
	s.mutex.Lock()
	pending := s.pending
	s.pending = nil
	s.held = false
	s.mutex.Unlock()

	for _, n := range pending {
		s.notifySubscribers(n.handlers, n.event)
	}
}

// Discard drops the queued notifications and stops holding
func (s *InMemoryEventStore) Discard() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.pending = nil
	s.held = false
}

func (s *InMemoryEventStore) All() []entities.Event {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return append([]entities.Event(nil), s.allEvents...)
}

func (s *InMemoryEventStore) ByType(eventType entities.EventType) []entities.Event {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events := make([]entities.Event, 0)
	for _, e := range s.allEvents {
		if e.Type == eventType {
			events = append(events, e)
		}
	}
	return events
}

// From returns the events after the first position entries
func (s *InMemoryEventStore) From(position int) []entities.Event {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if position < 0 {
		position = 0
	}
	if position >= len(s.allEvents) {
		return []entities.Event{}
	}
	return append([]entities.Event(nil), s.allEvents[position:]...)
}

func (s *InMemoryEventStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.allEvents)
}

// Load replaces the log with restored events. Ids must run 1..n in order.
// Subscribers are not notified.
func (s *InMemoryEventStore) Load(events []entities.Event) error {
	for i, e := range events {
		if e.ID != entities.EventID(i+1) {
			return fmt.Errorf("%w: event at position %d has id %d, expected %d", entities.ErrValidation, i, e.ID, i+1)
		}
		if !e.Type.Valid() {
			return fmt.Errorf("%w: event %d has unknown type %q", entities.ErrValidation, e.ID, e.Type)
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.allEvents = append(make([]entities.Event, 0, len(events)), events...)
	return nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []entities.EventType, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		if !eventType.Valid() {
			return fmt.Errorf("%w: cannot subscribe to unknown event type %q", entities.ErrValidation, eventType)
		}
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}

	return nil
}

// Unsubscribe removes handler by identity. HandlerFunc values are not
// comparable and cannot be removed.
func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	if _, ok := handler.(HandlerFunc); ok {
		return fmt.Errorf("%w: HandlerFunc subscribers cannot be unsubscribed", entities.ErrInvalidState)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		newHandlers := make([]EventHandler, 0, len(handlers))
		for _, h := range handlers {
			if h != handler {
				newHandlers = append(newHandlers, h)
			}
		}
		s.subscribers[eventType] = newHandlers
	}

	return nil
}

// notifySubscribers runs handlers inline. Handler failures are logged and
// never fail the append.
func (s *InMemoryEventStore) notifySubscribers(handlers []EventHandler, event entities.Event) {
	for _, handler := range handlers {
		if !handler.CanHandle(event.Type) {
			continue
		}
		if err := handler.Handle(event); err != nil {
			s.logger.Warn("event handler failed",
				zap.Int("event_id", int(event.ID)),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
}
