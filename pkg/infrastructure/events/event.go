package events

import "github.com/vsinha/mrpsim/pkg/domain/entities"

type EventHandler interface {
	Handle(event entities.Event) error
	CanHandle(eventType entities.EventType) bool
}

type EventStore interface {
	Append(event entities.Event) (entities.Event, error)
	All() []entities.Event
	ByType(eventType entities.EventType) []entities.Event
	From(position int) []entities.Event
	Len() int
	Load(events []entities.Event) error
	Subscribe(eventTypes []entities.EventType, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
	// Hold queues subscriber notifications until Flush or Discard
	Hold()
	Flush()
	Discard()
}

// HandlerFunc adapts a function to an EventHandler that accepts every type
type HandlerFunc func(event entities.Event) error

func (f HandlerFunc) Handle(event entities.Event) error {
	return f(event)
}

func (f HandlerFunc) CanHandle(entities.EventType) bool {
	return true
}

// AllTypes lists every event type, for subscribers that want the full log
func AllTypes() []entities.EventType {
	return []entities.EventType{
		entities.EventPurchase,
		entities.EventStock,
		entities.EventOrder,
		entities.EventProduction,
	}
}
