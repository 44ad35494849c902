// Package pubsub fans out events to in-process subscribers.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened to the payload.
type EventType string

const (
	LoadedEvent      EventType = "loaded"
	RegisteredEvent  EventType = "registered"
	InvalidatedEvent EventType = "invalidated"
)

// Event is a published payload with its type and publish time.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out event channels that close with ctx.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher sends events to every current subscriber.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
