// Package events publishes domain events (registrations, workflow
// transitions, application submissions) to a message broker. Publishing
// is best-effort: a broker failure is logged, never surfaced to the
// request that triggered the event.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Event is a broker-agnostic domain event payload.
type Event struct {
	Name   string            `json:"name"`
	At     time.Time         `json:"at"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Backend delivers raw payloads to a broker.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Emitter is the narrow interface services use to emit events.
type Emitter interface {
	Emit(ctx context.Context, name string, fields map[string]string)
}

// Nop discards every event. Used when no broker is configured and in
// tests.
type Nop struct{}

func (Nop) Emit(context.Context, string, map[string]string) {}

// Bus emits events to a single named channel on a backend.
type Bus struct {
	backend Backend
	channel string
}

// NewBus constructs a Bus publishing to the named channel.
func NewBus(backend Backend, channel string) *Bus {
	return &Bus{backend: backend, channel: channel}
}

// Emit publishes the event, logging on failure.
func (b *Bus) Emit(ctx context.Context, name string, fields map[string]string) {
	data, err := json.Marshal(Event{Name: name, At: time.Now(), Fields: fields})
	if err != nil {
		log.Printf("events: marshal %s: %v", name, err)
		return
	}
	if _, err := b.backend.Publish(ctx, b.channel, data, map[string]string{"event": name}); err != nil {
		log.Printf("events: publish %s: %v", name, err)
	}
}

// Close closes the underlying backend.
func (b *Bus) Close() error {
	return b.backend.Close()
}
