package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	PortfolioChanged  EventType = "PORTFOLIO_CHANGED"
	SnapshotCreated   EventType = "SNAPSHOT_CREATED"
	DividendAnnounced EventType = "DIVIDEND_ANNOUNCED"
	ErrorOccurred     EventType = "ERROR_OCCURRED"
)

// PortfolioTopic returns the per-account portfolio topic name
func PortfolioTopic(accountID int64) string {
	return fmt.Sprintf("portfolio/%d", accountID)
}

// DividendTopic is the dividend announcement topic
const DividendTopic = "dividends"

// Event represents a system event
type Event struct {
	ID        string                 `json:"id"`
	Topic     string                 `json:"topic"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Manager is an in-process notification bus. Publishing is best-effort:
// a subscriber with a full buffer misses the event rather than blocking
// the publisher.
type Manager struct {
	log  zerolog.Logger
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewManager creates a new event manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log:  log.With().Str("service", "events").Logger(),
		subs: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a subscriber with the given buffer size and returns
// the event channel plus a cancel function that removes the subscription.
func (m *Manager) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	m.mu.Lock()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if _, ok := m.subs[ch]; ok {
			delete(m.subs, ch)
			close(ch)
		}
		m.mu.Unlock()
	}

	return ch, cancel
}

// Publish emits an event on a topic
func (m *Manager) Publish(topic string, eventType EventType, data map[string]interface{}) {
	event := Event{
		ID:        uuid.NewString(),
		Topic:     topic,
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for ch := range m.subs {
		select {
		case ch <- event:
		default:
			m.log.Warn().
				Str("topic", topic).
				Str("event_type", string(eventType)).
				Msg("Subscriber buffer full, event dropped")
		}
	}

	m.log.Debug().
		Str("topic", topic).
		Str("event_type", string(eventType)).
		Str("event_id", event.ID).
		Msg("Event published")
}

// PublishError emits an error event
func (m *Manager) PublishError(topic string, err error, context map[string]interface{}) {
	data := map[string]interface{}{
		"error":   err.Error(),
		"context": context,
	}
	m.Publish(topic, ErrorOccurred, data)
}
