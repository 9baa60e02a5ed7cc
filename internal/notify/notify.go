// Package notify delivers decode payloads to registered consumers based on
// the attribute sets they subscribed to.
package notify

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/i474232898/tianqi-aggregator/internal/convert"
)

// Callback receives the full payload of a decode pass.
type Callback func(payload convert.Payload)

// Consumer is one registered subscriber. Consumers persist for the client's
// lifetime and are looked up by attribute name to prevent duplicates.
type Consumer struct {
	// ID is an opaque handle for the embedding application.
	ID uuid.UUID
	// Attr is the converter attribute this consumer was created for.
	Attr string
	// Subscribed is the attribute set this consumer cares about.
	Subscribed map[string]struct{}

	deliver Callback
}

// Notifier tracks consumers and fans out changed payloads.
type Notifier struct {
	mu        sync.RWMutex
	consumers map[string]*Consumer
	log       *slog.Logger
}

func NewNotifier(log *slog.Logger) *Notifier {
	return &Notifier{
		consumers: make(map[string]*Consumer),
		log:       log,
	}
}

// Register creates a consumer for attr with the given subscription set. A
// consumer already registered for attr is returned unchanged.
func (n *Notifier) Register(attr string, subscribed map[string]struct{}, cb Callback) *Consumer {
	n.mu.Lock()
	defer n.mu.Unlock()
	if existing, ok := n.consumers[attr]; ok {
		return existing
	}
	c := &Consumer{
		ID:         uuid.New(),
		Attr:       attr,
		Subscribed: subscribed,
		deliver:    cb,
	}
	n.consumers[attr] = c
	return c
}

// Lookup returns the consumer registered for attr.
func (n *Notifier) Lookup(attr string) (*Consumer, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	c, ok := n.consumers[attr]
	return c, ok
}

// Notify delivers the payload to every consumer whose subscribed set
// intersects the payload's keys. Interested consumers receive the full
// payload, not just the intersection, so sibling attributes emitted as a
// group arrive atomically. An empty payload is a no-op.
func (n *Notifier) Notify(payload convert.Payload) {
	if len(payload) == 0 {
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, c := range n.consumers {
		if !intersects(c.Subscribed, payload) {
			continue
		}
		if n.log != nil {
			n.log.Debug("notifying consumer", "attr", c.Attr, "keys", len(payload))
		}
		c.deliver(payload)
	}
}

func intersects(subscribed map[string]struct{}, payload convert.Payload) bool {
	for attr := range subscribed {
		if _, ok := payload[attr]; ok {
			return true
		}
	}
	return false
}
