// Package relay forwards notifications from the push SDK to the host's event
// listener and buffers the one that launched the app until a listener
// attaches.
//
// A Relay is not safe for concurrent use. The bridge drives it exclusively
// from the main loop.
package relay

import (
	"encoding/json"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/arko-chat/pushbridge/internal/bridge"
	"github.com/arko-chat/pushbridge/internal/models"
	"github.com/arko-chat/pushbridge/internal/protocol"
)

// Sink is the host's event listener.
type Sink interface {
	// Send delivers one notification as a JSON string.
	Send(event string)
	// SendError delivers a structured error in place of a notification.
	SendError(err *protocol.Error)
}

type State int

const (
	NoListener State = iota
	ListenerActive
)

func (s State) String() string {
	if s == ListenerActive {
		return "listenerActive"
	}
	return "noListener"
}

type Option func(*Relay)

// WithDedup suppresses events whose payload repeats a value of key already
// relayed, remembering the last size values.
func WithDedup(key string, size int) Option {
	return func(r *Relay) {
		if key == "" || size <= 0 {
			return
		}
		cache, err := lru.New[string, struct{}](size)
		if err != nil {
			r.logger.Warn("relay dedup disabled", "err", err)
			return
		}
		r.dedupKey = key
		r.seen = cache
	}
}

type Relay struct {
	logger *slog.Logger

	sink Sink

	pending    models.Payload
	hasPending bool
	// startup is true until the first listener attaches. Notifications
	// arriving without a listener are only buffered during that window.
	startup bool

	dedupKey string
	seen     *lru.Cache[string, struct{}]
}

func New(logger *slog.Logger, opts ...Option) *Relay {
	r := &Relay{
		logger:  logger,
		startup: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Relay) State() State {
	if r.sink != nil {
		return ListenerActive
	}
	return NoListener
}

// Pending returns the buffered startup notification, if any.
func (r *Relay) Pending() (models.Payload, bool) {
	return r.pending, r.hasPending
}

// Received handles a background delivery. inactive reports whether the app
// was not in the foreground, in which case the delivery counts as a tap.
func (r *Relay) Received(payload models.Payload, inactive bool, done func(bridge.FetchResult)) {
	tagged := payload.Tagged(inactive)
	r.logger.Debug("notification received",
		"state", r.State(),
		"clicked", inactive,
		"keys", payload.Len(),
	)

	if r.sink == nil {
		r.buffer(tagged)
		complete(done)
		return
	}

	if !r.push(tagged) {
		// Completion is withheld when the payload could not be encoded.
		return
	}
	complete(done)
}

// Clicked handles a notification the user tapped.
func (r *Relay) Clicked(payload models.Payload) {
	tagged := payload.Tagged(true)
	r.logger.Debug("notification clicked", "state", r.State(), "keys", payload.Len())

	if r.sink == nil {
		r.buffer(tagged)
		return
	}
	r.push(tagged)
}

// Attach makes sink the active listener, replacing any previous one, and
// replays the startup notification to it.
func (r *Relay) Attach(sink Sink) {
	if r.sink != nil && r.sink != sink {
		r.logger.Debug("relay listener replaced")
	}
	r.sink = sink
	r.startup = false

	if !r.hasPending {
		return
	}

	pending := r.pending
	r.pending = models.Payload{}
	r.hasPending = false

	r.logger.Info("replaying startup notification")
	r.push(pending)
}

// Detach removes sink if it is still the active listener.
func (r *Relay) Detach(sink Sink) {
	if r.sink == nil || r.sink != sink {
		return
	}
	r.sink = nil
	r.logger.Debug("relay listener detached")
}

func (r *Relay) buffer(tagged models.Payload) {
	if !r.startup {
		r.logger.Warn("notification dropped: no listener attached")
		return
	}
	if r.hasPending {
		r.logger.Debug("startup notification overwritten")
	}
	r.pending = tagged
	r.hasPending = true
}

// push encodes tagged and hands it to the sink. It reports whether the
// payload could be encoded.
func (r *Relay) push(tagged models.Payload) bool {
	data, err := json.Marshal(tagged)
	if err != nil {
		r.logger.Error("notification serialization failed", "err", err)
		r.sink.SendError(protocol.PushyError(fmt.Errorf("serialize notification: %w", err)))
		return false
	}

	if r.duplicate(tagged) {
		r.logger.Debug("duplicate notification suppressed", "key", r.dedupKey)
		return true
	}

	r.sink.Send(string(data))
	return true
}

func (r *Relay) duplicate(p models.Payload) bool {
	if r.seen == nil {
		return false
	}
	v, ok := p.Get(r.dedupKey)
	if !ok || v == nil {
		return false
	}
	id := fmt.Sprint(v)
	if r.seen.Contains(id) {
		return true
	}
	r.seen.Add(id, struct{}{})
	return false
}

func complete(done func(bridge.FetchResult)) {
	if done != nil {
		done(bridge.FetchNewData)
	}
}
