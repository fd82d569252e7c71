// Package desktop provides the bridge.Platform implementations used when
// the bridge runs as a desktop process.
package desktop

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/arko-chat/pushbridge/internal/bridge"
)

var ErrWindowClosed = errors.New("desktop: window closed")

var _ bridge.Platform = (*Headless)(nil)

// Headless is the platform for runs without a bridge-owned window. Alerts
// go to the log.
type Headless struct {
	logger *slog.Logger

	mu       sync.Mutex
	badge    int
	inactive bool
}

func NewHeadless(logger *slog.Logger) *Headless {
	return &Headless{logger: logger}
}

func (h *Headless) ShowAlert(title, message string) error {
	h.logger.Info("alert", "title", title, "message", message)
	return nil
}

func (h *Headless) SetBadgeCount(count int) error {
	h.mu.Lock()
	h.badge = count
	h.mu.Unlock()
	h.logger.Debug("badge updated", "count", count)
	return nil
}

func (h *Headless) BadgeCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.badge
}

func (h *Headless) IsAppInactive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.inactive
}

// SetInactive marks the app as backgrounded, so received notifications are
// treated as launch taps.
func (h *Headless) SetInactive(inactive bool) {
	h.mu.Lock()
	h.inactive = inactive
	h.mu.Unlock()
}
