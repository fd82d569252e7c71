// Package sim is an in-process push SDK for desktop runs. Registration
// tokens live in the OS keyring and topic subscriptions in a badger store,
// so both survive restarts the way a device registration does.
package sim

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/arko-chat/pushbridge/internal/bridge"
	"github.com/arko-chat/pushbridge/internal/credentials"
	"github.com/arko-chat/pushbridge/internal/models"
)

const DefaultAppID = "default"

var (
	ErrNotRegistered   = errors.New("sim: device is not registered")
	ErrInvalidTopic    = errors.New("sim: invalid topic name")
	ErrNotSubscribed   = errors.New("sim: not subscribed to topic")
	ErrNoHandler       = errors.New("sim: no notification handler installed")
	ErrNoClickListener = errors.New("sim: no click listener installed")
	ErrDisabled        = errors.New("sim: notifications are disabled")
)

var topicPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_.]{1,100}$`)

var (
	_ bridge.PushSDK             = (*SDK)(nil)
	_ bridge.ClickNotifier       = (*SDK)(nil)
	_ bridge.Listener            = (*SDK)(nil)
	_ bridge.NotificationToggler = (*SDK)(nil)
	_ bridge.HeartbeatConfigurer = (*SDK)(nil)
	_ bridge.IconConfigurer      = (*SDK)(nil)
)

type Option func(*SDK)

// WithLatency delays every network call.
func WithLatency(d time.Duration) Option {
	return func(s *SDK) { s.latency = d }
}

// SDK simulates the native push SDK.
type SDK struct {
	logger  *slog.Logger
	store   *topicStore
	latency time.Duration
	sfg     singleflight.Group

	mu            sync.Mutex
	appID         string
	token         string
	apiEndpoint   string
	mqttEndpoint  string
	inAppBanner   bool
	swizzling     bool
	options       bridge.NotificationOptions
	notifications bool
	listening     bool
	heartbeat     time.Duration
	icon          string
	onReceive     bridge.NotificationHandler
	onClick       bridge.ClickHandler
}

// Open opens the simulator with its topic store under dataDir. An empty
// dataDir keeps topics in memory.
func Open(dataDir string, logger *slog.Logger, opts ...Option) (*SDK, error) {
	dir := dataDir
	if dir != "" {
		dir = filepath.Join(dataDir, "sim")
	}
	store, err := openStore(dir)
	if err != nil {
		return nil, err
	}

	s := &SDK{
		logger:        logger,
		store:         store,
		appID:         DefaultAppID,
		notifications: true,
		swizzling:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.token = s.storedToken(s.appID)
	return s, nil
}

func (s *SDK) Close() error {
	return s.store.close()
}

func (s *SDK) storedToken(appID string) string {
	token, err := credentials.LoadDeviceToken(appID)
	if err != nil {
		return ""
	}
	return token
}

func (s *SDK) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register returns the existing token or issues a new one. Concurrent calls
// share one registration.
func (s *SDK) Register(ctx context.Context) (string, error) {
	s.mu.Lock()
	appID := s.appID
	s.mu.Unlock()

	v, err, _ := s.sfg.Do("register:"+appID, func() (any, error) {
		if err := s.wait(ctx); err != nil {
			return "", err
		}
		if token := s.storedToken(appID); token != "" {
			return token, nil
		}

		raw := make([]byte, 16)
		if _, err := rand.Read(raw); err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		token := hex.EncodeToString(raw)
		if err := credentials.StoreDeviceToken(appID, token); err != nil {
			return "", fmt.Errorf("store token: %w", err)
		}
		s.logger.Info("sim device registered", "app", appID)
		return token, nil
	})
	if err != nil {
		return "", err
	}

	token := v.(string)
	s.mu.Lock()
	if s.appID == appID {
		s.token = token
	}
	s.mu.Unlock()
	return token, nil
}

func (s *SDK) IsRegistered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

func (s *SDK) GetToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *SDK) Subscribe(ctx context.Context, topics ...string) error {
	for _, t := range topics {
		if !topicPattern.MatchString(t) {
			return fmt.Errorf("%w: %q", ErrInvalidTopic, t)
		}
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return ErrNotRegistered
	}
	if err := s.store.add(s.appID, topics...); err != nil {
		return err
	}
	s.logger.Debug("sim subscribed", "app", s.appID, "topics", topics)
	return nil
}

func (s *SDK) Unsubscribe(ctx context.Context, topic string) error {
	if !topicPattern.MatchString(topic) {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return ErrNotRegistered
	}
	if !s.store.has(s.appID, topic) {
		return fmt.Errorf("%w: %q", ErrNotSubscribed, topic)
	}
	if err := s.store.remove(s.appID, topic); err != nil {
		return err
	}
	s.logger.Debug("sim unsubscribed", "app", s.appID, "topic", topic)
	return nil
}

func (s *SDK) SetNotificationHandler(h bridge.NotificationHandler) {
	s.mu.Lock()
	s.onReceive = h
	s.mu.Unlock()
}

func (s *SDK) SetNotificationClickListener(h bridge.ClickHandler) {
	s.mu.Lock()
	s.onClick = h
	s.mu.Unlock()
}

func (s *SDK) SetEnterpriseConfig(apiEndpoint, mqttEndpoint string) {
	s.mu.Lock()
	s.apiEndpoint = apiEndpoint
	s.mqttEndpoint = mqttEndpoint
	s.mu.Unlock()
	s.logger.Info("sim enterprise config", "api", apiEndpoint, "mqtt", mqttEndpoint)
}

// SetAppID switches the active app. Tokens and topics are kept per app.
func (s *SDK) SetAppID(appID string) {
	if appID == "" {
		appID = DefaultAppID
	}
	token := s.storedToken(appID)

	s.mu.Lock()
	s.appID = appID
	s.token = token
	s.mu.Unlock()
}

func (s *SDK) ToggleInAppBanner(enabled bool) {
	s.mu.Lock()
	s.inAppBanner = enabled
	s.mu.Unlock()
}

func (s *SDK) ToggleMethodSwizzling(enabled bool) {
	s.mu.Lock()
	s.swizzling = enabled
	s.mu.Unlock()
}

func (s *SDK) SetCustomNotificationOptions(opts bridge.NotificationOptions) {
	s.mu.Lock()
	s.options = opts
	s.mu.Unlock()
}

func (s *SDK) Listen() {
	s.mu.Lock()
	s.listening = true
	s.mu.Unlock()
}

func (s *SDK) ToggleNotifications(enabled bool) {
	s.mu.Lock()
	s.notifications = enabled
	s.mu.Unlock()
}

func (s *SDK) SetHeartbeatInterval(ms int) {
	s.mu.Lock()
	s.heartbeat = time.Duration(ms) * time.Millisecond
	s.mu.Unlock()
}

func (s *SDK) SetNotificationIcon(resource string) {
	s.mu.Lock()
	s.icon = resource
	s.mu.Unlock()
}

// Deliver hands p to the installed notification handler as if it had
// arrived over the network.
func (s *SDK) Deliver(p models.Payload) error {
	s.mu.Lock()
	h, enabled := s.onReceive, s.notifications
	s.mu.Unlock()

	if !enabled {
		return ErrDisabled
	}
	if h == nil {
		return ErrNoHandler
	}
	h(p, func(r bridge.FetchResult) {
		s.logger.Debug("sim delivery completed", "result", r)
	})
	return nil
}

// Click reports a tap on a displayed notification.
func (s *SDK) Click(p models.Payload) error {
	s.mu.Lock()
	h := s.onClick
	s.mu.Unlock()

	if h == nil {
		return ErrNoClickListener
	}
	h(p)
	return nil
}

// Topics lists the subscriptions of the active app in order.
func (s *SDK) Topics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.list(s.appID)
}

// Settings is a snapshot of the configuration commands applied so far.
type Settings struct {
	AppID         string
	APIEndpoint   string
	MQTTEndpoint  string
	InAppBanner   bool
	Swizzling     bool
	Options       bridge.NotificationOptions
	Notifications bool
	Listening     bool
	Heartbeat     time.Duration
	Icon          string
}

func (s *SDK) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Settings{
		AppID:         s.appID,
		APIEndpoint:   s.apiEndpoint,
		MQTTEndpoint:  s.mqttEndpoint,
		InAppBanner:   s.inAppBanner,
		Swizzling:     s.swizzling,
		Options:       s.options,
		Notifications: s.notifications,
		Listening:     s.listening,
		Heartbeat:     s.heartbeat,
		Icon:          s.icon,
	}
}
