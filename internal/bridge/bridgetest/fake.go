// Package bridgetest provides in-memory implementations of the native
// contract for tests.
package bridgetest

import (
	"context"
	"slices"
	"sync"

	"github.com/arko-chat/pushbridge/internal/bridge"
	"github.com/arko-chat/pushbridge/internal/models"
)

var (
	_ bridge.PushSDK             = (*SDK)(nil)
	_ bridge.ClickNotifier       = (*SDK)(nil)
	_ bridge.Listener            = (*SDK)(nil)
	_ bridge.NotificationToggler = (*SDK)(nil)
	_ bridge.HeartbeatConfigurer = (*SDK)(nil)
	_ bridge.IconConfigurer      = (*SDK)(nil)
	_ bridge.Platform            = (*Platform)(nil)
)

// SDK records every call. Set the *Err fields to make network calls fail.
type SDK struct {
	mu sync.Mutex

	Token       string
	Registered  bool
	RegisterErr error
	SubErr      error
	UnsubErr    error

	// Gate, when non-nil, blocks network calls until it is closed.
	Gate chan struct{}

	Calls []string

	Topics         []string
	Unsubscribed   []string
	AppID          string
	APIEndpoint    string
	MQTTEndpoint   string
	InAppBanner    *bool
	Swizzling      *bool
	Options        bridge.NotificationOptions
	Notifications  *bool
	HeartbeatMS    int
	Icon           string
	ListenCalls    int
	notification   bridge.NotificationHandler
	click          bridge.ClickHandler
}

func (s *SDK) record(name string) {
	s.mu.Lock()
	s.Calls = append(s.Calls, name)
	s.mu.Unlock()
}

func (s *SDK) wait(ctx context.Context) error {
	if s.Gate == nil {
		return nil
	}
	select {
	case <-s.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CallsSnapshot returns a copy of the recorded call names.
func (s *SDK) CallsSnapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.Calls)
}

func (s *SDK) Register(ctx context.Context) (string, error) {
	s.record("Register")
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RegisterErr != nil {
		return "", s.RegisterErr
	}
	s.Registered = true
	return s.Token, nil
}

func (s *SDK) IsRegistered() bool {
	s.record("IsRegistered")
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Registered
}

func (s *SDK) GetToken() string {
	s.record("GetToken")
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Registered {
		return ""
	}
	return s.Token
}

func (s *SDK) Subscribe(ctx context.Context, topics ...string) error {
	s.record("Subscribe")
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SubErr != nil {
		return s.SubErr
	}
	s.Topics = append(s.Topics, topics...)
	return nil
}

func (s *SDK) Unsubscribe(ctx context.Context, topic string) error {
	s.record("Unsubscribe")
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UnsubErr != nil {
		return s.UnsubErr
	}
	s.Unsubscribed = append(s.Unsubscribed, topic)
	return nil
}

func (s *SDK) SetNotificationHandler(h bridge.NotificationHandler) {
	s.record("SetNotificationHandler")
	s.mu.Lock()
	s.notification = h
	s.mu.Unlock()
}

func (s *SDK) SetNotificationClickListener(h bridge.ClickHandler) {
	s.record("SetNotificationClickListener")
	s.mu.Lock()
	s.click = h
	s.mu.Unlock()
}

func (s *SDK) SetEnterpriseConfig(apiEndpoint, mqttEndpoint string) {
	s.record("SetEnterpriseConfig")
	s.mu.Lock()
	s.APIEndpoint, s.MQTTEndpoint = apiEndpoint, mqttEndpoint
	s.mu.Unlock()
}

func (s *SDK) SetAppID(appID string) {
	s.record("SetAppID")
	s.mu.Lock()
	s.AppID = appID
	s.mu.Unlock()
}

func (s *SDK) ToggleInAppBanner(enabled bool) {
	s.record("ToggleInAppBanner")
	s.mu.Lock()
	s.InAppBanner = &enabled
	s.mu.Unlock()
}

func (s *SDK) ToggleMethodSwizzling(enabled bool) {
	s.record("ToggleMethodSwizzling")
	s.mu.Lock()
	s.Swizzling = &enabled
	s.mu.Unlock()
}

func (s *SDK) SetCustomNotificationOptions(opts bridge.NotificationOptions) {
	s.record("SetCustomNotificationOptions")
	s.mu.Lock()
	s.Options = opts
	s.mu.Unlock()
}

func (s *SDK) Listen() {
	s.record("Listen")
	s.mu.Lock()
	s.ListenCalls++
	s.mu.Unlock()
}

func (s *SDK) ToggleNotifications(enabled bool) {
	s.record("ToggleNotifications")
	s.mu.Lock()
	s.Notifications = &enabled
	s.mu.Unlock()
}

func (s *SDK) SetHeartbeatInterval(ms int) {
	s.record("SetHeartbeatInterval")
	s.mu.Lock()
	s.HeartbeatMS = ms
	s.mu.Unlock()
}

func (s *SDK) SetNotificationIcon(resource string) {
	s.record("SetNotificationIcon")
	s.mu.Lock()
	s.Icon = resource
	s.mu.Unlock()
}

// Deliver invokes the installed background handler as the SDK would. It
// reports false when no handler is installed.
func (s *SDK) Deliver(p models.Payload, done func(bridge.FetchResult)) bool {
	s.mu.Lock()
	h := s.notification
	s.mu.Unlock()
	if h == nil {
		return false
	}
	if done == nil {
		done = func(bridge.FetchResult) {}
	}
	h(p, done)
	return true
}

// Click invokes the installed click listener.
func (s *SDK) Click(p models.Payload) bool {
	s.mu.Lock()
	h := s.click
	s.mu.Unlock()
	if h == nil {
		return false
	}
	h(p)
	return true
}

// Platform is a recording bridge.Platform.
type Platform struct {
	mu       sync.Mutex
	Inactive bool
	Alerts   [][2]string
	Badge    int
}

func (p *Platform) ShowAlert(title, message string) error {
	p.mu.Lock()
	p.Alerts = append(p.Alerts, [2]string{title, message})
	p.mu.Unlock()
	return nil
}

func (p *Platform) SetBadgeCount(count int) error {
	p.mu.Lock()
	p.Badge = count
	p.mu.Unlock()
	return nil
}

func (p *Platform) IsAppInactive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Inactive
}

func (p *Platform) SetInactive(v bool) {
	p.mu.Lock()
	p.Inactive = v
	p.mu.Unlock()
}

func (p *Platform) AlertsSnapshot() [][2]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.Alerts)
}

func (p *Platform) BadgeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Badge
}
