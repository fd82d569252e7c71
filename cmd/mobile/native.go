package mobile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/arko-chat/pushbridge/internal/bridge"
	"github.com/arko-chat/pushbridge/internal/models"
)

// Fetch results passed to Completion.Complete.
const (
	FetchNewData = int(bridge.FetchNewData)
	FetchNoData  = int(bridge.FetchNoData)
	FetchFailed  = int(bridge.FetchFailed)
)

// NativePushSDK is implemented by the native push SDK wrapper. Calls that
// hit the network may block. Topic lists are JSON string arrays. Methods a
// platform has no equivalent for are no-ops.
type NativePushSDK interface {
	Register() (string, error)
	IsRegistered() bool
	GetToken() string
	Subscribe(topicsJSON string) error
	Unsubscribe(topic string) error
	SetNotificationReceiver(r *NotificationReceiver)
	SetEnterpriseConfig(apiEndpoint, mqttEndpoint string)
	SetAppID(appID string)
	ToggleInAppBanner(enabled bool)
	ToggleMethodSwizzling(enabled bool)
	SetCustomNotificationOptions(options int)
	Listen()
	ToggleNotifications(enabled bool)
	SetHeartbeatInterval(ms int)
	SetNotificationIcon(resource string)
}

// NativePlatform exposes the app-level services of the host OS.
type NativePlatform interface {
	ShowAlert(title, message string) error
	SetBadgeCount(count int) error
	IsAppInactive() bool
}

// Completion is called by Go once a background notification is handled.
type Completion interface {
	Complete(result int)
}

// NotificationReceiver is handed to the native SDK, which reports incoming
// notifications and taps through it. Payloads are JSON objects.
type NotificationReceiver struct {
	mu        sync.Mutex
	onReceive bridge.NotificationHandler
	onClick   bridge.ClickHandler
}

func (r *NotificationReceiver) handlers() (bridge.NotificationHandler, bridge.ClickHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.onReceive, r.onClick
}

func (r *NotificationReceiver) OnNotification(payloadJSON string, completion Completion) error {
	p, err := models.ParsePayload([]byte(payloadJSON))
	if err != nil {
		if completion != nil {
			completion.Complete(FetchFailed)
		}
		return fmt.Errorf("parse notification: %w", err)
	}
	onReceive, _ := r.handlers()
	if onReceive == nil {
		if completion != nil {
			completion.Complete(FetchNoData)
		}
		return nil
	}
	onReceive(p, func(res bridge.FetchResult) {
		if completion != nil {
			completion.Complete(int(res))
		}
	})
	return nil
}

func (r *NotificationReceiver) OnNotificationClick(payloadJSON string) error {
	p, err := models.ParsePayload([]byte(payloadJSON))
	if err != nil {
		return fmt.Errorf("parse notification: %w", err)
	}
	if _, onClick := r.handlers(); onClick != nil {
		onClick(p)
	}
	return nil
}

var (
	_ bridge.PushSDK             = (*nativeSDK)(nil)
	_ bridge.ClickNotifier       = (*nativeSDK)(nil)
	_ bridge.Listener            = (*nativeSDK)(nil)
	_ bridge.NotificationToggler = (*nativeSDK)(nil)
	_ bridge.HeartbeatConfigurer = (*nativeSDK)(nil)
	_ bridge.IconConfigurer      = (*nativeSDK)(nil)
)

// nativeSDK adapts NativePushSDK to bridge.PushSDK.
type nativeSDK struct {
	native   NativePushSDK
	receiver *NotificationReceiver
}

func newNativeSDK(native NativePushSDK) *nativeSDK {
	s := &nativeSDK{native: native, receiver: &NotificationReceiver{}}
	native.SetNotificationReceiver(s.receiver)
	return s
}

// blocking runs fn on its own goroutine so ctx can abandon it. The native
// call itself cannot be interrupted.
func blocking[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (s *nativeSDK) Register(ctx context.Context) (string, error) {
	return blocking(ctx, s.native.Register)
}

func (s *nativeSDK) IsRegistered() bool { return s.native.IsRegistered() }
func (s *nativeSDK) GetToken() string { return s.native.GetToken() }

func (s *nativeSDK) Subscribe(ctx context.Context, topics ...string) error {
	data, err := json.Marshal(topics)
	if err != nil {
		return err
	}
	_, err = blocking(ctx, func() (struct{}, error) {
		return struct{}{}, s.native.Subscribe(string(data))
	})
	return err
}

func (s *nativeSDK) Unsubscribe(ctx context.Context, topic string) error {
	_, err := blocking(ctx, func() (struct{}, error) {
		return struct{}{}, s.native.Unsubscribe(topic)
	})
	return err
}

func (s *nativeSDK) SetNotificationHandler(h bridge.NotificationHandler) {
	s.receiver.mu.Lock()
	s.receiver.onReceive = h
	s.receiver.mu.Unlock()
}

func (s *nativeSDK) SetNotificationClickListener(h bridge.ClickHandler) {
	s.receiver.mu.Lock()
	s.receiver.onClick = h
	s.receiver.mu.Unlock()
}

func (s *nativeSDK) SetEnterpriseConfig(apiEndpoint, mqttEndpoint string) {
	s.native.SetEnterpriseConfig(apiEndpoint, mqttEndpoint)
}

func (s *nativeSDK) SetAppID(appID string) { s.native.SetAppID(appID) }
func (s *nativeSDK) ToggleInAppBanner(enabled bool) { s.native.ToggleInAppBanner(enabled) }

func (s *nativeSDK) ToggleMethodSwizzling(enabled bool) {
	s.native.ToggleMethodSwizzling(enabled)
}

func (s *nativeSDK) SetCustomNotificationOptions(opts bridge.NotificationOptions) {
	s.native.SetCustomNotificationOptions(int(opts))
}

func (s *nativeSDK) Listen() { s.native.Listen() }
func (s *nativeSDK) ToggleNotifications(enabled bool) { s.native.ToggleNotifications(enabled) }
func (s *nativeSDK) SetHeartbeatInterval(ms int) { s.native.SetHeartbeatInterval(ms) }
func (s *nativeSDK) SetNotificationIcon(resource string) {
	s.native.SetNotificationIcon(resource)
}
