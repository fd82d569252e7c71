package bridge

import (
	"context"

	"github.com/arko-chat/pushbridge/internal/models"
)

// FetchResult is reported back to the platform once a background delivery
// has been handled.
type FetchResult int

const (
	FetchNewData FetchResult = iota
	FetchNoData
	FetchFailed
)

func (r FetchResult) String() string {
	switch r {
	case FetchNewData:
		return "newData"
	case FetchNoData:
		return "noData"
	default:
		return "failed"
	}
}

// NotificationHandler receives background deliveries. done must be called
// once the payload has been handled.
type NotificationHandler func(payload models.Payload, done func(FetchResult))

// ClickHandler receives notifications the user tapped.
type ClickHandler func(payload models.Payload)

// NotificationOptions is a bitmask of authorization options requested from
// the platform.
type NotificationOptions int

const (
	OptionBadge NotificationOptions = 1 << iota
	OptionAlert
	OptionSound
	OptionCriticalAlert
)

// CriticalAlertOptions are the options requested by setCriticalAlertOption.
const CriticalAlertOptions = OptionBadge | OptionAlert | OptionSound | OptionCriticalAlert

// PushSDK is the native push SDK the bridge wraps. Network operations block
// until the SDK reports completion; everything else is synchronous and
// cannot fail.
type PushSDK interface {
	// Register returns the device token.
	Register(ctx context.Context) (string, error)

	IsRegistered() bool

	// GetToken returns the platform token, "" when unavailable.
	GetToken() string

	Subscribe(ctx context.Context, topics ...string) error
	Unsubscribe(ctx context.Context, topic string) error

	SetNotificationHandler(h NotificationHandler)

	// SetEnterpriseConfig points the SDK at a self-hosted backend. Empty
	// endpoints restore the defaults.
	SetEnterpriseConfig(apiEndpoint, mqttEndpoint string)

	SetAppID(appID string)
	ToggleInAppBanner(enabled bool)
	ToggleMethodSwizzling(enabled bool)
	SetCustomNotificationOptions(opts NotificationOptions)
}

// ClickNotifier is implemented by SDKs that report taps separately from
// background deliveries.
type ClickNotifier interface {
	SetNotificationClickListener(h ClickHandler)
}

// Listener is implemented by SDKs that keep their own connection which the
// host may ask to restart.
type Listener interface {
	Listen()
}

type NotificationToggler interface {
	ToggleNotifications(enabled bool)
}

type HeartbeatConfigurer interface {
	SetHeartbeatInterval(ms int)
}

type IconConfigurer interface {
	SetNotificationIcon(resource string)
}

// Platform is the host OS surface the bridge needs besides the push SDK.
type Platform interface {
	// ShowAlert displays a modal alert with a single OK action.
	ShowAlert(title string, message string) error

	SetBadgeCount(count int) error

	// IsAppInactive reports whether the application is not in the
	// foreground, i.e. a delivery now was most likely opened by a tap.
	IsAppInactive() bool
}
