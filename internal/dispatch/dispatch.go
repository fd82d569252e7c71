// Package dispatch maps host commands onto push SDK calls.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/arko-chat/pushbridge/internal/bridge"
	"github.com/arko-chat/pushbridge/internal/protocol"
)

// Reply delivers the outcome of one command. Exactly one of value or err is
// meaningful; err is always a *protocol.Error.
type Reply func(value string, err *protocol.Error)

// Poster runs fn on the main loop.
type Poster interface {
	Post(fn func()) bool
}

type handlerFunc func(ctx context.Context, args protocol.Args, reply Reply)

type Option func(*Dispatcher)

// WithStrict makes unknown commands fail with UNSUPPORTED instead of never
// being answered.
func WithStrict(strict bool) Option {
	return func(d *Dispatcher) {
		d.strict = strict
	}
}

type Dispatcher struct {
	holder   *bridge.Holder
	platform bridge.Platform
	poster   Poster
	logger   *slog.Logger
	strict   bool

	routes map[string]handlerFunc
}

func New(
	holder *bridge.Holder,
	platform bridge.Platform,
	poster Poster,
	logger *slog.Logger,
	opts ...Option,
) *Dispatcher {
	d := &Dispatcher{
		holder:   holder,
		platform: platform,
		poster:   poster,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.routes = map[string]handlerFunc{
		protocol.MethodListen:                   d.listen,
		protocol.MethodRegister:                 d.register,
		protocol.MethodIsRegistered:             d.isRegistered,
		protocol.MethodGetToken:                 d.getToken,
		protocol.MethodGetAPNsToken:             d.getToken,
		protocol.MethodSubscribe:                d.subscribe,
		protocol.MethodMultiSubscribe:           d.multiSubscribe,
		protocol.MethodMultiTopicSubscribe:      d.multiSubscribe,
		protocol.MethodUnsubscribe:              d.unsubscribe,
		protocol.MethodNotify:                   d.notify,
		protocol.MethodToggleInAppBanner:        d.toggleInAppBanner,
		protocol.MethodSetCriticalAlertOption:   d.setCriticalAlertOption,
		protocol.MethodSetEnterpriseConfig:      d.setEnterpriseConfig,
		protocol.MethodToggleMethodSwizzling:    d.toggleMethodSwizzling,
		protocol.MethodClearBadge:               d.clearBadge,
		protocol.MethodSetAppID:                 d.setAppID,
		protocol.MethodToggleNotifications:      d.toggleNotifications,
		protocol.MethodSetHeartbeatInterval:     d.setHeartbeatInterval,
		protocol.MethodSetNotificationIcon:      d.setNotificationIcon,
		protocol.MethodRequestStoragePermission: d.requestStoragePermission,
	}
	return d
}

// Commands lists every command name the dispatcher answers, sorted.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.routes))
	for name := range d.routes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Dispatch runs call. It must be invoked on the main loop. Network commands
// return before reply fires; reply is then invoked on the main loop. It
// reports whether the command was recognised; unrecognised commands never
// see reply unless the dispatcher is strict.
func (d *Dispatcher) Dispatch(ctx context.Context, call protocol.Call, reply Reply) bool {
	h, ok := d.routes[call.Method]
	if !ok {
		d.logger.Debug("unknown command ignored", "method", call.Method, "strict", d.strict)
		if d.strict {
			reply("", protocol.Unsupported(call.Method))
		}
		return false
	}

	d.logger.Debug("command", "method", call.Method, "args", len(call.Args))
	h(ctx, call.Args, reply)
	return true
}

func (d *Dispatcher) sdk(reply Reply) (bridge.PushSDK, bool) {
	sdk, err := d.holder.Get()
	if err != nil {
		d.logger.Error("push sdk unavailable", "err", err)
		reply("", protocol.PushyError(err))
		return nil, false
	}
	return sdk, true
}

// async runs op off the main loop and posts its outcome back.
func (d *Dispatcher) async(method string, reply Reply, op func() (string, error)) {
	go func() {
		value, err := op()
		if !d.poster.Post(func() {
			if err != nil {
				d.logger.Warn("command failed", "method", method, "err", err)
				reply("", protocol.PushyError(err))
				return
			}
			reply(value, nil)
		}) {
			d.logger.Warn("command completed after shutdown", "method", method)
		}
	}()
}

func badArgs(method string, err error) *protocol.Error {
	return protocol.PushyError(fmt.Errorf("%s: invalid arguments: %w", method, err))
}

func success(reply Reply) {
	reply(protocol.ResultSuccess, nil)
}
