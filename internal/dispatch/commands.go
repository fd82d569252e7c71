package dispatch

import (
	"context"
	"errors"

	"github.com/arko-chat/pushbridge/internal/bridge"
	"github.com/arko-chat/pushbridge/internal/protocol"
)

var errNoTopics = errors.New("at least one topic is required")

func (d *Dispatcher) listen(_ context.Context, _ protocol.Args, reply Reply) {
	sdk, ok := d.sdk(reply)
	if !ok {
		return
	}
	if l, ok := sdk.(bridge.Listener); ok {
		l.Listen()
	}
	success(reply)
}

func (d *Dispatcher) register(ctx context.Context, _ protocol.Args, reply Reply) {
	sdk, ok := d.sdk(reply)
	if !ok {
		return
	}
	d.async(protocol.MethodRegister, reply, func() (string, error) {
		return sdk.Register(ctx)
	})
}

func (d *Dispatcher) isRegistered(_ context.Context, _ protocol.Args, reply Reply) {
	sdk, ok := d.sdk(reply)
	if !ok {
		return
	}
	if sdk.IsRegistered() {
		reply(protocol.ResultTrue, nil)
		return
	}
	reply(protocol.ResultFalse, nil)
}

func (d *Dispatcher) getToken(_ context.Context, _ protocol.Args, reply Reply) {
	sdk, ok := d.sdk(reply)
	if !ok {
		return
	}
	reply(sdk.GetToken(), nil)
}

func (d *Dispatcher) subscribe(ctx context.Context, args protocol.Args, reply Reply) {
	topic, err := args.String(0)
	if err != nil {
		reply("", badArgs(protocol.MethodSubscribe, err))
		return
	}
	sdk, ok := d.sdk(reply)
	if !ok {
		return
	}
	d.async(protocol.MethodSubscribe, reply, func() (string, error) {
		return protocol.ResultSuccess, sdk.Subscribe(ctx, topic)
	})
}

func (d *Dispatcher) multiSubscribe(ctx context.Context, args protocol.Args, reply Reply) {
	topics, err := args.Strings()
	if err == nil && len(topics) == 0 {
		err = errNoTopics
	}
	if err != nil {
		reply("", badArgs(protocol.MethodMultiSubscribe, err))
		return
	}
	sdk, ok := d.sdk(reply)
	if !ok {
		return
	}
	d.async(protocol.MethodMultiSubscribe, reply, func() (string, error) {
		return protocol.ResultSuccess, sdk.Subscribe(ctx, topics...)
	})
}

func (d *Dispatcher) unsubscribe(ctx context.Context, args protocol.Args, reply Reply) {
	topic, err := args.String(0)
	if err != nil {
		reply("", badArgs(protocol.MethodUnsubscribe, err))
		return
	}
	sdk, ok := d.sdk(reply)
	if !ok {
		return
	}
	d.async(protocol.MethodUnsubscribe, reply, func() (string, error) {
		return protocol.ResultSuccess, sdk.Unsubscribe(ctx, topic)
	})
}

func (d *Dispatcher) notify(_ context.Context, args protocol.Args, reply Reply) {
	title, err := args.String(0)
	if err != nil {
		reply("", badArgs(protocol.MethodNotify, err))
		return
	}
	message, err := args.String(1)
	if err != nil {
		reply("", badArgs(protocol.MethodNotify, err))
		return
	}
	if err := d.platform.ShowAlert(title, message); err != nil {
		d.logger.Warn("alert failed", "err", err)
	}
	success(reply)
}

func (d *Dispatcher) toggleInAppBanner(_ context.Context, args protocol.Args, reply Reply) {
	enabled, err := args.Bool(0)
	if err != nil {
		reply("", badArgs(protocol.MethodToggleInAppBanner, err))
		return
	}
	sdk, ok := d.sdk(reply)
	if !ok {
		return
	}
	sdk.ToggleInAppBanner(enabled)
	success(reply)
}

func (d *Dispatcher) setCriticalAlertOption(_ context.Context, _ protocol.Args, reply Reply) {
	sdk, ok := d.sdk(reply)
	if !ok {
		return
	}
	sdk.SetCustomNotificationOptions(bridge.CriticalAlertOptions)
	success(reply)
}

func (d *Dispatcher) setEnterpriseConfig(_ context.Context, args protocol.Args, reply Reply) {
	api, err := args.OptionalString(0)
	if err != nil {
		reply("", badArgs(protocol.MethodSetEnterpriseConfig, err))
		return
	}
	mqtt, err := args.OptionalString(1)
	if err != nil {
		reply("", badArgs(protocol.MethodSetEnterpriseConfig, err))
		return
	}
	sdk, ok := d.sdk(reply)
	if !ok {
		return
	}
	sdk.SetEnterpriseConfig(api, mqtt)
	success(reply)
}

func (d *Dispatcher) toggleMethodSwizzling(_ context.Context, args protocol.Args, reply Reply) {
	enabled, err := args.Bool(0)
	if err != nil {
		reply("", badArgs(protocol.MethodToggleMethodSwizzling, err))
		return
	}
	sdk, ok := d.sdk(reply)
	if !ok {
		return
	}
	sdk.ToggleMethodSwizzling(enabled)
	success(reply)
}

func (d *Dispatcher) clearBadge(_ context.Context, _ protocol.Args, reply Reply) {
	if err := d.platform.SetBadgeCount(0); err != nil {
		d.logger.Warn("clear badge failed", "err", err)
	}
	success(reply)
}

func (d *Dispatcher) setAppID(_ context.Context, args protocol.Args, reply Reply) {
	appID, err := args.OptionalString(0)
	if err != nil {
		reply("", badArgs(protocol.MethodSetAppID, err))
		return
	}
	sdk, ok := d.sdk(reply)
	if !ok {
		return
	}
	sdk.SetAppID(appID)
	success(reply)
}

func (d *Dispatcher) toggleNotifications(_ context.Context, args protocol.Args, reply Reply) {
	enabled, err := args.Bool(0)
	if err != nil {
		reply("", badArgs(protocol.MethodToggleNotifications, err))
		return
	}
	sdk, ok := d.sdk(reply)
	if !ok {
		return
	}
	if t, ok := sdk.(bridge.NotificationToggler); ok {
		t.ToggleNotifications(enabled)
	}
	success(reply)
}

func (d *Dispatcher) setHeartbeatInterval(_ context.Context, args protocol.Args, reply Reply) {
	ms, err := args.Int(0)
	if err != nil {
		reply("", badArgs(protocol.MethodSetHeartbeatInterval, err))
		return
	}
	sdk, ok := d.sdk(reply)
	if !ok {
		return
	}
	if h, ok := sdk.(bridge.HeartbeatConfigurer); ok {
		h.SetHeartbeatInterval(ms)
	}
	success(reply)
}

func (d *Dispatcher) setNotificationIcon(_ context.Context, args protocol.Args, reply Reply) {
	icon, err := args.String(0)
	if err != nil {
		reply("", badArgs(protocol.MethodSetNotificationIcon, err))
		return
	}
	sdk, ok := d.sdk(reply)
	if !ok {
		return
	}
	if c, ok := sdk.(bridge.IconConfigurer); ok {
		c.SetNotificationIcon(icon)
	}
	success(reply)
}

func (d *Dispatcher) requestStoragePermission(_ context.Context, _ protocol.Args, reply Reply) {
	success(reply)
}
