package service

import (
	"context"
	"log/slog"

	"github.com/arko-chat/pushbridge/internal/bridge"
	"github.com/arko-chat/pushbridge/internal/dispatch"
	"github.com/arko-chat/pushbridge/internal/mainloop"
	"github.com/arko-chat/pushbridge/internal/models"
	"github.com/arko-chat/pushbridge/internal/protocol"
	"github.com/arko-chat/pushbridge/internal/relay"
)

type Options struct {
	StrictCommands bool
	DedupKey       string
	DedupSize      int
}

// BridgeService ties the push SDK, the relay and the dispatcher to the main
// loop. All relay and dispatcher access goes through the loop.
type BridgeService struct {
	ctx      context.Context
	logger   *slog.Logger
	loop     *mainloop.Loop
	holder   *bridge.Holder
	platform bridge.Platform

	relay      *relay.Relay
	dispatcher *dispatch.Dispatcher
}

// NewBridgeService wires the components. ctx bounds the lifetime of SDK
// network calls.
func NewBridgeService(
	ctx context.Context,
	loop *mainloop.Loop,
	holder *bridge.Holder,
	platform bridge.Platform,
	logger *slog.Logger,
	opts Options,
) *BridgeService {
	s := &BridgeService{
		ctx:      ctx,
		logger:   logger,
		loop:     loop,
		holder:   holder,
		platform: platform,
		relay: relay.New(
			logger.With("component", "relay"),
			relay.WithDedup(opts.DedupKey, opts.DedupSize),
		),
	}
	s.dispatcher = dispatch.New(
		holder,
		platform,
		loop,
		logger.With("component", "dispatch"),
		dispatch.WithStrict(opts.StrictCommands),
	)
	holder.OnInit(s.installHandlers)
	return s
}

// Start constructs the SDK so notifications that launched the app are
// captured before the host attaches.
func (s *BridgeService) Start() error {
	_, err := s.holder.Get()
	return err
}

func (s *BridgeService) installHandlers(sdk bridge.PushSDK) {
	sdk.SetNotificationHandler(s.onReceived)
	if cn, ok := sdk.(bridge.ClickNotifier); ok {
		cn.SetNotificationClickListener(s.onClicked)
	}
	s.logger.Debug("push sdk handlers installed")
}

func (s *BridgeService) onReceived(p models.Payload, done func(bridge.FetchResult)) {
	// App state is sampled at arrival, not when the loop gets to it.
	inactive := s.platform.IsAppInactive()
	if !s.loop.Post(func() {
		s.relay.Received(p, inactive, done)
	}) {
		s.logger.Warn("notification dropped: bridge stopped")
		if done != nil {
			done(bridge.FetchNoData)
		}
	}
}

func (s *BridgeService) onClicked(p models.Payload) {
	if !s.loop.Post(func() { s.relay.Clicked(p) }) {
		s.logger.Warn("click dropped: bridge stopped")
	}
}

// Call runs a host command. It reports false when the bridge has stopped.
func (s *BridgeService) Call(call protocol.Call, reply dispatch.Reply) bool {
	return s.loop.Post(func() {
		s.dispatcher.Dispatch(s.ctx, call, reply)
	})
}

// Listen attaches sink as the event listener.
func (s *BridgeService) Listen(sink relay.Sink) bool {
	return s.loop.Post(func() { s.relay.Attach(sink) })
}

// Cancel detaches sink if it is the current listener.
func (s *BridgeService) Cancel(sink relay.Sink) bool {
	return s.loop.Post(func() { s.relay.Detach(sink) })
}

type Status struct {
	State    string `json:"state"`
	Listener bool   `json:"listener"`
	Pending  bool   `json:"pending"`
}

func (s *BridgeService) Status(ctx context.Context) (Status, error) {
	var st Status
	err := s.loop.Do(ctx, func() {
		state := s.relay.State()
		st.State = state.String()
		st.Listener = state == relay.ListenerActive
		_, st.Pending = s.relay.Pending()
	})
	return st, err
}

func (s *BridgeService) Commands() []string {
	return s.dispatcher.Commands()
}
