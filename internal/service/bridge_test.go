package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/arko-chat/pushbridge/internal/bridge"
	"github.com/arko-chat/pushbridge/internal/bridge/bridgetest"
	"github.com/arko-chat/pushbridge/internal/mainloop"
	"github.com/arko-chat/pushbridge/internal/models"
	"github.com/arko-chat/pushbridge/internal/protocol"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type chanSink struct {
	events chan string
	errs   chan *protocol.Error
}

func newChanSink() *chanSink {
	return &chanSink{events: make(chan string, 16), errs: make(chan *protocol.Error, 16)}
}

func (s *chanSink) Send(event string)             { s.events <- event }
func (s *chanSink) SendError(err *protocol.Error) { s.errs <- err }

type harness struct {
	sdk      *bridgetest.SDK
	platform *bridgetest.Platform
	loop     *mainloop.Loop
	svc      *BridgeService
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	ctx, cancel := context.WithCancel(context.Background())

	loop := mainloop.New(logger, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = loop.Run(ctx)
	}()

	sdk := &bridgetest.SDK{Token: "device-token"}
	platform := &bridgetest.Platform{}
	svc := NewBridgeService(ctx, loop, bridge.NewHolder(bridge.Static(sdk)), platform, logger, opts)

	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return &harness{sdk: sdk, platform: platform, loop: loop, svc: svc}
}

func (h *harness) flush(t *testing.T) {
	t.Helper()
	require.NoError(t, h.loop.Do(context.Background(), func() {}))
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
		var zero T
		return zero
	}
}

func TestStartInstallsHandlers(t *testing.T) {
	h := newHarness(t, Options{})
	require.NoError(t, h.svc.Start())
	require.NoError(t, h.svc.Start())

	calls := h.sdk.CallsSnapshot()
	assert.Equal(t, []string{"SetNotificationHandler", "SetNotificationClickListener"}, calls)
}

func TestStartupNotificationFlow(t *testing.T) {
	h := newHarness(t, Options{})
	require.NoError(t, h.svc.Start())

	h.platform.SetInactive(true)
	completed := make(chan bridge.FetchResult, 1)
	p := models.NewPayload().With("message", "launch")
	require.True(t, h.sdk.Deliver(p, func(r bridge.FetchResult) { completed <- r }))
	assert.Equal(t, bridge.FetchNewData, recv(t, completed))

	st, err := h.svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Status{State: "noListener", Pending: true}, st)

	sink := newChanSink()
	require.True(t, h.svc.Listen(sink))
	assert.JSONEq(t, `{"message":"launch","_pushyNotificationClicked":true}`, recv(t, sink.events))

	st, err = h.svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Status{State: "listenerActive", Listener: true}, st)
}

func TestClickedFlagUsesStateAtArrival(t *testing.T) {
	h := newHarness(t, Options{})
	require.NoError(t, h.svc.Start())

	gate := make(chan struct{})
	require.True(t, h.loop.Post(func() { <-gate }))

	h.platform.SetInactive(true)
	require.True(t, h.sdk.Deliver(models.NewPayload().With("m", "launch"), nil))
	h.platform.SetInactive(false)
	close(gate)

	sink := newChanSink()
	require.True(t, h.svc.Listen(sink))
	assert.JSONEq(t, `{"m":"launch","_pushyNotificationClicked":true}`, recv(t, sink.events))
}

func TestClickWhileListening(t *testing.T) {
	h := newHarness(t, Options{})
	require.NoError(t, h.svc.Start())

	sink := newChanSink()
	h.svc.Listen(sink)
	h.flush(t)

	require.True(t, h.sdk.Click(models.NewPayload().With("id", 1)))
	assert.JSONEq(t, `{"id":1,"_pushyNotificationClicked":true}`, recv(t, sink.events))
}

func TestCancelThenDeliveryDropped(t *testing.T) {
	h := newHarness(t, Options{})
	require.NoError(t, h.svc.Start())

	sink := newChanSink()
	h.svc.Listen(sink)
	h.svc.Cancel(sink)
	h.flush(t)

	done := make(chan bridge.FetchResult, 1)
	h.sdk.Deliver(models.NewPayload().With("late", true), func(r bridge.FetchResult) { done <- r })
	recv(t, done)

	next := newChanSink()
	h.svc.Listen(next)
	h.flush(t)

	assert.Empty(t, sink.events)
	assert.Empty(t, next.events)
}

func TestCallRepliesOnLoop(t *testing.T) {
	h := newHarness(t, Options{})

	type result struct {
		value string
		err   *protocol.Error
	}
	out := make(chan result, 1)
	reply := func(v string, err *protocol.Error) { out <- result{v, err} }

	require.True(t, h.svc.Call(protocol.Call{Method: protocol.MethodSubscribe, Args: protocol.Args{"news"}}, reply))
	assert.Equal(t, result{value: "success"}, recv(t, out))

	h.sdk.SubErr = errors.New("rejected")
	h.svc.Call(protocol.Call{Method: protocol.MethodSubscribe, Args: protocol.Args{"news"}}, reply)
	got := recv(t, out)
	require.NotNil(t, got.err)
	assert.Equal(t, "rejected", got.err.Message)
}

func TestStrictOption(t *testing.T) {
	h := newHarness(t, Options{StrictCommands: true})

	out := make(chan *protocol.Error, 1)
	h.svc.Call(protocol.Call{Method: "nope"}, func(_ string, err *protocol.Error) { out <- err })
	assert.Equal(t, protocol.CodeUnsupported, recv(t, out).Code)
}

func TestDedupOption(t *testing.T) {
	h := newHarness(t, Options{DedupKey: "id", DedupSize: 4})
	require.NoError(t, h.svc.Start())

	sink := newChanSink()
	h.svc.Listen(sink)

	p := models.NewPayload().With("id", "same")
	h.sdk.Deliver(p, nil)
	h.sdk.Click(p)
	h.flush(t)

	assert.Len(t, sink.events, 1)
}

func TestDeliveryAfterStopCompletes(t *testing.T) {
	h := newHarness(t, Options{})
	require.NoError(t, h.svc.Start())
	h.loop.Stop()

	done := make(chan bridge.FetchResult, 1)
	h.sdk.Deliver(models.NewPayload(), func(r bridge.FetchResult) { done <- r })
	assert.Equal(t, bridge.FetchNoData, recv(t, done))
	assert.False(t, h.svc.Listen(newChanSink()))
}
