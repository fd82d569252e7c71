package sim

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/arko-chat/pushbridge/internal/bridge"
	"github.com/arko-chat/pushbridge/internal/models"
)

func openTest(t *testing.T, dataDir string, opts ...Option) *SDK {
	t.Helper()
	s, err := Open(dataDir, slog.New(slog.DiscardHandler), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRegisterIsStable(t *testing.T) {
	keyring.MockInit()
	s := openTest(t, "")
	ctx := context.Background()

	assert.False(t, s.IsRegistered())
	assert.Empty(t, s.GetToken())

	token, err := s.Register(ctx)
	require.NoError(t, err)
	assert.Len(t, token, 32)
	assert.True(t, s.IsRegistered())
	assert.Equal(t, token, s.GetToken())

	again, err := s.Register(ctx)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	reopened := openTest(t, "")
	assert.Equal(t, token, reopened.GetToken())
}

func TestConcurrentRegisterSharesToken(t *testing.T) {
	keyring.MockInit()
	s := openTest(t, "", WithLatency(20*time.Millisecond))

	var wg sync.WaitGroup
	tokens := make([]string, 8)
	for i := range tokens {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := s.Register(context.Background())
			assert.NoError(t, err)
			tokens[i] = tok
		}()
	}
	wg.Wait()

	for _, tok := range tokens {
		assert.Equal(t, tokens[0], tok)
	}
}

func TestLatencyHonoursContext(t *testing.T) {
	keyring.MockInit()
	s := openTest(t, "", WithLatency(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Register(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSubscribeRequiresRegistration(t *testing.T) {
	keyring.MockInit()
	s := openTest(t, "")

	err := s.Subscribe(context.Background(), "news")
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestTopicValidation(t *testing.T) {
	keyring.MockInit()
	s := openTest(t, "")
	_, err := s.Register(context.Background())
	require.NoError(t, err)

	for _, bad := range []string{"", "has space", "slash/topic", string(make([]byte, 101))} {
		assert.ErrorIs(t, s.Subscribe(context.Background(), "ok", bad), ErrInvalidTopic, bad)
	}
	assert.Empty(t, s.Topics())
	assert.ErrorIs(t, s.Unsubscribe(context.Background(), "a b"), ErrInvalidTopic)
}

func TestSubscribeUnsubscribe(t *testing.T) {
	keyring.MockInit()
	s := openTest(t, "")
	ctx := context.Background()
	_, err := s.Register(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Subscribe(ctx, "sports", "news"))
	require.NoError(t, s.Subscribe(ctx, "alerts"))
	assert.Equal(t, []string{"alerts", "news", "sports"}, s.Topics())

	require.NoError(t, s.Unsubscribe(ctx, "news"))
	assert.Equal(t, []string{"alerts", "sports"}, s.Topics())

	assert.ErrorIs(t, s.Unsubscribe(ctx, "news"), ErrNotSubscribed)
}

func TestTopicsPersist(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	_, err = s.Register(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Subscribe(ctx, "weather", "news"))
	require.NoError(t, s.Close())

	reopened := openTest(t, dir)
	assert.True(t, reopened.IsRegistered())
	assert.Equal(t, []string{"news", "weather"}, reopened.Topics())
}

func TestAppIDIsolation(t *testing.T) {
	keyring.MockInit()
	s := openTest(t, "")
	ctx := context.Background()

	first, err := s.Register(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Subscribe(ctx, "news"))

	s.SetAppID("other-app")
	assert.False(t, s.IsRegistered())
	assert.Empty(t, s.Topics())

	second, err := s.Register(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	s.SetAppID("")
	assert.Equal(t, first, s.GetToken())
	assert.Equal(t, []string{"news"}, s.Topics())
}

func TestDeliverAndClick(t *testing.T) {
	keyring.MockInit()
	s := openTest(t, "")
	p := models.NewPayload().With("message", "hi")

	assert.ErrorIs(t, s.Deliver(p), ErrNoHandler)
	assert.ErrorIs(t, s.Click(p), ErrNoClickListener)

	var got []models.Payload
	s.SetNotificationHandler(func(p models.Payload, done func(bridge.FetchResult)) {
		got = append(got, p)
		done(bridge.FetchNewData)
	})
	s.SetNotificationClickListener(func(p models.Payload) {
		got = append(got, p.Tagged(true))
	})

	require.NoError(t, s.Deliver(p))
	require.NoError(t, s.Click(p))
	require.Len(t, got, 2)
	assert.False(t, got[0].Clicked())
	assert.True(t, got[1].Clicked())

	s.ToggleNotifications(false)
	assert.ErrorIs(t, s.Deliver(p), ErrDisabled)
}

func TestSettings(t *testing.T) {
	keyring.MockInit()
	s := openTest(t, "")

	s.SetEnterpriseConfig("https://api.example", "")
	s.ToggleInAppBanner(true)
	s.ToggleMethodSwizzling(false)
	s.SetCustomNotificationOptions(bridge.OptionAlert | bridge.OptionSound)
	s.SetHeartbeatInterval(1500)
	s.SetNotificationIcon("ic_push")
	s.Listen()

	got := s.Settings()
	assert.Equal(t, Settings{
		AppID:         DefaultAppID,
		APIEndpoint:   "https://api.example",
		InAppBanner:   true,
		Swizzling:     false,
		Options:       bridge.OptionAlert | bridge.OptionSound,
		Notifications: true,
		Listening:     true,
		Heartbeat:     1500 * time.Millisecond,
		Icon:          "ic_push",
	}, got)
}

func TestTopicsPersistForSlashedAppID(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	s.SetAppID("org/app")
	_, err = s.Register(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Subscribe(ctx, "news"))
	require.NoError(t, s.Close())

	reopened := openTest(t, dir)
	assert.Empty(t, reopened.Topics())
	reopened.SetAppID("org/app")
	assert.Equal(t, []string{"news"}, reopened.Topics())
}

func TestTopicKeyRoundTrip(t *testing.T) {
	for _, appID := range []string{"default", "a/b", "x%2Fy", "with space"} {
		app, topic, ok := splitTopicKey(topicKey(appID, "news"))
		require.True(t, ok, appID)
		assert.Equal(t, appID, app)
		assert.Equal(t, "news", topic)
	}
}
