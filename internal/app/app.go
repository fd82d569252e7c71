// Package app assembles the bridge process: main loop, bridge service and
// the local HTTP server carrying the host channel.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arko-chat/pushbridge/internal/bridge"
	"github.com/arko-chat/pushbridge/internal/handlers"
	"github.com/arko-chat/pushbridge/internal/mainloop"
	"github.com/arko-chat/pushbridge/internal/middleware"
	"github.com/arko-chat/pushbridge/internal/router"
	"github.com/arko-chat/pushbridge/internal/service"
	"github.com/arko-chat/pushbridge/internal/ws"
)

const (
	loopQueueSize   = 256
	shutdownTimeout = 5 * time.Second
)

type Options struct {
	Logger        *slog.Logger
	Holder        *bridge.Holder
	Platform      bridge.Platform
	Simulator     handlers.Simulator
	Service       service.Options
	ListenAddr    string
	ChannelSecret string
	// TokenMaxAge bounds channel token validity. Zero means the token lives
	// as long as the process.
	TokenMaxAge time.Duration
}

type App struct {
	logger   *slog.Logger
	loop     *mainloop.Loop
	svc      *service.BridgeService
	hub      *ws.Hub
	auth     *middleware.ChannelAuth
	listener net.Listener
	server   *http.Server
	baseURL  string

	cancel context.CancelFunc
}

// New builds the app and binds its listener. Nothing runs until Run.
func New(opts Options) (*App, error) {
	if opts.Holder == nil || opts.Platform == nil {
		return nil, errors.New("app: push sdk holder and platform are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := opts.ListenAddr
	if addr == "" {
		addr = "127.0.0.1:0"
	}

	auth, err := middleware.NewChannelAuth(opts.ChannelSecret, opts.TokenMaxAge)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	loop := mainloop.New(logger.With("component", "loop"), loopQueueSize)
	svc := service.NewBridgeService(ctx, loop, opts.Holder, opts.Platform, logger, opts.Service)
	hub := ws.NewHub(logger.With("component", "ws"))

	h := handlers.New(svc, hub, opts.Simulator, logger)

	return &App{
		logger:   logger,
		loop:     loop,
		svc:      svc,
		hub:      hub,
		auth:     auth,
		listener: listener,
		server:   &http.Server{Handler: router.New(h, auth, logger)},
		baseURL:  "http://" + listener.Addr().String(),
		cancel:   cancel,
	}, nil
}

// BaseURL is the http address of the local server.
func (a *App) BaseURL() string {
	return a.baseURL
}

// ChannelURL returns the websocket URL, token included, the host connects to.
func (a *App) ChannelURL() (string, error) {
	token, err := a.auth.Issue()
	if err != nil {
		return "", fmt.Errorf("issue channel token: %w", err)
	}
	u, err := url.Parse(a.baseURL)
	if err != nil {
		return "", err
	}
	u.Scheme = "ws"
	u.Path = "/channel"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}

// Run starts the SDK, the main loop and the server and blocks until ctx is
// cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	defer a.cancel()

	if err := a.svc.Start(); err != nil {
		a.logger.Warn("push sdk not available yet", "err", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := a.loop.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		a.logger.Info("server starting", "addr", a.baseURL)
		if err := a.server.Serve(a.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.cancel()
		a.hub.CloseAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("server shutdown", "err", err)
		}
		a.loop.Stop()
		return nil
	})

	err := g.Wait()
	a.logger.Info("bridge stopped")
	return err
}
