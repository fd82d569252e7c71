package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/toqueteos/webbrowser"
	"golang.org/x/sync/errgroup"

	"github.com/arko-chat/pushbridge/internal/app"
	"github.com/arko-chat/pushbridge/internal/bridge"
	"github.com/arko-chat/pushbridge/internal/config"
	"github.com/arko-chat/pushbridge/internal/desktop"
	"github.com/arko-chat/pushbridge/internal/desktop/window"
	"github.com/arko-chat/pushbridge/internal/logger"
	"github.com/arko-chat/pushbridge/internal/service"
	"github.com/arko-chat/pushbridge/internal/sim"
)

func init() {
	// The webview has to own the main OS thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		slog.Error("pushbridge failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	os.Setenv("WEBKIT_DISABLE_COMPOSITING_MODE", "0")
	os.Setenv("WEBVIEW2_ADDITIONAL_BROWSER_ARGUMENTS", "--enable-gpu")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	slogger := logger.New(os.Stdout, level, cfg.LogFormat)
	slog.SetDefault(slogger)

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	sdk, err := sim.Open(cfg.DataDir, slogger.With("component", "sim"))
	if err != nil {
		return err
	}
	defer sdk.Close()

	var (
		platform bridge.Platform
		win      *window.Window
	)
	if cfg.Shell == config.ShellWebview {
		win = window.New(slogger.With("component", "window"), level <= slog.LevelDebug)
		platform = win
	} else {
		platform = desktop.NewHeadless(slogger.With("component", "platform"))
	}

	a, err := app.New(app.Options{
		Logger:    slogger,
		Holder:    bridge.NewHolder(bridge.Static(sdk)),
		Platform:  platform,
		Simulator: sdk,
		Service: service.Options{
			StrictCommands: cfg.StrictCommands,
			DedupKey:       cfg.DedupKey,
			DedupSize:      cfg.DedupSize,
		},
		ListenAddr:    cfg.ListenAddr,
		ChannelSecret: cfg.ChannelSecret,
	})
	if err != nil {
		return err
	}

	channelURL, err := a.ChannelURL()
	if err != nil {
		return err
	}
	hostURL, err := hostPage(cfg.HostURL, a.BaseURL(), channelURL)
	if err != nil {
		return err
	}
	slogger.Info("host channel ready", "channel", channelURL, "host", hostURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Run(gctx)
	})

	switch cfg.Shell {
	case config.ShellWebview:
		g.Go(func() error {
			<-gctx.Done()
			win.Close()
			return nil
		})
		if cfg.HostURL != "" {
			if u, err := url.Parse(cfg.HostURL); err == nil {
				win.SetPageTitle(u.Host)
			}
		}
		win.Run(hostURL)
		slogger.Info("window closed, shutting down")
		stop()
	case config.ShellBrowser:
		if err := webbrowser.Open(hostURL); err != nil {
			slogger.Warn("failed to open browser", "err", err)
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// hostPage is the page the shell opens: the configured host app with the
// channel URL in its query, or the health page when no host is configured.
func hostPage(hostURL, baseURL, channelURL string) (string, error) {
	if hostURL == "" {
		return baseURL + "/healthz", nil
	}
	u, err := url.Parse(hostURL)
	if err != nil {
		return "", fmt.Errorf("invalid host url: %w", err)
	}
	q := u.Query()
	q.Set("channel", channelURL)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
