// Package mobile is the gomobile binding of the bridge. Native code registers
// its push SDK wrapper and platform services, calls Start, and hands the
// returned channel URL to the web host.
package mobile

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/arko-chat/pushbridge/internal/app"
	"github.com/arko-chat/pushbridge/internal/bridge"
	"github.com/arko-chat/pushbridge/internal/logger"
	"github.com/arko-chat/pushbridge/internal/service"
)

const logFile = "pushbridge.log"

var (
	mu       sync.Mutex
	platform NativePlatform
	stopFunc func()
	slogger  *slog.Logger

	sdkMu  sync.Mutex
	native NativePushSDK

	// StrictCommands answers unknown commands with UNSUPPORTED instead of
	// leaving them unanswered. Set before Start.
	StrictCommands bool
	// LogLevel is one of trace, debug, info, warn, error. Set before Start.
	LogLevel = "info"
)

// RegisterSDK must be called before Start so notifications that launched
// the app are captured.
func RegisterSDK(sdk NativePushSDK) {
	sdkMu.Lock()
	defer sdkMu.Unlock()
	native = sdk
}

func RegisterPlatform(p NativePlatform) {
	mu.Lock()
	defer mu.Unlock()
	platform = p
}

func sdkFactory() (bridge.PushSDK, error) {
	sdkMu.Lock()
	n := native
	sdkMu.Unlock()
	if n == nil {
		return nil, bridge.ErrNoSDK
	}
	return newNativeSDK(n), nil
}

// Start runs the bridge and returns the websocket URL of the host channel.
// Logs go to stdout and to a file under dataDir.
func Start(dataDir string) (string, error) {
	mu.Lock()
	defer mu.Unlock()

	if stopFunc != nil {
		return "", fmt.Errorf("bridge already running")
	}
	if platform == nil {
		return "", fmt.Errorf("call RegisterPlatform before Start")
	}

	level, err := logger.ParseLevel(LogLevel)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(dataDir, "pushbridge")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to open log file: %w", err)
	}
	lg := logger.New(io.MultiWriter(os.Stdout, f), level, "text")

	// The OS keyring is not reachable from mobile processes, so the channel
	// secret lives only as long as the process.
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		f.Close()
		return "", err
	}
	secret := base64.StdEncoding.EncodeToString(raw)

	a, err := app.New(app.Options{
		Logger:        lg,
		Holder:        bridge.NewHolder(sdkFactory),
		Platform:      platform,
		Service:       service.Options{StrictCommands: StrictCommands},
		ChannelSecret: secret,
	})
	if err != nil {
		f.Close()
		return "", err
	}

	channelURL, err := a.ChannelURL()
	if err != nil {
		f.Close()
		return "", err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.Run(ctx); err != nil {
			lg.Error("bridge error", "err", err)
		}
	}()

	slogger = lg
	stopFunc = func() {
		cancel()
		<-done
		slogger = nil
		f.Close()
	}

	return channelURL, nil
}

func Stop() {
	mu.Lock()
	defer mu.Unlock()

	if stopFunc != nil {
		stopFunc()
		stopFunc = nil
	}
}

// Log writes native messages into the bridge log.
type Log struct {
	native *logger.NativeLogger
}

// NewLog returns a Log bound to the running bridge, or to stdout when the
// bridge is not running.
func NewLog() *Log {
	mu.Lock()
	l := slogger
	mu.Unlock()
	if l == nil {
		l = logger.New(os.Stdout, slog.LevelInfo, "text")
	}
	return &Log{native: logger.NewNative(context.Background(), l)}
}

func (l *Log) Debug(message string)   { l.native.Debug(message) }
func (l *Log) Info(message string)    { l.native.Info(message) }
func (l *Log) Warning(message string) { l.native.Warning(message) }
func (l *Log) Error(message string)   { l.native.Error(message) }
