// Package window runs the host web app in a native webview.
package window

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/toqueteos/webbrowser"
	webview "github.com/webview/webview_go"

	"github.com/arko-chat/pushbridge/internal/bridge"
	"github.com/arko-chat/pushbridge/internal/desktop"
)

var _ bridge.Platform = (*Window)(nil)

const initScript = `
    document.addEventListener("click", function(e) {
        const a = e.target.closest("a");
        if (!a || !a.href) return;
        const url = a.href;
        if (url.startsWith("http://127.0.0.1") || url.startsWith("/")) return;
        e.preventDefault();
        openExternal(url);
    });
    (function() {
        const report = function() {
            pushbridgeVisibility(document.hidden || !document.hasFocus());
        };
        document.addEventListener("visibilitychange", report);
        window.addEventListener("focus", report);
        window.addEventListener("blur", report);
        window.addEventListener("load", report);
    })();
`

// Window hosts the web app in a native webview and serves as its platform.
// It must be created and run on the main OS thread.
type Window struct {
	logger *slog.Logger

	mu       sync.Mutex
	view     webview.WebView
	page     string
	badge    int
	inactive bool
}

// New opens the main window. The app counts as inactive until the page
// first reports its visibility.
func New(logger *slog.Logger, debug bool) *Window {
	w := &Window{
		logger:   logger,
		inactive: true,
	}

	view := webview.New(debug)
	view.SetTitle(desktop.BaseTitle)
	view.SetSize(1040, 768, webview.HintMin)
	view.Init(initScript)

	_ = view.Bind("openExternal", func(url string) error {
		return webbrowser.Open(url)
	})
	_ = view.Bind("pushbridgeVisibility", func(hidden bool) {
		w.mu.Lock()
		changed := w.inactive != hidden
		w.inactive = hidden
		w.mu.Unlock()
		if changed {
			w.logger.Debug("window visibility changed", "inactive", hidden)
		}
	})

	w.view = view
	return w
}

// Run navigates to url and blocks until the window is closed.
func (w *Window) Run(url string) {
	w.view.Navigate(url)
	w.view.Run()

	w.mu.Lock()
	w.view.Destroy()
	w.view = nil
	w.mu.Unlock()
}

// Close terminates the window from any goroutine.
func (w *Window) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view == nil {
		return
	}
	view := w.view
	view.Dispatch(func() {
		view.Terminate()
	})
}

func (w *Window) dispatch(fn func(view webview.WebView)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view == nil {
		return false
	}
	view := w.view
	view.Dispatch(func() { fn(view) })
	return true
}

// SetPageTitle sets the part of the title after the app name.
func (w *Window) SetPageTitle(page string) {
	w.mu.Lock()
	w.page = page
	title := desktop.Title(w.page, w.badge)
	w.mu.Unlock()

	w.dispatch(func(view webview.WebView) { view.SetTitle(title) })
}

func (w *Window) ShowAlert(title, message string) error {
	text, err := json.Marshal(strings.TrimSpace(title + "\n\n" + message))
	if err != nil {
		return err
	}
	if !w.dispatch(func(view webview.WebView) {
		view.Eval(fmt.Sprintf("window.alert(%s)", text))
	}) {
		return desktop.ErrWindowClosed
	}
	return nil
}

func (w *Window) SetBadgeCount(count int) error {
	w.mu.Lock()
	w.badge = count
	title := desktop.Title(w.page, w.badge)
	w.mu.Unlock()

	if !w.dispatch(func(view webview.WebView) { view.SetTitle(title) }) {
		return desktop.ErrWindowClosed
	}
	return nil
}

func (w *Window) IsAppInactive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inactive
}
