package bridge

import (
	"errors"
	"sync"
)

var ErrNoSDK = errors.New("bridge: no push SDK registered")

// Holder owns the single push SDK instance of a bridge. The instance is
// constructed on first use and onInit runs exactly once with it.
type Holder struct {
	factory func() (PushSDK, error)
	onInit  func(PushSDK)

	mu  sync.Mutex
	sdk PushSDK
}

func NewHolder(factory func() (PushSDK, error)) *Holder {
	return &Holder{factory: factory}
}

// OnInit registers the hook run right after construction. It must be set
// before the first Get.
func (h *Holder) OnInit(fn func(PushSDK)) {
	h.onInit = fn
}

// Get returns the SDK, constructing it if needed. A failed construction is
// retried on the next call.
func (h *Holder) Get() (PushSDK, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sdk != nil {
		return h.sdk, nil
	}
	if h.factory == nil {
		return nil, ErrNoSDK
	}

	sdk, err := h.factory()
	if err != nil {
		return nil, err
	}
	if sdk == nil {
		return nil, ErrNoSDK
	}

	h.sdk = sdk
	if h.onInit != nil {
		h.onInit(sdk)
	}
	return sdk, nil
}

// Static returns a factory for an already constructed SDK.
func Static(sdk PushSDK) func() (PushSDK, error) {
	return func() (PushSDK, error) {
		if sdk == nil {
			return nil, ErrNoSDK
		}
		return sdk, nil
	}
}
