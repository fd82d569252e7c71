package bridge_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arko-chat/pushbridge/internal/bridge"
	"github.com/arko-chat/pushbridge/internal/bridge/bridgetest"
)

func TestHolderConstructsOnce(t *testing.T) {
	built := 0
	inits := 0
	fake := &bridgetest.SDK{}

	h := bridge.NewHolder(func() (bridge.PushSDK, error) {
		built++
		return fake, nil
	})
	h.OnInit(func(bridge.PushSDK) { inits++ })

	for range 3 {
		sdk, err := h.Get()
		require.NoError(t, err)
		assert.Same(t, fake, sdk)
	}
	assert.Equal(t, 1, built)
	assert.Equal(t, 1, inits)
}

func TestHolderRetriesFailedConstruction(t *testing.T) {
	fail := true
	h := bridge.NewHolder(func() (bridge.PushSDK, error) {
		if fail {
			return nil, errors.New("not ready")
		}
		return &bridgetest.SDK{}, nil
	})

	_, err := h.Get()
	require.Error(t, err)

	fail = false
	sdk, err := h.Get()
	require.NoError(t, err)
	assert.NotNil(t, sdk)
}

func TestHolderWithoutFactory(t *testing.T) {
	_, err := bridge.NewHolder(nil).Get()
	assert.ErrorIs(t, err, bridge.ErrNoSDK)

	_, err = bridge.NewHolder(bridge.Static(nil)).Get()
	assert.ErrorIs(t, err, bridge.ErrNoSDK)
}

func TestFetchResultString(t *testing.T) {
	assert.Equal(t, "newData", bridge.FetchNewData.String())
	assert.Equal(t, "noData", bridge.FetchNoData.String())
	assert.Equal(t, "failed", bridge.FetchFailed.String())
}
