package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestAppSecretRoundTrip(t *testing.T) {
	keyring.MockInit()

	_, err := LoadAppSecret("channel_secret")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, StoreAppSecret("channel_secret", "s3cret"))
	val, err := LoadAppSecret("channel_secret")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", val)

	DeleteAppSecret("channel_secret")
	_, err = LoadAppSecret("channel_secret")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureAppSecretIsStable(t *testing.T) {
	keyring.MockInit()

	first, err := EnsureAppSecret("channel_secret", 32)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := EnsureAppSecret("channel_secret", 32)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDeviceTokenPerApp(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, StoreDeviceToken("app-a", "token-a"))
	require.NoError(t, StoreDeviceToken("app-b", "token-b"))

	got, err := LoadDeviceToken("app-a")
	require.NoError(t, err)
	assert.Equal(t, "token-a", got)

	DeleteDeviceToken("app-a")
	_, err = LoadDeviceToken("app-a")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = LoadDeviceToken("app-b")
	require.NoError(t, err)
	assert.Equal(t, "token-b", got)
}
