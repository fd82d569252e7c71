package main

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostPage(t *testing.T) {
	got, err := hostPage("", "http://127.0.0.1:4000", "ws://127.0.0.1:4000/channel?token=x")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:4000/healthz", got)

	got, err = hostPage("http://localhost:5173/app?theme=dark", "http://127.0.0.1:4000", "ws://127.0.0.1:4000/channel?token=x")
	require.NoError(t, err)
	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "/app", u.Path)
	assert.Equal(t, "dark", u.Query().Get("theme"))
	assert.Equal(t, "ws://127.0.0.1:4000/channel?token=x", u.Query().Get("channel"))

	_, err = hostPage("http://[::1", "", "")
	assert.Error(t, err)
}
