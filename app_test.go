package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stac-explorer/internal/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	config.SetSettingsDir(t.TempDir())
	t.Cleanup(func() { config.SetSettingsDir("") })

	app := NewApp()
	t.Cleanup(func() { app.Shutdown(context.Background()) })
	return app
}

func TestSetAutoRetryRateLimitPersists(t *testing.T) {
	app := newTestApp(t)

	app.SetAutoRetryRateLimit(false)

	loaded, err := config.LoadSettings()
	require.NoError(t, err)
	assert.False(t, loaded.AutoRetryOnRateLimit, "toggle must survive a restart")

	app.SetAutoRetryRateLimit(true)

	loaded, err = config.LoadSettings()
	require.NoError(t, err)
	assert.True(t, loaded.AutoRetryOnRateLimit)
}

func TestGetShareableURL(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, "stac-explorer://search", app.GetShareableURL())

	app.history.Push("c=sentinel-2-l2a")
	assert.Equal(t, "stac-explorer://search?c=sentinel-2-l2a", app.GetShareableURL())
}
