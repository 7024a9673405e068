package stac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stac-explorer/internal/stac"
)

func rootServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchCatalogInfo(t *testing.T) {
	server := rootServer(t, http.StatusOK, `{
		"type": "Catalog",
		"id": "earth-search-aws",
		"title": "Earth Search by Element 84",
		"description": "A STAC API of public datasets on AWS",
		"stac_version": "1.0.0"
	}`)

	info, err := stac.FetchCatalogInfo(server.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, "earth-search-aws", info.ID)
	assert.Equal(t, "Earth Search by Element 84", info.Title)
	assert.Equal(t, "1.0.0", info.StacVersion)
	assert.Equal(t, server.URL, info.URL, "trailing slash is stripped")
}

func TestValidateCatalogURL(t *testing.T) {
	t.Run("accepts a STAC root", func(t *testing.T) {
		server := rootServer(t, http.StatusOK, `{"id":"cat","stac_version":"1.0.0"}`)

		ok, err := stac.ValidateCatalogURL(server.URL)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects JSON without stac_version", func(t *testing.T) {
		server := rootServer(t, http.StatusOK, `{"name":"some other api","version":"2.1"}`)

		ok, err := stac.ValidateCatalogURL(server.URL)
		require.Error(t, err)
		assert.False(t, ok)
		assert.Contains(t, err.Error(), "stac_version")
	})

	t.Run("rejects a non-200 root", func(t *testing.T) {
		server := rootServer(t, http.StatusNotFound, `not found`)

		ok, err := stac.ValidateCatalogURL(server.URL)
		require.Error(t, err)
		assert.False(t, ok)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("rejects non-JSON bodies", func(t *testing.T) {
		server := rootServer(t, http.StatusOK, `<html><body>welcome</body></html>`)

		ok, err := stac.ValidateCatalogURL(server.URL)
		require.Error(t, err)
		assert.False(t, ok)
	})

	t.Run("rejects an empty URL", func(t *testing.T) {
		ok, err := stac.ValidateCatalogURL("   ")
		require.Error(t, err)
		assert.False(t, ok)
	})
}
