package supasaas

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `[]`)
	})
}

func TestClientSelect(t *testing.T) {
	t.Run("should fall back to the anonymous client when no service role is configured", func(t *testing.T) {
		client, _ := newTestClient(t, okHandler(t))

		require.NotNil(t, client.Select(false))
		assert.Same(t, client.Select(false), client.Select(true))
	})

	t.Run("should return a distinct privileged client when configured", func(t *testing.T) {
		server := newTestServer(t, okHandler(t))
		rec := &recorder{}
		client := NewClient(Login{URL: server.URL, Key: "anon-key", ServiceRole: "service-key"}, WithLogger(rec.logFunc()))

		require.NotNil(t, client.Select(true))
		assert.NotSame(t, client.Select(false), client.Select(true))
	})

	t.Run("should log both handle initializations", func(t *testing.T) {
		server := newTestServer(t, okHandler(t))
		rec := &recorder{}
		NewClient(Login{URL: server.URL, Key: "anon-key", ServiceRole: "service-key"}, WithLogger(rec.logFunc()))

		require.Len(t, rec.byAction("Default client initialized"), 1)
		require.Len(t, rec.byAction("Service role client initialized"), 1)
		assert.Empty(t, rec.byLevel("error"))
	})

	t.Run("should log and leave the handles absent when the url cannot be parsed", func(t *testing.T) {
		rec := &recorder{}
		client := NewClient(Login{URL: "http://[::1", Key: "anon-key"}, WithLogger(rec.logFunc()))

		assert.Nil(t, client.Select(false))
		assert.Nil(t, client.SelectStorage(false))
		entries := rec.byLevel("error")
		require.NotEmpty(t, entries)
		assert.Equal(t, "initialize client", entries[0].action)
		assert.Error(t, entries[0].err)
	})
}

func TestClientSelectStorage(t *testing.T) {
	t.Run("should mirror the tier fallback of Select", func(t *testing.T) {
		client, _ := newTestClient(t, okHandler(t))

		require.NotNil(t, client.SelectStorage(false))
		assert.Same(t, client.SelectStorage(false), client.SelectStorage(true))
	})

	t.Run("should return a distinct privileged storage client when configured", func(t *testing.T) {
		server := newTestServer(t, okHandler(t))
		rec := &recorder{}
		client := NewClient(Login{URL: server.URL, Key: "anon-key", ServiceRole: "service-key"}, WithLogger(rec.logFunc()))

		require.NotNil(t, client.SelectStorage(true))
		assert.NotSame(t, client.SelectStorage(false), client.SelectStorage(true))
	})
}

func TestClientRefresh(t *testing.T) {
	t.Run("should rebuild both handles from the stored login", func(t *testing.T) {
		client, _ := newTestClient(t, okHandler(t))
		apiBefore := client.Select(false)
		storageBefore := client.SelectStorage(false)

		client.Refresh()

		assert.NotSame(t, apiBefore, client.Select(false))
		assert.NotSame(t, storageBefore, client.SelectStorage(false))
	})
}
