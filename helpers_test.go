package supasaas

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ashrobertsdragon/SupaSaaS/logging"
)

// logEntry is one recorded logger call.
type logEntry struct {
	level  string
	action string
	err    error
	fields map[string]any
}

// recorder captures logger calls so tests can assert on them.
type recorder struct {
	mu      sync.Mutex
	entries []logEntry
}

func (r *recorder) logFunc() logging.Func {
	return func(level, action string, err error, fields ...logging.Field) {
		r.mu.Lock()
		defer r.mu.Unlock()
		entry := logEntry{level: level, action: action, err: err, fields: map[string]any{}}
		for _, f := range fields {
			entry.fields[f.Key] = f.Value
		}
		r.entries = append(r.entries, entry)
	}
}

func (r *recorder) byLevel(level string) []logEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []logEntry
	for _, e := range r.entries {
		if e.level == level {
			matched = append(matched, e)
		}
	}
	return matched
}

func (r *recorder) byAction(action string) []logEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []logEntry
	for _, e := range r.entries {
		if e.action == action {
			matched = append(matched, e)
		}
	}
	return matched
}

func (r *recorder) last() logEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return logEntry{}
	}
	return r.entries[len(r.entries)-1]
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// newTestClient builds an anonymous-only registry pointed at a fake
// backend, with a recording logger injected.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *recorder) {
	t.Helper()
	server := newTestServer(t, handler)
	rec := &recorder{}
	client := NewClient(Login{URL: server.URL, Key: "anon-key"}, WithLogger(rec.logFunc()))
	return client, rec
}

// newOfflineDB builds a table facade whose registry points nowhere, for
// paths that must fail before any request is sent.
func newOfflineDB(t *testing.T) (*DB, *recorder) {
	t.Helper()
	rec := &recorder{}
	client := NewClient(Login{URL: "http://127.0.0.1:1", Key: "anon-key"}, WithLogger(rec.logFunc()))
	return NewDB(client, WithLogger(rec.logFunc())), rec
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		t.Errorf("writing response: %v", err)
	}
}
