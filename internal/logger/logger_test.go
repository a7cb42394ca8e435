package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	l := SetupWriter(&buf, "warn", "text")
	l.Info("hidden")
	l.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Same(t, l, L())
}

func TestAccessMiddlewareJSON(t *testing.T) {
	var buf bytes.Buffer
	l := SetupWriter(&buf, "debug", "json")
	h := AccessMiddleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("abc"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/map.svg?x=1", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "http_access", entry["msg"])
	assert.Equal(t, "/api/map.svg", entry["path"])
	assert.Equal(t, "x=1", entry["query"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, float64(3), entry["bytes"])
}
