package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHealth(t *testing.T) {
	t.Cleanup(func() { atomic.StoreInt32(&healthy, 1) })

	h := NewHandler()

	w := httptest.NewRecorder()
	h.GetHealth(w, httptest.NewRequest("GET", "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Timestamp)
	assert.NotEmpty(t, resp.Uptime)
}

func TestGetHealthAfterShutdownStarts(t *testing.T) {
	t.Cleanup(func() { atomic.StoreInt32(&healthy, 1) })

	SetUnhealthy()

	h := NewHandler()
	w := httptest.NewRecorder()
	h.GetHealth(w, httptest.NewRequest("GET", "/api/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
}
