package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics(t *testing.T) {
	var rec Recorder = Prometheus{}

	RecordBackendRequest("albums.create", http.StatusCreated, 20*time.Millisecond)
	RecordBackendRequest("albums.list", 0, time.Millisecond)
	rec.Toggle("veils")
	rec.GroupSave("vest", nil)
	rec.GroupSave("vest", errors.New("boom"))
	rec.Coalesced()
	rec.Album("wedding-dress", nil)

	body := scrape(t)
	assert.Contains(t, body, `wedx_backend_requests_total{operation="albums.create",status="201"} 1`)
	assert.Contains(t, body, `wedx_backend_requests_total{operation="albums.list",status="error"} 1`)
	assert.Contains(t, body, `wedx_selection_toggles_total{category="veils"} 1`)
	assert.Contains(t, body, `wedx_selection_group_saves_total{group="vest",success="true"} 1`)
	assert.Contains(t, body, `wedx_selection_group_saves_total{group="vest",success="false"} 1`)
	assert.Contains(t, body, `wedx_selection_coalesced_saves_total 1`)
	assert.Contains(t, body, `wedx_albums_created_total{success="true",type="wedding-dress"} 1`)
	assert.Contains(t, body, `wedx_backend_request_duration_seconds_count{operation="albums.create"} 1`)
}

func TestNop(t *testing.T) {
	var rec Recorder = Nop{}
	assert.NotPanics(t, func() {
		rec.Toggle("x")
		rec.GroupSave("x", nil)
		rec.Coalesced()
		rec.Album("x", nil)
	})
}
