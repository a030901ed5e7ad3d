package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObservePass("full", 10*time.Millisecond, nil)
	m.ObservePass("full", 10*time.Millisecond, errors.New("boom"))
	m.ObserveWrite(true, 4)
	m.ObserveWrite(false, 3)
	m.ObserveSkip()
	m.ObserveEvent(domain.EventTypeNetworkConnect)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.passes.WithLabelValues("full", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.passes.WithLabelValues("full", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.writes))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ownedEntries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skips))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("connect")))
}

func TestServer_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveSkip()

	srv := httptest.NewServer(NewServer("", reg, zerolog.Nop()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "docker_hosts_sync_unchanged_skips_total 1")
}
