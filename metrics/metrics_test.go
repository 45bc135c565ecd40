package metrics

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegisterOnCallerRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.ObserveTickDuration("http://one.example.com", 125*time.Millisecond)
	m.CountTickFailure("http://one.example.com")
	m.ObserveTorrentSize("http://one.example.com", "cleanup", 30000)
	m.CountDeletion("http://one.example.com", "cleanup")
	m.SetWatched("http://one.example.com", "cleanup", 3, 90000)

	require.Equal(t, 1.0, testutil.ToFloat64(m.TickFailures("http://one.example.com")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.WatchedCount("http://one.example.com", "cleanup")))

	// A second registry gets its own vectors without clashing with the
	// first, so nothing is registered globally.
	other := New(prometheus.NewRegistry())
	require.Equal(t, 0.0, testutil.ToFloat64(other.TickFailures("http://one.example.com")))
}

func TestServerServesMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)
	m.CountTickFailure("http://one.example.com")

	srv := NewServer("127.0.0.1:0", registry)
	ts := httptest.NewServer(srv.srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "instance_fetch_failure_count")
}
