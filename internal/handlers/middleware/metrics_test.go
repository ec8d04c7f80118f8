package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics-test/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	srv := httptest.NewServer(MetricsMiddleware()(mux))
	defer srv.Close()

	before := promtest.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "GET /metrics-test/{id}", "202"))
	unmatchedBefore := promtest.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404"))

	for _, path := range []string{"/metrics-test/1", "/metrics-test/2", "/nowhere"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	require.Equal(t, before+2, promtest.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "GET /metrics-test/{id}", "202")), "requests are labeled by route pattern")
	require.Equal(t, unmatchedBefore+1, promtest.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
