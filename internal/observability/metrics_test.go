package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apartinvest/server/internal/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	observability.ObserveHTTP("/api/projects", http.MethodGet, http.StatusOK, 15*time.Millisecond)
	observability.ObserveExternal("telegram", http.StatusOK, 120*time.Millisecond)
	observability.ObserveCatalog(3, 1, 1)
	observability.ObserveSourceError("projects_generated")
	observability.ObserveNotification("sent")

	srv := httptest.NewServer(observability.MetricsHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := string(body)
	for _, want := range []string{
		"apartinvest_http_requests_total",
		"apartinvest_http_request_duration_seconds",
		"apartinvest_external_requests_total",
		`apartinvest_catalog_records_total{outcome="rejected"}`,
		`apartinvest_catalog_source_errors_total{source="projects_generated"}`,
		`apartinvest_lead_notifications_total{outcome="sent"}`,
	} {
		assert.True(t, strings.Contains(out, want), "metrics output should contain %s", want)
	}
}
