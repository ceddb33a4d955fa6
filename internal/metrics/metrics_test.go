package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentHandlerUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Delete("/api/announcement/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodDelete, "/api/announcement/{id}", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/announcement/9", nil))
	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodDelete, "/api/announcement/{id}", "404"))

	assert.Equal(t, before+1, after)
}

func TestRecordGameAPICall(t *testing.T) {
	before := testutil.ToFloat64(gameAPICalls.WithLabelValues("wars", "query", "error"))
	RecordGameAPICall("wars", "query", errors.New("boom"), 10*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(gameAPICalls.WithLabelValues("wars", "query", "error")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordActivityLogFailure()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lotus_activity_log_failures_total")
}
