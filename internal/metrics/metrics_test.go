package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAdmission(t *testing.T) {
	before := testutil.ToFloat64(admissions.WithLabelValues("van", OutcomeConflict))
	RecordAdmission("van", OutcomeConflict)
	assert.Equal(t, before+1, testutil.ToFloat64(admissions.WithLabelValues("van", OutcomeConflict)))
}

func TestRecordPublish(t *testing.T) {
	ok := testutil.ToFloat64(eventsPublished.WithLabelValues("ok"))
	failed := testutil.ToFloat64(eventsPublished.WithLabelValues("error"))
	RecordPublish(nil)
	RecordPublish(errors.New("down"))
	assert.Equal(t, ok+1, testutil.ToFloat64(eventsPublished.WithLabelValues("ok")))
	assert.Equal(t, failed+1, testutil.ToFloat64(eventsPublished.WithLabelValues("error")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveHTTP("/v1/offerings", http.MethodGet, http.StatusOK, 3*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/v1/offerings",status="200"}`)
	assert.Contains(t, rec.Body.String(), "http_request_duration_seconds")
}
