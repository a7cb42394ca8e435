package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerExposesCollectors(t *testing.T) {
	SelectionsTotal.Inc()
	FilterChangesTotal.WithLabelValues("Islam").Inc()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "religionmap_selections_total")
	assert.Contains(t, body, `religionmap_filter_changes_total{filter="Islam"}`)
	assert.Contains(t, body, "religionmap_unmatched_features")
}
