package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_LabelsByRouteTemplate(t *testing.T) {
	r := newRouter(Metrics())
	r.GET("/memories/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/memories/:id", "200"))
	serve(r, httptest.NewRequest(http.MethodGet, "/memories/abc", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/memories/def", nil))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/memories/:id", "200"))
	assert.Equal(t, before+2, after)
}

func TestMetrics_UnmatchedRoute(t *testing.T) {
	r := newRouter(Metrics())

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404"))
	serve(r, httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")))
}

func TestObserveReactionToggle(t *testing.T) {
	added := reactionToggles.WithLabelValues("memory", "added")
	removed := reactionToggles.WithLabelValues("memory", "removed")
	a, rm := testutil.ToFloat64(added), testutil.ToFloat64(removed)

	ObserveReactionToggle("memory", true)
	ObserveReactionToggle("memory", false)
	ObserveReactionToggle("memory", true)

	assert.Equal(t, a+2, testutil.ToFloat64(added))
	assert.Equal(t, rm+1, testutil.ToFloat64(removed))
}
