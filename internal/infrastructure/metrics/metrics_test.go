package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
)

type stubNotifier struct{ err error }

func (s stubNotifier) Notify(context.Context, wishlist.Event) error { return s.err }

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/wishlists/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/wishlists/1", "/wishlists/2", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/wishlists/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestNotifierCountsActivityAndFailures(t *testing.T) {
	m := New()
	event := wishlist.Event{Entry: wishlist.ActivityEntry{Verb: wishlist.VerbReserved}}

	require.NoError(t, m.Notifier(stubNotifier{}).Notify(context.Background(), event))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Notifier(stubNotifier{err: boom}).Notify(context.Background(), event), boom)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.activity.WithLabelValues(wishlist.VerbReserved)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifyFailures.WithLabelValues(wishlist.VerbReserved)))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.activity.WithLabelValues(wishlist.VerbShared).Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `giftlist_wishlist_activity_total{verb="shared"} 1`)
}
