package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/model"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/store"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/api/items", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "/api/items", 200, 20*time.Millisecond)
	m.ObserveRequest("GET", "", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/items", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestWatchStoreSetsGauges(t *testing.T) {
	m := New()
	s := store.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())

	_, err := s.CreateItem(ctx, model.InsertItem{Name: "x"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, model.InsertUser{Username: "u"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- m.WatchStore(ctx, s, time.Hour) }()

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.entities.WithLabelValues("items")) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.entities.WithLabelValues("users")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.entities.WithLabelValues("messages")))

	cancel()
	require.NoError(t, <-done)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest("POST", "/api/items", 201, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "reunite_http_requests_total"))
}
