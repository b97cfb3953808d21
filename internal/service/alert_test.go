package service

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-ui-client/internal/cache"
	"github.com/target/mmk-ui-client/internal/domain/model"
	apierrors "github.com/target/mmk-ui-client/internal/errors"
)

func alertsAPIHandler(statsCalls *atomic.Int64) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /alerts", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("unresolved") == "true" {
			_, _ = w.Write([]byte(`{"alerts":[{"id":"a1","site_id":"s1","rule_type":"unknown_domain","severity":"high","title":"new domain","description":"d","fired_at":"2026-08-01T10:00:00Z","created_at":"2026-08-01T10:00:00Z"}],"total":1}`))
			return
		}
		_, _ = w.Write([]byte(`{"alerts":[],"total":0}`))
	})
	mux.HandleFunc("GET /alerts/stats", func(w http.ResponseWriter, r *http.Request) {
		statsCalls.Add(1)
		_, _ = w.Write([]byte(`{"total":12,"critical":1,"high":3,"medium":4,"low":2,"info":2,"unresolved":5}`))
	})
	mux.HandleFunc("PUT /alerts/a1/resolve", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"a1","site_id":"s1","rule_type":"unknown_domain","severity":"high","title":"new domain","description":"d","fired_at":"2026-08-01T10:00:00Z","resolved_at":"2026-08-01T11:00:00Z","resolved_by":"operator","created_at":"2026-08-01T10:00:00Z"}`))
	})
	mux.HandleFunc("GET /alerts/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"alert not found"}`))
	})

	return mux
}

func TestAlertService_ListWithFilter(t *testing.T) {
	var statsCalls atomic.Int64
	fx := newServiceFixture(t, alertsAPIHandler(&statsCalls))

	svc, err := NewAlertService(AlertServiceOptions{Client: fx.client})
	require.NoError(t, err)

	list, err := svc.List(context.Background(), model.AlertListOptions{Unresolved: true})
	require.NoError(t, err)
	require.Len(t, list.Alerts, 1)
	assert.Equal(t, model.AlertSeverityHigh, list.Alerts[0].Severity)
	assert.False(t, list.Alerts[0].Resolved())
}

func TestAlertService_StatsAreCached(t *testing.T) {
	var statsCalls atomic.Int64
	fx := newServiceFixture(t, alertsAPIHandler(&statsCalls))

	svc, err := NewAlertService(AlertServiceOptions{Client: fx.client, Cache: cache.NewMemory()})
	require.NoError(t, err)
	ctx := context.Background()

	first, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, first.Total)

	_, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), statsCalls.Load())
}

func TestAlertService_ResolveInvalidatesStats(t *testing.T) {
	var statsCalls atomic.Int64
	fx := newServiceFixture(t, alertsAPIHandler(&statsCalls))

	svc, err := NewAlertService(AlertServiceOptions{Client: fx.client, Cache: cache.NewMemory()})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Stats(ctx)
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, "a1", model.ResolveAlertRequest{ResolvedBy: "operator"})
	require.NoError(t, err)
	assert.True(t, resolved.Resolved())

	_, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), statsCalls.Load(), "stats after resolve must refetch")
}

func TestAlertService_ResolveRequiresResolver(t *testing.T) {
	var statsCalls atomic.Int64
	fx := newServiceFixture(t, alertsAPIHandler(&statsCalls))

	svc, err := NewAlertService(AlertServiceOptions{Client: fx.client})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), "a1", model.ResolveAlertRequest{})
	require.Error(t, err)
}

func TestAlertService_GetMissingIsNotFound(t *testing.T) {
	var statsCalls atomic.Int64
	fx := newServiceFixture(t, alertsAPIHandler(&statsCalls))

	svc, err := NewAlertService(AlertServiceOptions{Client: fx.client})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, apierrors.ErrCodeNotFound, apierrors.GetCode(err))
}
