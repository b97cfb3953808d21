package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/mmk-ui-client/internal/domain/model"
	"github.com/target/mmk-ui-client/internal/ports"
	"github.com/target/mmk-ui-client/internal/transport"
)

const alertCachePrefix = "alerts:"

// AlertServiceOptions groups dependencies for AlertService.
type AlertServiceOptions struct {
	Client  *transport.Client
	Cache   ports.Cache
	Logger  *slog.Logger
	ListTTL time.Duration
}

// AlertService is the typed surface over the /alerts endpoints. Only the
// stats read is cached; alert lists are usually watched for changes.
type AlertService struct {
	client  *transport.Client
	cache   ports.Cache
	logger  *slog.Logger
	listTTL time.Duration
}

// NewAlertService constructs an AlertService.
func NewAlertService(opts AlertServiceOptions) (*AlertService, error) {
	if opts.Client == nil {
		return nil, errors.New("transport client is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	listTTL := opts.ListTTL
	if listTTL <= 0 {
		listTTL = defaultListTTL
	}
	return &AlertService{
		client:  opts.Client,
		cache:   opts.Cache,
		logger:  logger,
		listTTL: listTTL,
	}, nil
}

// List returns a page of alerts.
func (s *AlertService) List(ctx context.Context, opts model.AlertListOptions) (model.AlertList, error) {
	var list model.AlertList
	if err := s.client.Get(ctx, "/alerts", opts.Query(), &list); err != nil {
		return model.AlertList{}, fmt.Errorf("list alerts: %w", err)
	}
	return list, nil
}

// Get returns one alert by ID.
func (s *AlertService) Get(ctx context.Context, id string) (model.Alert, error) {
	if id == "" {
		return model.Alert{}, errors.New("alert ID is required")
	}
	var alert model.Alert
	if err := s.client.Get(ctx, "/alerts/"+id, nil, &alert); err != nil {
		return model.Alert{}, fmt.Errorf("get alert: %w", err)
	}
	return alert, nil
}

// Resolve acknowledges an alert and invalidates cached stats.
func (s *AlertService) Resolve(ctx context.Context, id string, req model.ResolveAlertRequest) (model.Alert, error) {
	if id == "" {
		return model.Alert{}, errors.New("alert ID is required")
	}
	if err := req.Validate(); err != nil {
		return model.Alert{}, err
	}
	var alert model.Alert
	if err := s.client.Put(ctx, "/alerts/"+id+"/resolve", req, &alert); err != nil {
		return model.Alert{}, fmt.Errorf("resolve alert: %w", err)
	}
	invalidatePrefix(ctx, s.cache, s.logger, alertCachePrefix)
	return alert, nil
}

// Stats returns the severity breakdown used by the dashboard, cached for
// the list TTL.
func (s *AlertService) Stats(ctx context.Context) (model.AlertStats, error) {
	var stats model.AlertStats
	err := cachedFetch(ctx, s.cache, s.logger, alertCachePrefix+"stats", s.listTTL, &stats, func() error {
		return s.client.Get(ctx, "/alerts/stats", nil, &stats)
	})
	if err != nil {
		return model.AlertStats{}, fmt.Errorf("alert stats: %w", err)
	}
	return stats, nil
}
