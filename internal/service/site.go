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

const (
	siteCachePrefix = "sites:"
	defaultListTTL  = 30 * time.Second
	defaultItemTTL  = 5 * time.Minute
)

// SiteServiceOptions groups dependencies for SiteService.
type SiteServiceOptions struct {
	Client *transport.Client
	Cache  ports.Cache // optional
	Logger *slog.Logger

	// ListTTL and ItemTTL override the cache lifetimes. Zero selects the
	// defaults.
	ListTTL time.Duration
	ItemTTL time.Duration
}

// SiteService is the typed surface over the /sites endpoints with
// read-through caching.
type SiteService struct {
	client  *transport.Client
	cache   ports.Cache
	logger  *slog.Logger
	listTTL time.Duration
	itemTTL time.Duration
}

// NewSiteService constructs a SiteService.
func NewSiteService(opts SiteServiceOptions) (*SiteService, error) {
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
	itemTTL := opts.ItemTTL
	if itemTTL <= 0 {
		itemTTL = defaultItemTTL
	}
	return &SiteService{
		client:  opts.Client,
		cache:   opts.Cache,
		logger:  logger,
		listTTL: listTTL,
		itemTTL: itemTTL,
	}, nil
}

// List returns a page of sites.
func (s *SiteService) List(ctx context.Context, opts model.SiteListOptions) (model.SiteList, error) {
	query := opts.Query()
	var list model.SiteList
	err := cachedFetch(ctx, s.cache, s.logger, siteCachePrefix+"list:"+query.Encode(), s.listTTL, &list, func() error {
		return s.client.Get(ctx, "/sites", query, &list)
	})
	if err != nil {
		return model.SiteList{}, fmt.Errorf("list sites: %w", err)
	}
	return list, nil
}

// Get returns one site by ID.
func (s *SiteService) Get(ctx context.Context, id string) (model.Site, error) {
	if id == "" {
		return model.Site{}, errors.New("site ID is required")
	}
	var site model.Site
	err := cachedFetch(ctx, s.cache, s.logger, siteCachePrefix+"id:"+id, s.itemTTL, &site, func() error {
		return s.client.Get(ctx, "/sites/"+id, nil, &site)
	})
	if err != nil {
		return model.Site{}, fmt.Errorf("get site: %w", err)
	}
	return site, nil
}

// Create creates a site and invalidates cached site reads.
func (s *SiteService) Create(ctx context.Context, req model.CreateSiteRequest) (model.Site, error) {
	if err := req.Validate(); err != nil {
		return model.Site{}, err
	}
	var site model.Site
	if err := s.client.Post(ctx, "/sites", req, &site); err != nil {
		return model.Site{}, fmt.Errorf("create site: %w", err)
	}
	invalidatePrefix(ctx, s.cache, s.logger, siteCachePrefix)
	return site, nil
}

// Update updates a site and invalidates cached site reads.
func (s *SiteService) Update(ctx context.Context, id string, req model.UpdateSiteRequest) (model.Site, error) {
	if id == "" {
		return model.Site{}, errors.New("site ID is required")
	}
	if err := req.Validate(); err != nil {
		return model.Site{}, err
	}
	var site model.Site
	if err := s.client.Put(ctx, "/sites/"+id, req, &site); err != nil {
		return model.Site{}, fmt.Errorf("update site: %w", err)
	}
	invalidatePrefix(ctx, s.cache, s.logger, siteCachePrefix)
	return site, nil
}

// Delete removes a site and invalidates cached site reads.
func (s *SiteService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("site ID is required")
	}
	if err := s.client.Delete(ctx, "/sites/"+id); err != nil {
		return fmt.Errorf("delete site: %w", err)
	}
	invalidatePrefix(ctx, s.cache, s.logger, siteCachePrefix)
	return nil
}
