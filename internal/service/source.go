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

const sourceCachePrefix = "sources:"

// SourceServiceOptions groups dependencies for SourceService.
type SourceServiceOptions struct {
	Client  *transport.Client
	Cache   ports.Cache
	Logger  *slog.Logger
	ListTTL time.Duration
	ItemTTL time.Duration
}

// SourceService is the typed surface over the /sources endpoints.
type SourceService struct {
	client  *transport.Client
	cache   ports.Cache
	logger  *slog.Logger
	listTTL time.Duration
	itemTTL time.Duration
}

// NewSourceService constructs a SourceService.
func NewSourceService(opts SourceServiceOptions) (*SourceService, error) {
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
	return &SourceService{
		client:  opts.Client,
		cache:   opts.Cache,
		logger:  logger,
		listTTL: listTTL,
		itemTTL: itemTTL,
	}, nil
}

// List returns a page of sources.
func (s *SourceService) List(ctx context.Context, opts model.SourceListOptions) (model.SourceList, error) {
	query := opts.Query()
	var list model.SourceList
	err := cachedFetch(ctx, s.cache, s.logger, sourceCachePrefix+"list:"+query.Encode(), s.listTTL, &list, func() error {
		return s.client.Get(ctx, "/sources", query, &list)
	})
	if err != nil {
		return model.SourceList{}, fmt.Errorf("list sources: %w", err)
	}
	return list, nil
}

// Get returns one source by ID.
func (s *SourceService) Get(ctx context.Context, id string) (model.Source, error) {
	if id == "" {
		return model.Source{}, errors.New("source ID is required")
	}
	var source model.Source
	err := cachedFetch(ctx, s.cache, s.logger, sourceCachePrefix+"id:"+id, s.itemTTL, &source, func() error {
		return s.client.Get(ctx, "/sources/"+id, nil, &source)
	})
	if err != nil {
		return model.Source{}, fmt.Errorf("get source: %w", err)
	}
	return source, nil
}

// Create creates a source and invalidates cached source reads.
func (s *SourceService) Create(ctx context.Context, req model.CreateSourceRequest) (model.Source, error) {
	if err := req.Validate(); err != nil {
		return model.Source{}, err
	}
	var source model.Source
	if err := s.client.Post(ctx, "/sources", req, &source); err != nil {
		return model.Source{}, fmt.Errorf("create source: %w", err)
	}
	invalidatePrefix(ctx, s.cache, s.logger, sourceCachePrefix)
	return source, nil
}

// Update updates a source and invalidates cached source reads.
func (s *SourceService) Update(ctx context.Context, id string, req model.UpdateSourceRequest) (model.Source, error) {
	if id == "" {
		return model.Source{}, errors.New("source ID is required")
	}
	if err := req.Validate(); err != nil {
		return model.Source{}, err
	}
	var source model.Source
	if err := s.client.Put(ctx, "/sources/"+id, req, &source); err != nil {
		return model.Source{}, fmt.Errorf("update source: %w", err)
	}
	invalidatePrefix(ctx, s.cache, s.logger, sourceCachePrefix)
	return source, nil
}

// Delete removes a source and invalidates cached source reads.
func (s *SourceService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("source ID is required")
	}
	if err := s.client.Delete(ctx, "/sources/"+id); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	invalidatePrefix(ctx, s.cache, s.logger, sourceCachePrefix)
	return nil
}
