package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/mmk-ui-client/internal/domain/model"
	"github.com/target/mmk-ui-client/internal/transport"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Client *transport.Client
	Logger *slog.Logger
}

// JobService is the typed surface over the /jobs endpoints. Job state
// changes too quickly to be worth caching.
type JobService struct {
	client *transport.Client
	logger *slog.Logger
}

// NewJobService constructs a JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Client == nil {
		return nil, errors.New("transport client is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{client: opts.Client, logger: logger}, nil
}

// List returns a page of jobs.
func (s *JobService) List(ctx context.Context, opts model.JobListOptions) (model.JobList, error) {
	var list model.JobList
	if err := s.client.Get(ctx, "/jobs", opts.Query(), &list); err != nil {
		return model.JobList{}, fmt.Errorf("list jobs: %w", err)
	}
	return list, nil
}

// Get returns one job by ID.
func (s *JobService) Get(ctx context.Context, id string) (model.Job, error) {
	if id == "" {
		return model.Job{}, errors.New("job ID is required")
	}
	var job model.Job
	if err := s.client.Get(ctx, "/jobs/"+id, nil, &job); err != nil {
		return model.Job{}, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Create enqueues a job, typically a test run of a source.
func (s *JobService) Create(ctx context.Context, req model.CreateJobRequest) (model.Job, error) {
	if err := req.Validate(); err != nil {
		return model.Job{}, err
	}
	var job model.Job
	if err := s.client.Post(ctx, "/jobs", req, &job); err != nil {
		return model.Job{}, fmt.Errorf("create job: %w", err)
	}
	s.logger.Info("job created", "job", job.ID, "type", job.Type)
	return job, nil
}
