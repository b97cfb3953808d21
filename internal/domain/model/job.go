package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// JobType identifies what a job executes.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobType string

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobTypeBrowser JobType = "browser"
	JobTypeRules   JobType = "rules"
	JobTypeAlert   JobType = "alert"

	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Valid reports whether the job type is supported.
func (t JobType) Valid() bool {
	return t == JobTypeBrowser || t == JobTypeRules || t == JobTypeAlert
}

// UnmarshalText implements encoding.TextUnmarshaler for flag and env parsing.
func (t *JobType) UnmarshalText(text []byte) error {
	v := JobType(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid job type: %q", string(text))
	}
	*t = v
	return nil
}

// Valid reports whether the job status is supported.
func (s JobStatus) Valid() bool {
	return s == JobStatusPending || s == JobStatusRunning ||
		s == JobStatusCompleted || s == JobStatusFailed
}

// Job is a queued or executed job as returned by the API.
type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Status      JobStatus       `json:"status"`
	Payload     json.RawMessage `json:"payload"`
	SiteID      *string         `json:"site_id,omitempty"`
	SourceID    *string         `json:"source_id,omitempty"`
	IsTest      bool            `json:"is_test"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	LastError   *string         `json:"last_error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateJobRequest carries parameters for POST /jobs. The usual case is a
// test run of a source before enabling a site on it.
type CreateJobRequest struct {
	Type     JobType         `json:"type"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	SiteID   *string         `json:"site_id,omitempty"`
	SourceID *string         `json:"source_id,omitempty"`
	IsTest   bool            `json:"is_test,omitempty"`
}

// Validate checks the request before it is sent.
func (r *CreateJobRequest) Validate() error {
	if !r.Type.Valid() {
		return errors.New("invalid job type")
	}
	if r.Type == JobTypeBrowser && r.SourceID == nil && len(r.Payload) == 0 {
		return errors.New("browser jobs need a source_id or a payload")
	}
	return nil
}

// JobListOptions controls filtering and paging for GET /jobs.
type JobListOptions struct {
	SiteID string
	Type   JobType
	Status JobStatus
	Sort   string
	Dir    string
	Limit  int
	Offset int
}

// Query encodes the options as URL query parameters.
func (o JobListOptions) Query() url.Values {
	q := pagingQuery(o.Limit, o.Offset, o.Sort, o.Dir)
	if o.SiteID != "" {
		q.Set("site_id", o.SiteID)
	}
	if o.Type != "" {
		q.Set("type", string(o.Type))
	}
	if o.Status != "" {
		q.Set("status", string(o.Status))
	}
	return q
}

// JobList is the paged response for GET /jobs.
type JobList struct {
	Jobs  []Job `json:"jobs"`
	Total int   `json:"total"`
}
