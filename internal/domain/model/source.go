package model

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Source is a browser script source as returned by the API.
type Source struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	Test      bool      `json:"test"`
	Secrets   []string  `json:"secrets"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateSourceRequest carries parameters for POST /sources.
type CreateSourceRequest struct {
	Name    string   `json:"name"`
	Value   string   `json:"value"`
	Test    bool     `json:"test,omitempty"`
	Secrets []string `json:"secrets,omitempty"`
}

// Validate checks the request before it is sent.
func (r *CreateSourceRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(r.Name) > maxNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	if strings.TrimSpace(r.Value) == "" {
		return errors.New("value is required")
	}
	for _, secret := range r.Secrets {
		if strings.TrimSpace(secret) == "" {
			return errors.New("secrets cannot contain empty entries")
		}
	}
	return nil
}

// UpdateSourceRequest carries parameters for PUT /sources/{id}.
type UpdateSourceRequest struct {
	Name    *string  `json:"name,omitempty"`
	Value   *string  `json:"value,omitempty"`
	Test    *bool    `json:"test,omitempty"`
	Secrets []string `json:"secrets,omitempty"`
}

// HasUpdates reports whether any field is set.
func (r *UpdateSourceRequest) HasUpdates() bool {
	return r.Name != nil || r.Value != nil || r.Test != nil || r.Secrets != nil
}

// Validate checks the request before it is sent.
func (r *UpdateSourceRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return errors.New("name cannot be empty")
		}
		if utf8.RuneCountInString(name) > maxNameLen {
			return errors.New("name cannot exceed 255 characters")
		}
	}
	if r.Value != nil && strings.TrimSpace(*r.Value) == "" {
		return errors.New("value cannot be empty")
	}
	for _, secret := range r.Secrets {
		if strings.TrimSpace(secret) == "" {
			return errors.New("secrets cannot contain empty entries")
		}
	}
	return nil
}

// SourceListOptions controls filtering and paging for GET /sources.
type SourceListOptions struct {
	Q      string
	Test   *bool
	Sort   string
	Dir    string
	Limit  int
	Offset int
}

// Query encodes the options as URL query parameters.
func (o SourceListOptions) Query() url.Values {
	q := pagingQuery(o.Limit, o.Offset, o.Sort, o.Dir)
	if o.Q != "" {
		q.Set("q", o.Q)
	}
	if o.Test != nil {
		q.Set("test", strconv.FormatBool(*o.Test))
	}
	return q
}

// SourceList is the paged response for GET /sources.
type SourceList struct {
	Sources []Source `json:"sources"`
	Total   int      `json:"total"`
}
