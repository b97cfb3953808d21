// Package model defines the API resource shapes the client exchanges with
// the Merry Maker backend, plus request validation run before anything is
// sent over the wire.
package model

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const maxNameLen = 255

// SiteAlertMode controls how alerts are delivered for a site.
type SiteAlertMode string

const (
	SiteAlertModeActive SiteAlertMode = "active"
	SiteAlertModeMuted  SiteAlertMode = "muted"
)

// Valid reports whether the site alert mode is supported.
func (m SiteAlertMode) Valid() bool {
	switch m {
	case SiteAlertModeActive, SiteAlertModeMuted:
		return true
	default:
		return false
	}
}

// Site is a monitored site configuration as returned by the API.
type Site struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Enabled         bool          `json:"enabled"`
	AlertMode       SiteAlertMode `json:"alert_mode"`
	Scope           *string       `json:"scope,omitempty"`
	LastRun         *time.Time    `json:"last_run,omitempty"`
	RunEveryMinutes int           `json:"run_every_minutes"`
	SourceID        string        `json:"source_id"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// CreateSiteRequest carries parameters for POST /sites.
type CreateSiteRequest struct {
	Name            string        `json:"name"`
	Enabled         *bool         `json:"enabled,omitempty"`
	AlertMode       SiteAlertMode `json:"alert_mode,omitempty"`
	Scope           *string       `json:"scope,omitempty"`
	RunEveryMinutes int           `json:"run_every_minutes"`
	SourceID        string        `json:"source_id"`
}

// Validate checks the request before it is sent.
func (r *CreateSiteRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	if r.RunEveryMinutes <= 0 {
		return errors.New("run_every_minutes must be > 0")
	}
	if strings.TrimSpace(r.SourceID) == "" {
		return errors.New("source_id is required")
	}
	if r.AlertMode == "" {
		r.AlertMode = SiteAlertModeActive
	}
	if !r.AlertMode.Valid() {
		return errors.New("invalid alert_mode")
	}
	return nil
}

// UpdateSiteRequest carries parameters for PUT /sites/{id}.
type UpdateSiteRequest struct {
	Name            *string        `json:"name,omitempty"`
	Enabled         *bool          `json:"enabled,omitempty"`
	AlertMode       *SiteAlertMode `json:"alert_mode,omitempty"`
	Scope           *string        `json:"scope,omitempty"`
	RunEveryMinutes *int           `json:"run_every_minutes,omitempty"`
	SourceID        *string        `json:"source_id,omitempty"`
}

// HasUpdates reports whether any field is set.
func (r *UpdateSiteRequest) HasUpdates() bool {
	return r.Name != nil || r.Enabled != nil || r.AlertMode != nil ||
		r.Scope != nil || r.RunEveryMinutes != nil || r.SourceID != nil
}

// Validate checks the request before it is sent.
func (r *UpdateSiteRequest) Validate() error {
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
	if r.RunEveryMinutes != nil && *r.RunEveryMinutes <= 0 {
		return errors.New("run_every_minutes must be > 0")
	}
	if r.SourceID != nil && strings.TrimSpace(*r.SourceID) == "" {
		return errors.New("source_id cannot be empty")
	}
	if r.AlertMode != nil && !r.AlertMode.Valid() {
		return errors.New("invalid alert_mode")
	}
	return nil
}

// SiteListOptions controls filtering and paging for GET /sites.
type SiteListOptions struct {
	Q       string
	Enabled *bool
	Scope   string
	Sort    string // "created_at" or "name"
	Dir     string // "asc" or "desc"
	Limit   int
	Offset  int
}

// Query encodes the options as URL query parameters, omitting zero values.
func (o SiteListOptions) Query() url.Values {
	q := pagingQuery(o.Limit, o.Offset, o.Sort, o.Dir)
	if o.Q != "" {
		q.Set("q", o.Q)
	}
	if o.Enabled != nil {
		q.Set("enabled", strconv.FormatBool(*o.Enabled))
	}
	if o.Scope != "" {
		q.Set("scope", o.Scope)
	}
	return q
}

// SiteList is the paged response for GET /sites.
type SiteList struct {
	Sites []Site `json:"sites"`
	Total int    `json:"total"`
}

// pagingQuery encodes the shared paging and sorting parameters.
func pagingQuery(limit, offset int, sort, dir string) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if sort != "" {
		q.Set("sort", sort)
	}
	if dir != "" {
		q.Set("dir", strings.ToLower(dir))
	}
	return q
}
