package model

import (
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// AlertSeverity ranks how urgent a fired alert is.
type AlertSeverity string

const (
	AlertSeverityCritical AlertSeverity = "critical"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityLow      AlertSeverity = "low"
	AlertSeverityInfo     AlertSeverity = "info"
)

// Valid reports whether the severity is supported.
func (s AlertSeverity) Valid() bool {
	switch s {
	case AlertSeverityCritical, AlertSeverityHigh, AlertSeverityMedium, AlertSeverityLow, AlertSeverityInfo:
		return true
	default:
		return false
	}
}

// Alert is a fired security alert as returned by the API.
type Alert struct {
	ID           string          `json:"id"`
	SiteID       string          `json:"site_id"`
	SiteName     string          `json:"site_name,omitempty"`
	RuleType     string          `json:"rule_type"`
	Severity     AlertSeverity   `json:"severity"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	EventContext json.RawMessage `json:"event_context,omitempty"`
	FiredAt      time.Time       `json:"fired_at"`
	ResolvedAt   *time.Time      `json:"resolved_at,omitempty"`
	ResolvedBy   *string         `json:"resolved_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Resolved reports whether the alert has been acknowledged.
func (a Alert) Resolved() bool { return a.ResolvedAt != nil }

// ResolveAlertRequest carries parameters for PUT /alerts/{id}/resolve.
type ResolveAlertRequest struct {
	ResolvedBy string `json:"resolved_by"`
}

// Validate checks the request before it is sent.
func (r *ResolveAlertRequest) Validate() error {
	if strings.TrimSpace(r.ResolvedBy) == "" {
		return errors.New("resolved_by is required")
	}
	return nil
}

// AlertListOptions controls filtering and paging for GET /alerts.
type AlertListOptions struct {
	SiteID     string
	Severity   AlertSeverity
	Unresolved bool
	Sort       string // "fired_at", "severity", "created_at"
	Dir        string
	Limit      int
	Offset     int
}

// Query encodes the options as URL query parameters.
func (o AlertListOptions) Query() url.Values {
	q := pagingQuery(o.Limit, o.Offset, o.Sort, o.Dir)
	if o.SiteID != "" {
		q.Set("site_id", o.SiteID)
	}
	if o.Severity != "" {
		q.Set("severity", string(o.Severity))
	}
	if o.Unresolved {
		q.Set("unresolved", strconv.FormatBool(true))
	}
	return q
}

// AlertList is the paged response for GET /alerts.
type AlertList struct {
	Alerts []Alert `json:"alerts"`
	Total  int     `json:"total"`
}

// AlertStats summarizes alert volume by severity, used by the dashboard.
type AlertStats struct {
	Total      int `json:"total"`
	Critical   int `json:"critical"`
	High       int `json:"high"`
	Medium     int `json:"medium"`
	Low        int `json:"low"`
	Info       int `json:"info"`
	Unresolved int `json:"unresolved"`
}
