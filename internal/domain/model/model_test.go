package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSiteRequest_Validate(t *testing.T) {
	valid := CreateSiteRequest{Name: "checkout", RunEveryMinutes: 15, SourceID: "src-1"}

	t.Run("valid request defaults alert mode", func(t *testing.T) {
		r := valid
		require.NoError(t, r.Validate())
		assert.Equal(t, SiteAlertModeActive, r.AlertMode)
	})

	t.Run("missing name", func(t *testing.T) {
		r := valid
		r.Name = "  "
		assert.Error(t, r.Validate())
	})

	t.Run("name too long", func(t *testing.T) {
		r := valid
		r.Name = strings.Repeat("x", 256)
		assert.Error(t, r.Validate())
	})

	t.Run("zero interval", func(t *testing.T) {
		r := valid
		r.RunEveryMinutes = 0
		assert.Error(t, r.Validate())
	})

	t.Run("missing source", func(t *testing.T) {
		r := valid
		r.SourceID = ""
		assert.Error(t, r.Validate())
	})

	t.Run("bad alert mode", func(t *testing.T) {
		r := valid
		r.AlertMode = "loud"
		assert.Error(t, r.Validate())
	})
}

func TestUpdateSiteRequest_Validate(t *testing.T) {
	t.Run("empty update rejected", func(t *testing.T) {
		r := UpdateSiteRequest{}
		assert.Error(t, r.Validate())
	})

	t.Run("single field accepted", func(t *testing.T) {
		enabled := true
		r := UpdateSiteRequest{Enabled: &enabled}
		assert.NoError(t, r.Validate())
	})

	t.Run("empty name rejected", func(t *testing.T) {
		name := " "
		r := UpdateSiteRequest{Name: &name}
		assert.Error(t, r.Validate())
	})
}

func TestSiteListOptions_Query(t *testing.T) {
	enabled := true
	q := SiteListOptions{
		Q:       "checkout",
		Enabled: &enabled,
		Sort:    "name",
		Dir:     "ASC",
		Limit:   25,
		Offset:  50,
	}.Query()

	assert.Equal(t, "checkout", q.Get("q"))
	assert.Equal(t, "true", q.Get("enabled"))
	assert.Equal(t, "name", q.Get("sort"))
	assert.Equal(t, "asc", q.Get("dir"))
	assert.Equal(t, "25", q.Get("limit"))
	assert.Equal(t, "50", q.Get("offset"))
}

func TestSiteListOptions_QueryOmitsZeroValues(t *testing.T) {
	q := SiteListOptions{}.Query()
	assert.Empty(t, q)
}

func TestCreateSourceRequest_Validate(t *testing.T) {
	valid := CreateSourceRequest{Name: "scan", Value: "console.log('x')"}

	t.Run("valid", func(t *testing.T) {
		r := valid
		assert.NoError(t, r.Validate())
	})

	t.Run("missing value", func(t *testing.T) {
		r := valid
		r.Value = ""
		assert.Error(t, r.Validate())
	})

	t.Run("empty secret entry", func(t *testing.T) {
		r := valid
		r.Secrets = []string{"ok", " "}
		assert.Error(t, r.Validate())
	})
}

func TestCreateJobRequest_Validate(t *testing.T) {
	src := "src-1"

	t.Run("browser with source", func(t *testing.T) {
		r := CreateJobRequest{Type: JobTypeBrowser, SourceID: &src}
		assert.NoError(t, r.Validate())
	})

	t.Run("browser without source or payload", func(t *testing.T) {
		r := CreateJobRequest{Type: JobTypeBrowser}
		assert.Error(t, r.Validate())
	})

	t.Run("invalid type", func(t *testing.T) {
		r := CreateJobRequest{Type: "cron"}
		assert.Error(t, r.Validate())
	})
}

func TestJobType_UnmarshalText(t *testing.T) {
	var jt JobType
	require.NoError(t, jt.UnmarshalText([]byte(" Browser ")))
	assert.Equal(t, JobTypeBrowser, jt)

	assert.Error(t, jt.UnmarshalText([]byte("cron")))
}

func TestAlertListOptions_Query(t *testing.T) {
	q := AlertListOptions{
		SiteID:     "site-1",
		Severity:   AlertSeverityHigh,
		Unresolved: true,
		Limit:      10,
	}.Query()

	assert.Equal(t, "site-1", q.Get("site_id"))
	assert.Equal(t, "high", q.Get("severity"))
	assert.Equal(t, "true", q.Get("unresolved"))
	assert.Equal(t, "10", q.Get("limit"))
	assert.Empty(t, q.Get("offset"))
}

func TestResolveAlertRequest_Validate(t *testing.T) {
	r := ResolveAlertRequest{}
	assert.Error(t, r.Validate())

	r.ResolvedBy = "operator"
	assert.NoError(t, r.Validate())
}
