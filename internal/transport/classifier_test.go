package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		path       string
		retried    bool
		canRefresh bool
		want       action
	}{
		{"success passes through", 200, "/sites", false, true, actionPass},
		{"created passes through", 201, "/sites", false, true, actionPass},
		{"first 401 refreshes", 401, "/sites", false, true, actionRefresh},
		{"retried 401 requires login", 401, "/sites", true, true, actionLoginRequired},
		{"401 on auth endpoint requires login", 401, "/auth/refresh", false, true, actionLoginRequired},
		{"401 on login endpoint requires login", 401, "/auth/login", false, true, actionLoginRequired},
		{"cookie variant 401 requires login", 401, "/sites", false, false, actionLoginRequired},
		{"403 is forbidden", 403, "/sites", false, true, actionForbidden},
		{"403 never refreshes even when retried", 403, "/sites", true, true, actionForbidden},
		{"404 fails", 404, "/sites/abc", false, true, actionFail},
		{"500 fails", 500, "/sites", false, true, actionFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.status, tt.path, tt.retried, tt.canRefresh)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsAuthEndpoint(t *testing.T) {
	assert.True(t, isAuthEndpoint("/auth/login"))
	assert.True(t, isAuthEndpoint("/auth/refresh"))
	assert.True(t, isAuthEndpoint("/auth/logout"))
	assert.True(t, isAuthEndpoint("/api/auth/login"))
	assert.False(t, isAuthEndpoint("/sites"))
	assert.False(t, isAuthEndpoint("/users/me"))
}

func TestParseDetail(t *testing.T) {
	assert.Equal(t, "site not found", parseDetail([]byte(`{"detail":"site not found"}`)))
	assert.Equal(t, "trimmed", parseDetail([]byte(`{"detail":"  trimmed  "}`)))
	assert.Equal(t, "", parseDetail(nil))
	assert.Equal(t, "", parseDetail([]byte(`not json`)))
	assert.Equal(t, "", parseDetail([]byte(`{"error":"other shape"}`)))
}
