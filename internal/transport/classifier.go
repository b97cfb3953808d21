package transport

import (
	"encoding/json"
	"net/http"
	"strings"
)

// action is the recovery decision for a response, decided once at the
// transport boundary.
type action int

const (
	// actionPass returns the response to the caller untouched (2xx).
	actionPass action = iota
	// actionRefresh delegates to the refresh coordinator, then replays once.
	actionRefresh
	// actionLoginRequired is an irrecoverable auth failure: clear the
	// session, erase credentials, fire the logged-out hook.
	actionLoginRequired
	// actionForbidden redirects away from the resource; never refreshes.
	actionForbidden
	// actionFail surfaces a notice and propagates a request error.
	actionFail
)

// authEndpoints are paths whose 401s must never trigger a refresh and whose
// failures never produce notices (avoids duplicate noise during the refresh
// dance).
var authEndpoints = []string{
	"/auth/login",
	"/auth/refresh",
	"/auth/logout",
}

// isAuthEndpoint reports whether the request path targets an auth endpoint.
func isAuthEndpoint(path string) bool {
	for _, p := range authEndpoints {
		if path == p || strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

// classify maps a response status to a recovery action.
//
// canRefresh is false for the cookie variant (the server renews sessions
// itself, so a 401 means login is required) and for requests already
// replayed once, which keeps a permanently rejecting endpoint from looping.
func classify(status int, path string, retried, canRefresh bool) action {
	switch {
	case status < 400:
		return actionPass
	case status == http.StatusUnauthorized:
		if isAuthEndpoint(path) || !canRefresh || retried {
			return actionLoginRequired
		}
		return actionRefresh
	case status == http.StatusForbidden:
		return actionForbidden
	default:
		return actionFail
	}
}

// errorBody is the error envelope the API uses for non-2xx responses.
type errorBody struct {
	Detail string `json:"detail"`
}

// parseDetail extracts the server-provided detail string from an error
// body, returning "" when the body is empty or not the expected shape.
func parseDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	return strings.TrimSpace(eb.Detail)
}
