package transport

// Hooks are the client-side equivalents of the UI's navigation and toast
// side effects. The transport invokes them after classification; callers
// decide what "navigate to login" means in their context (the CLI prints
// and exits, a daemon re-runs its login flow).
type Hooks struct {
	// LoggedOut fires once when authentication becomes irrecoverable
	// (failed refresh, 401 from an auth endpoint, cookie session expiry).
	LoggedOut func(reason string)

	// Forbidden fires on a 403 for the given request path.
	Forbidden func(path string)

	// Notice surfaces a single user-visible message for generic request
	// failures. Never fired for 401s or auth-endpoint requests.
	Notice func(message string)
}

// normalized returns a copy with nil callbacks replaced by no-ops.
func (h Hooks) normalized() Hooks {
	if h.LoggedOut == nil {
		h.LoggedOut = func(string) {}
	}
	if h.Forbidden == nil {
		h.Forbidden = func(string) {}
	}
	if h.Notice == nil {
		h.Notice = func(string) {}
	}
	return h
}
