package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
	apierrors "github.com/target/mmk-ui-client/internal/errors"
	"github.com/target/mmk-ui-client/internal/observability/statsd"
	"github.com/target/mmk-ui-client/internal/ports"
	"github.com/target/mmk-ui-client/internal/session"
)

// ErrNoRefreshCredential is returned when a refresh is requested but no
// refresh token is persisted. No network call is attempted in that case.
var ErrNoRefreshCredential = errors.New("no refresh credential stored")

// refreshFunc performs the actual POST /auth/refresh call and returns the
// rotated credential pair.
type refreshFunc func(ctx context.Context, refreshToken string) (domainauth.Credentials, error)

// Coordinator guarantees at most one in-flight refresh call at any time.
//
// The first qualifying 401 starts the refresh; every concurrent qualifying
// 401 joins the in-flight call via the singleflight group, and all of them
// share its outcome. Credentials are persisted before any waiter is
// released, and replays read credentials fresh at send time, so no caller
// can observe a stale token after a refresh completes.
type Coordinator struct {
	group   singleflight.Group
	creds   ports.CredentialStore
	session *session.Store
	refresh refreshFunc
	timeout time.Duration
	hooks   Hooks
	logger  *slog.Logger
	metrics statsd.Sink
}

// newCoordinator wires a Coordinator; hooks must already be normalized.
func newCoordinator(
	creds ports.CredentialStore,
	sess *session.Store,
	refresh refreshFunc,
	timeout time.Duration,
	hooks Hooks,
	logger *slog.Logger,
	metrics statsd.Sink,
) *Coordinator {
	if metrics == nil {
		metrics = (*statsd.Client)(nil) // nil client is a valid no-op sink
	}
	return &Coordinator{
		creds:   creds,
		session: sess,
		refresh: refresh,
		timeout: timeout,
		hooks:   hooks,
		logger:  logger,
		metrics: metrics,
	}
}

// Refresh obtains a fresh credential pair, deduplicating concurrent calls.
// On success the rotated pair is persisted before Refresh returns to any
// caller. On failure credentials are erased, the session is cleared, and
// the logged-out hook fires exactly once for the shared attempt.
func (c *Coordinator) Refresh(ctx context.Context) error {
	_, err, shared := c.group.Do("refresh", func() (any, error) {
		return nil, c.doRefresh(ctx)
	})
	if shared {
		c.logger.Debug("joined in-flight token refresh")
	}
	return err
}

func (c *Coordinator) doRefresh(ctx context.Context) error {
	// The flight outcome is shared by every waiter, so the first caller's
	// cancellation must not poison it. Only the coordinator timeout bounds
	// the call.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	current, err := c.creds.Load(ctx)
	if err != nil || !current.HasRefresh() {
		c.fail("missing refresh credential")
		if err != nil && !errors.Is(err, ports.ErrNoCredentials) {
			return fmt.Errorf("load credentials: %w", err)
		}
		return ErrNoRefreshCredential
	}

	started := time.Now()
	rotated, err := c.refresh(ctx, current.RefreshToken)
	if err != nil {
		c.metrics.Count("refresh", 1, map[string]string{"outcome": "error"})
		c.fail("refresh rejected")
		return err
	}

	// Servers that do not rotate the refresh token omit it from the
	// response; keep the current one in that case.
	if !rotated.HasRefresh() {
		rotated.RefreshToken = current.RefreshToken
	}

	// Persist before returning: waiters replay immediately after this
	// flight settles and must read the new pair.
	if err := c.creds.Save(ctx, rotated); err != nil {
		c.fail("persist refreshed credentials")
		return fmt.Errorf("save refreshed credentials: %w", err)
	}

	c.metrics.Count("refresh", 1, map[string]string{"outcome": "ok"})
	c.metrics.Timing("refresh.duration", time.Since(started), nil)
	c.logger.Debug("token refresh completed", "duration", time.Since(started))
	return nil
}

// fail erases credentials and session state after an irrecoverable refresh
// outcome. Runs inside the singleflight callback, so the hook fires once no
// matter how many callers share the attempt.
func (c *Coordinator) fail(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.creds.Delete(ctx); err != nil {
		c.logger.Warn("erase credentials after failed refresh", "error", err)
	}
	c.session.Clear()
	c.logger.Warn("session ended", "reason", reason)
	c.hooks.LoggedOut(reason)
}

// tokenResponse is the wire shape of POST /auth/refresh and /auth/login.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// credentials converts the wire shape into the domain credential pair.
func (r tokenResponse) credentials(now time.Time) domainauth.Credentials {
	creds := domainauth.Credentials{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
	}
	if r.ExpiresIn > 0 {
		creds.ExpiresAt = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	return creds
}

// refreshViaAPI builds the default refreshFunc: a direct POST /auth/refresh
// that bypasses the classification pipeline (a refresh failing with 401 must
// not trigger another refresh).
func refreshViaAPI(httpClient *http.Client, refreshURL, userAgent string) refreshFunc {
	return func(ctx context.Context, refreshToken string) (domainauth.Credentials, error) {
		payload, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
		if err != nil {
			return domainauth.Credentials{}, fmt.Errorf("encode refresh payload: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, refreshURL, bytes.NewReader(payload))
		if err != nil {
			return domainauth.Credentials{}, fmt.Errorf("create refresh request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := httpClient.Do(req)
		if err != nil {
			return domainauth.Credentials{}, fmt.Errorf("refresh request failed: %w", err)
		}
		body, readErr := io.ReadAll(resp.Body)
		if closeErr := resp.Body.Close(); closeErr != nil {
			return domainauth.Credentials{}, fmt.Errorf("close refresh response body: %w", closeErr)
		}
		if readErr != nil {
			return domainauth.Credentials{}, fmt.Errorf("read refresh response: %w", readErr)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return domainauth.Credentials{}, apierrors.RefreshFailed(
				fmt.Errorf("refresh endpoint returned %s", resp.Status))
		}

		var tr tokenResponse
		if err := json.Unmarshal(body, &tr); err != nil {
			return domainauth.Credentials{}, fmt.Errorf("decode refresh response: %w", err)
		}
		if tr.AccessToken == "" {
			return domainauth.Credentials{}, errors.New("refresh response missing access token")
		}

		return tr.credentials(time.Now()), nil
	}
}
