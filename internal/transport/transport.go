// Package transport implements the authenticated HTTP core: a base-URL
// client, bearer-token attachment, response classification, and the token
// refresh coordinator. Feature services are thin typed wrappers over this
// package; they never inspect raw responses themselves.
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
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/target/mmk-ui-client/config"
	apierrors "github.com/target/mmk-ui-client/internal/errors"
	obserrors "github.com/target/mmk-ui-client/internal/observability/errors"
	"github.com/target/mmk-ui-client/internal/observability/statsd"
	"github.com/target/mmk-ui-client/internal/ports"
	"github.com/target/mmk-ui-client/internal/session"
)

// Options groups dependencies for NewClient.
type Options struct {
	BaseURL     string
	Variant     config.AuthVariant
	Credentials ports.CredentialStore
	Session     *session.Store
	Hooks       Hooks

	// UserAgent is sent with every request.
	UserAgent string

	// Timeout is the per-request timeout. Zero means 30s.
	Timeout time.Duration

	// RefreshTimeout bounds a single refresh call. Zero means 15s.
	RefreshTimeout time.Duration

	// HTTPClient overrides the underlying client (tests). When set, Timeout
	// is ignored and the token variant still layers its bearer transport.
	HTTPClient *http.Client

	Logger  *slog.Logger
	Metrics statsd.Sink
}

// Client is the configured HTTP transport every feature service calls
// through. It owns classification and refresh; callers see their request
// succeed, or fail with a typed APIError, never a bare status code.
type Client struct {
	base      *url.URL
	http      *http.Client
	variant   config.AuthVariant
	creds     ports.CredentialStore
	session   *session.Store
	refresher *Coordinator
	hooks     Hooks
	userAgent string
	logger    *slog.Logger
	metrics   statsd.Sink
}

// NewClient builds the transport for the configured auth variant.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", opts.BaseURL)
	}
	if opts.Session == nil {
		return nil, errors.New("session store is required")
	}

	variant := opts.Variant
	if variant == "" {
		variant = config.AuthVariantToken
	}
	if variant == config.AuthVariantToken && opts.Credentials == nil {
		return nil, errors.New("token variant requires a credential store")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	refreshTimeout := opts.RefreshTimeout
	if refreshTimeout <= 0 {
		refreshTimeout = 15 * time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = (*statsd.Client)(nil) // nil client is a valid no-op sink
	}

	hooks := opts.Hooks.normalized()
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "mmk-ui-client"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		base:      base,
		variant:   variant,
		creds:     opts.Credentials,
		session:   opts.Session,
		hooks:     hooks,
		userAgent: userAgent,
		logger:    logger,
		metrics:   metrics,
	}

	switch variant {
	case config.AuthVariantToken:
		c.http = &http.Client{
			Timeout:   httpClient.Timeout,
			Transport: &bearerTransport{base: httpClient.Transport, creds: opts.Credentials},
		}
		// The refresh call uses the same transport but never re-enters
		// classification.
		c.refresher = newCoordinator(
			opts.Credentials,
			opts.Session,
			refreshViaAPI(c.http, c.endpoint("/auth/refresh"), userAgent),
			refreshTimeout,
			hooks,
			logger,
			metrics,
		)
	case config.AuthVariantCookie:
		jar, jarErr := newCookieJar()
		if jarErr != nil {
			return nil, fmt.Errorf("build cookie jar: %w", jarErr)
		}
		c.http = &http.Client{
			Timeout:   httpClient.Timeout,
			Transport: httpClient.Transport,
			Jar:       jar,
		}
	default:
		return nil, fmt.Errorf("unsupported auth variant %q", variant)
	}

	return c, nil
}

// Variant returns the configured auth variant.
func (c *Client) Variant() config.AuthVariant { return c.variant }

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// endpoint joins a path onto the base URL.
func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String()
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out, false)
}

// Post issues a POST request with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, in, out, false)
}

// Put issues a PUT request with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, in, out, false)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil, false)
}

// do sends one request and runs the classification pipeline on the result.
// retried marks a request already replayed after a refresh; such a request
// never re-enters the refresh flow.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any, retried bool) error {
	started := time.Now()
	err := c.send(ctx, method, path, query, in, out, retried)
	c.metrics.Timing("request.duration", time.Since(started), map[string]string{"method": method})
	outcome := "ok"
	if err != nil {
		outcome = obserrors.Classify(err)
	}
	c.metrics.Count("request", 1, map[string]string{"method": method, "outcome": outcome})
	return err
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, in, out any, retried bool) error {
	req, err := c.newRequest(ctx, method, path, query, in)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(ctx, err)
	}
	body, readErr := io.ReadAll(resp.Body)
	if closeErr := resp.Body.Close(); closeErr != nil {
		return apierrors.Wrap(closeErr, apierrors.ErrCodeInternal, "close response body")
	}
	if readErr != nil {
		return apierrors.Wrap(readErr, apierrors.ErrCodeInternal, "read response body")
	}

	canRefresh := c.refresher != nil
	switch classify(resp.StatusCode, path, retried, canRefresh) {
	case actionPass:
		return decodeInto(body, out)

	case actionRefresh:
		c.logger.Debug("authentication expired, refreshing", "method", method, "path", path)
		if refreshErr := c.refresher.Refresh(ctx); refreshErr != nil {
			// The coordinator already cleared state and fired the hook.
			if apierrors.IsRefreshFailed(refreshErr) {
				return refreshErr
			}
			return apierrors.RefreshFailed(refreshErr)
		}
		// Replay exactly once; the bearer transport reads the fresh token.
		return c.do(ctx, method, path, query, in, out, true)

	case actionLoginRequired:
		c.logout("authentication required")
		return apierrors.AuthExpired(parseDetail(body))

	case actionForbidden:
		c.hooks.Forbidden(path)
		return apierrors.Forbidden(parseDetail(body))

	default: // actionFail
		failure := requestError(resp.StatusCode, parseDetail(body))
		if !isAuthEndpoint(path) {
			c.hooks.Notice(failure.UserMessage())
		}
		return failure
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, in any) (*http.Request, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, apierrors.Wrap(err, apierrors.ErrCodeValidation, "encode request body")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, apierrors.Wrap(err, apierrors.ErrCodeInternal, "create request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// logout clears client auth state after an irrecoverable 401.
func (c *Client) logout(reason string) {
	if c.creds != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.creds.Delete(ctx); err != nil {
			c.logger.Warn("erase credentials", "error", err)
		}
	}
	c.session.Clear()
	c.hooks.LoggedOut(reason)
}

// decodeInto unmarshals a response body unless the caller wants nothing or
// the server sent nothing.
func decodeInto(body []byte, out any) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apierrors.Wrap(err, apierrors.ErrCodeInternal, "decode response body")
	}
	return nil
}

// requestError maps a failure status to the caller-facing error, keeping
// 404s distinguishable for feature code.
func requestError(status int, detail string) *apierrors.APIError {
	if status == http.StatusNotFound {
		message := detail
		if message == "" {
			message = "resource not found"
		}
		return apierrors.NotFound(message)
	}
	return apierrors.RequestFailed(status, detail)
}

// transportError maps network-level failures onto the error taxonomy.
func transportError(ctx context.Context, err error) *apierrors.APIError {
	switch {
	case ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled):
		return apierrors.Wrap(err, apierrors.ErrCodeCanceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return apierrors.Wrap(err, apierrors.ErrCodeTimeout, "request timed out")
	default:
		return apierrors.Wrap(err, apierrors.ErrCodeInternal, "send request")
	}
}
