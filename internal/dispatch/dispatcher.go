// Package dispatch sends login attempts over HTTP and normalizes transport
// failures into status 0 envelopes.
package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gignut/logindrill/internal/login"
)

// maxBodyBytes caps how much of a response body is retained for
// classification. Anything beyond it is discarded.
const maxBodyBytes = 1 << 20

// HTTP posts login requests to a fixed endpoint URL.
type HTTP struct {
	client *http.Client
	url    string
	inject func(context.Context, http.Header)
}

// Option customizes an HTTP dispatcher.
type Option func(*HTTP)

// WithHeaderInjector registers a hook that may add headers to every
// outgoing request, e.g. W3C trace context propagation.
func WithHeaderInjector(fn func(context.Context, http.Header)) Option {
	return func(d *HTTP) {
		d.inject = fn
	}
}

// NewHTTP validates the target URL, joins it with the login path, and
// returns a dispatcher bound to the resulting endpoint. An empty loginPath
// falls back to the standard login endpoint path.
func NewHTTP(client *http.Client, target, loginPath string, opts ...Option) (*HTTP, error) {
	if client == nil {
		return nil, errors.New("client cannot be nil")
	}

	target = strings.TrimSpace(target)
	if target == "" {
		return nil, errors.New("target URL is required")
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse target URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q (only http and https)", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("target URL must include a host")
	}

	if loginPath == "" {
		loginPath = login.Path
	}
	if !strings.HasPrefix(loginPath, "/") {
		return nil, fmt.Errorf("login path must start with /: %q", loginPath)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + loginPath
	u.RawQuery = ""
	u.Fragment = ""

	d := &HTTP{client: client, url: u.String()}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// URL returns the fully resolved endpoint the dispatcher posts to.
func (d *HTTP) URL() string {
	return d.url
}

// Dispatch posts the login request and returns the raw response envelope.
// Transport failures surface as the status 0 envelope rather than an error;
// a non-nil error is returned only when ctx ended before a verdict existed.
func (d *HTTP) Dispatch(ctx context.Context, req login.Request) (login.Envelope, error) {
	payload, err := req.MarshalBody()
	if err != nil {
		return login.Envelope{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(payload))
	if err != nil {
		return login.Envelope{}, err
	}
	httpReq.Header.Set("Content-Type", login.ContentType)
	httpReq.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(payload)), nil
	}
	if d.inject != nil {
		d.inject(ctx, httpReq.Header)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return login.Envelope{}, ctx.Err()
		}
		return login.Envelope{}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return login.Envelope{}, ctx.Err()
		}
		return login.Envelope{}, nil
	}

	return login.Envelope{StatusCode: resp.StatusCode, Body: body}, nil
}
