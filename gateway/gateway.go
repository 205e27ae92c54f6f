package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/models"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/pkg/apperrors"
)

// Session is the auth state the gateway reads and updates. Implemented by
// session.Manager.
type Session interface {
	Token() string
	SetToken(ctx context.Context, token string) error
	Purge(ctx context.Context) error
	ExpiresWithin(window time.Duration) bool
}

// Gateway wraps outbound calls to the Pi-Commerce API with bearer-token
// injection and transparent recovery from access-token expiry. Concurrent
// 401s share a single refresh call; each request is replayed at most once.
type Gateway struct {
	client      *http.Client
	baseURL     string
	refreshPath string
	session     Session
	logger      *zap.Logger

	sf          singleflight.Group
	limiter     *rate.Limiter
	refreshSkew time.Duration
	onExpired   func()
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// WithRateLimit throttles outbound requests.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(g *Gateway) { g.limiter = rate.NewLimiter(r, burst) }
}

// WithSessionExpiredHook registers a callback invoked after refresh fails
// and the local session has been purged. The BFF maps it to a forced
// sign-in; a browser shell would redirect to the login route.
func WithSessionExpiredHook(fn func()) Option {
	return func(g *Gateway) { g.onExpired = fn }
}

// WithRefreshSkew sets how far ahead of the token's exp claim the gateway
// refreshes proactively.
func WithRefreshSkew(d time.Duration) Option {
	return func(g *Gateway) { g.refreshSkew = d }
}

func New(baseURL, refreshPath string, sess Session, logger *zap.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		client:      &http.Client{Timeout: 15 * time.Second},
		baseURL:     baseURL,
		refreshPath: refreshPath,
		session:     sess,
		logger:      logger,
		refreshSkew: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type callOptions struct {
	skipAuth bool
}

// CallOption configures a single request.
type CallOption func(*callOptions)

// WithoutAuth exempts a call from the refresh machinery: no token is
// attached and a 401 rejects immediately. Used for login/register and the
// refresh call itself.
func WithoutAuth() CallOption {
	return func(o *callOptions) { o.skipAuth = true }
}

// DoJSON sends a JSON request and decodes the response body into out when
// out is non-nil. Transport errors pass through; 401s on authenticated
// calls trigger the refresh-and-replay protocol; other HTTP failures are
// returned as typed application errors.
func (g *Gateway) DoJSON(ctx context.Context, method, path string, in, out any, opts ...CallOption) error {
	var co callOptions
	for _, opt := range opts {
		opt(&co)
	}

	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	// Proactive refresh when the token is about to lapse. A miss here still
	// recovers through the reactive 401 path below.
	if !co.skipAuth && g.session.Token() != "" && g.session.ExpiresWithin(g.refreshSkew) {
		if err := g.refresh(ctx); err != nil {
			return g.expire(ctx, err)
		}
	}

	status, body, err := g.send(ctx, method, path, payload, co.skipAuth)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && !co.skipAuth {
		if err := g.refresh(ctx); err != nil {
			return g.expire(ctx, err)
		}

		// Replay exactly once with the refreshed token.
		status, body, err = g.send(ctx, method, path, payload, co.skipAuth)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			return g.expire(ctx, apperrors.ErrUnauthorized)
		}
	}

	if status >= http.StatusBadRequest {
		return apperrors.FromStatus(status, errorMessage(body))
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// send performs one HTTP round trip. The body is rebuilt from the buffered
// payload so the same request can be replayed after a refresh.
func (g *Gateway) send(ctx context.Context, method, path string, payload []byte, skipAuth bool) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if !skipAuth {
		if token := g.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// refresh obtains a new access token. Concurrent callers share one in-flight
// refresh call through singleflight; the winner persists the token before
// anyone is released.
func (g *Gateway) refresh(ctx context.Context) error {
	_, err, shared := g.sf.Do("refresh", func() (any, error) {
		status, body, err := g.send(ctx, http.MethodPost, g.refreshPath, nil, false)
		if err != nil {
			return nil, err
		}
		if status >= http.StatusBadRequest {
			return nil, apperrors.FromStatus(status, errorMessage(body))
		}

		var resp models.RefreshResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode refresh response: %w", err)
		}
		if resp.Token == "" {
			return nil, fmt.Errorf("refresh returned empty token")
		}

		if err := g.session.SetToken(ctx, resp.Token); err != nil {
			g.logger.Warn("failed to persist refreshed token", zap.Error(err))
		}
		g.logger.Info("access token refreshed")
		return resp.Token, nil
	})

	if shared {
		g.logger.Debug("refresh shared with concurrent request")
	}
	return err
}

// expire purges the local session and signals the sign-in redirect. Every
// request waiting on the failed refresh ends up here with the same error.
func (g *Gateway) expire(ctx context.Context, cause error) error {
	if err := g.session.Purge(ctx); err != nil {
		g.logger.Warn("failed to purge session", zap.Error(err))
	}
	if g.onExpired != nil {
		g.onExpired()
	}
	return apperrors.New(http.StatusUnauthorized, "Session expired", cause)
}

// errorMessage pulls a human-readable message out of an error body.
func errorMessage(body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Error != "" {
		return envelope.Error
	}
	return envelope.Message
}
