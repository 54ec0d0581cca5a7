package datastore

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/dugoutlabs/ballclub/internal/platform/logging"
	"github.com/dugoutlabs/ballclub/internal/platform/resilience"
	"github.com/dugoutlabs/ballclub/internal/platform/session"
	"github.com/dugoutlabs/ballclub/internal/usecase"
)

const (
	restPrefix = "/rest/v1"

	// PostgREST returns 406 for a single-object read that matched zero
	// rows; callers translate that into their own not-found semantics.
	acceptSingleObject = "application/vnd.pgrst.object+json"
)

var (
	errTransport = crerr.New("data collaborator transport failure")
	errNoRow     = crerr.New("no row matched")
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	AnonKey    string
	// ServiceKey, when set, authenticates requests that carry no user
	// session (the internal refresh job); it bypasses row policies the way
	// the backend's own service role does.
	ServiceKey     string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client speaks the hosted backend's PostgREST-style data surface under
// /rest/v1. The caller's access token rides the request context and is
// forwarded as the bearer so the collaborator's row-level policies apply;
// there is no SQL on this side of the wire.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	anonKey        string
	serviceKey     string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		anonKey:        strings.TrimSpace(cfg.AnonKey),
		serviceKey:     strings.TrimSpace(cfg.ServiceKey),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// getJSON runs a read. Concurrent identical reads for the same caller are
// collapsed into one request.
func (c *Client) getJSON(ctx context.Context, table string, query url.Values, single bool, target any) error {
	fullURL := c.tableURL(table, query)
	key := fmt.Sprintf("%s|single=%t|caller=%d", fullURL, single, c.callerFingerprint(ctx))

	out, err, _ := c.flight.Do(key, func() (any, error) {
		return c.execute(ctx, http.MethodGet, fullURL, single, nil)
	})
	if err != nil {
		return c.mapError(ctx, err)
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode collaborator payload: %w", err)
	}
	return nil
}

// postJSON runs an insert with return=representation so the stored row,
// server-generated fields included, comes back to the caller. Writes are
// never deduplicated and never retried.
func (c *Client) postJSON(ctx context.Context, table string, payload, target any) error {
	encoded, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal insert payload: %w", err)
	}

	raw, err := c.execute(ctx, http.MethodPost, c.tableURL(table, nil), true, encoded)
	if err != nil {
		return c.mapError(ctx, err)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode insert echo: %w", err)
	}
	return nil
}

func (c *Client) execute(ctx context.Context, method, fullURL string, single bool, body []byte) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "data circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: data collaborator is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	raw, err := c.send(ctx, method, fullURL, single, body)
	if c.circuitEnabled {
		if crerr.Is(err, errTransport) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}

	return raw, err
}

func (c *Client) send(ctx context.Context, method, fullURL string, single bool, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create data request: %w", err)
	}

	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer(ctx))
	if single {
		req.Header.Set("Accept", acceptSingleObject)
	} else {
		req.Header.Set("Accept", "application/json")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrapf(errTransport, "send data request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, crerr.Wrapf(errTransport, "read data response: %v", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusNotAcceptable && single:
		return nil, errNoRow
	case resp.StatusCode >= 500:
		return nil, crerr.Wrapf(errTransport, "data collaborator status=%d", resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", usecase.ErrUnauthorized, collaboratorMessage(raw, resp.StatusCode))
	default:
		// Remaining 4xx (constraint violations, malformed filters) are the
		// collaborator rejecting this request, not a fault on our side.
		return nil, fmt.Errorf("%w: %s", usecase.ErrInvalidInput, collaboratorMessage(raw, resp.StatusCode))
	}
}

func (c *Client) mapError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if crerr.Is(err, errTransport) {
		c.logger.WarnContext(ctx, "data collaborator unreachable", "error", err)
		return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}
	return err
}

func (c *Client) tableURL(table string, query url.Values) string {
	fullURL := c.baseURL + restPrefix + "/" + table
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}
	return fullURL
}

// bearer picks the identity for the outgoing call: the request's session
// token when one exists, the service key for session-less internal work,
// otherwise the anon key.
func (c *Client) bearer(ctx context.Context) string {
	if token := session.AccessToken(ctx); token != "" {
		return token
	}
	if c.serviceKey != "" {
		return c.serviceKey
	}
	return c.anonKey
}

// callerFingerprint keys single-flight per identity without ever holding a
// raw token in the key.
func (c *Client) callerFingerprint(ctx context.Context) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(c.bearer(ctx)))
	return h.Sum64()
}

type errorBody struct {
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
	Code    string `json:"code"`
}

func collaboratorMessage(raw []byte, status int) string {
	var decoded errorBody
	if err := sonic.Unmarshal(raw, &decoded); err == nil && strings.TrimSpace(decoded.Message) != "" {
		return strings.TrimSpace(decoded.Message)
	}
	return fmt.Sprintf("data request failed with status %d", status)
}
