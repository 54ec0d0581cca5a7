package authgw

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/dugoutlabs/ballclub/internal/domain/user"
	"github.com/dugoutlabs/ballclub/internal/platform/resilience"
	"github.com/dugoutlabs/ballclub/internal/usecase"
)

var errTransport = crerr.New("auth collaborator transport failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	AnonKey        string
	Timeout        time.Duration
	Logger         *slog.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client speaks the hosted backend's GoTrue-style auth surface under
// /auth/v1. Collaborator error messages are surfaced verbatim; the caller
// decides what to show.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	anonKey        string
	logger         *slog.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
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
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) SignUp(ctx context.Context, email, password string) (user.User, error) {
	var decoded signUpResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/v1/signup", "", credentialsRequest{
		Email:    email,
		Password: password,
	}, &decoded)
	if err != nil {
		return user.User{}, err
	}

	created := decoded.user()
	if created.ID == "" {
		return user.User{}, fmt.Errorf("sign-up response carried no user id")
	}

	return created, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (user.Session, error) {
	var decoded tokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", credentialsRequest{
		Email:    email,
		Password: password,
	}, &decoded)
	if err != nil {
		return user.Session{}, err
	}

	if strings.TrimSpace(decoded.AccessToken) == "" {
		return user.Session{}, fmt.Errorf("token response carried no access token")
	}
	if strings.TrimSpace(decoded.User.ID) == "" {
		return user.Session{}, fmt.Errorf("token response carried no user")
	}

	return user.Session{
		AccessToken: decoded.AccessToken,
		User: user.User{
			ID:    decoded.User.ID,
			Email: decoded.User.Email,
		},
	}, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

func (c *Client) UserFromToken(ctx context.Context, accessToken string) (user.User, error) {
	if strings.TrimSpace(accessToken) == "" {
		return user.User{}, fmt.Errorf("%w: access token is required", usecase.ErrUnauthorized)
	}

	var decoded userPayload
	if err := c.doJSON(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &decoded); err != nil {
		return user.User{}, err
	}
	if strings.TrimSpace(decoded.ID) == "" {
		return user.User{}, fmt.Errorf("%w: token resolved to no user", usecase.ErrUnauthorized)
	}

	return user.User{ID: decoded.ID, Email: decoded.Email}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, bearer string, payload, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "auth circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: auth collaborator is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	err := c.execute(ctx, method, path, bearer, payload, target)
	if c.circuitEnabled {
		if crerr.Is(err, errTransport) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if crerr.Is(err, errTransport) {
		return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}

	return err
}

func (c *Client) execute(ctx context.Context, method, path, bearer string, payload, target any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := sonic.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal auth request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer = strings.TrimSpace(bearer); bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return crerr.Wrapf(errTransport, "send auth request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return crerr.Wrapf(errTransport, "read auth response: %v", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if target == nil || len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		if err := sonic.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("decode auth response: %w", err)
		}
		return nil
	case resp.StatusCode >= 500:
		return crerr.Wrapf(errTransport, "auth collaborator status=%d", resp.StatusCode)
	default:
		// 4xx: the collaborator rejected the call; its message is what the
		// user sees.
		return fmt.Errorf("%w: %s", usecase.ErrUnauthorized, collaboratorMessage(raw, resp.StatusCode))
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// signUpResponse tolerates both shapes the collaborator uses: a bare user
// object, or a wrapper with a "user" field when a session is auto-issued.
type signUpResponse struct {
	userPayload
	Wrapped *userPayload `json:"user"`
}

func (r signUpResponse) user() user.User {
	if r.ID != "" {
		return user.User{ID: r.ID, Email: r.Email}
	}
	if r.Wrapped != nil {
		return user.User{ID: r.Wrapped.ID, Email: r.Wrapped.Email}
	}
	return user.User{}
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	User        userPayload `json:"user"`
}

type errorBody struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func collaboratorMessage(raw []byte, status int) string {
	var decoded errorBody
	if err := sonic.Unmarshal(raw, &decoded); err == nil {
		for _, candidate := range []string{decoded.ErrorDescription, decoded.Msg, decoded.Message, decoded.Error} {
			if strings.TrimSpace(candidate) != "" {
				return strings.TrimSpace(candidate)
			}
		}
	}
	return fmt.Sprintf("authentication failed with status %d", status)
}
