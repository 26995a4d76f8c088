package userapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"user-directory/internal/adapter/diagnostics"
	domain "user-directory/internal/domain/user"
	apperrors "user-directory/pkg/errors"
	"user-directory/pkg/logger"
)

// usersPath is the user resource relative to the base URL.
const usersPath = "/users"

// Config holds the settings of a Client.
type Config struct {
	BaseURL    string        // e.g. https://jsonplaceholder.typicode.com
	AppVersion string        // sent as X-App-Version
	MaxRetries int           // additional attempts after the first failure
	RetryDelay time.Duration // pause between attempts
	Timeout    time.Duration // per attempt; zero means none
	Transport  http.RoundTripper
}

// Client reads users from the upstream directory API.
// Every failure it returns is an *apperrors.RequestError, except context
// cancellation which is returned as is.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	log        *zap.Logger
}

// NewClient creates a new Client.
func NewClient(cfg Config, recorder diagnostics.Recorder, log *zap.Logger) *Client {
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Transport: NewPipeline(cfg.Transport, cfg.AppVersion, recorder, log),
			Timeout:   cfg.Timeout,
		},
		maxRetries: maxRetries,
		retryDelay: cfg.RetryDelay,
		log:        log,
	}
}

// ListUsers fetches every user, in server order.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := getJSON[[]domain.User](ctx, c, usersPath)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// GetUser fetches a single user by ID.
func (c *Client) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := getJSON[domain.User](ctx, c, usersPath+"/"+strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// getJSON performs a GET under the retry policy and decodes the body into T.
// Retries are unconditional: any failed attempt is repeated until the
// attempt budget is spent.
func getJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	target := c.baseURL + path
	log := logger.WithContext(ctx, c.log)

	operation := func() (T, error) {
		return getOnce[T](ctx, c, target)
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(c.retryDelay)),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn("retrying upstream request", zap.String("url", target), zap.Duration("after", next), zap.Error(err))
		}),
	)
	if err != nil {
		var zero T
		return zero, translate(ctx, err)
	}
	return result, nil
}

// getOnce performs a single attempt through the pipeline.
func getOnce[T any](ctx context.Context, c *Client, target string) (T, error) {
	var out T

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		// a malformed URL will not improve on retry
		return out, backoff.Permanent(apperrors.NewConnectivityError(err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	// a redirect the client did not follow, such as 304 or a missing Location
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logger.WithContext(ctx, c.log).Error("HTTP Error",
			zap.String("url", target),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", resp.Status),
		)
		return out, apperrors.FromStatus(resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		logger.WithContext(ctx, c.log).Error("HTTP Error",
			zap.String("url", target),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", "decode response: "+err.Error()),
		)
		return out, apperrors.NewDecodeError(resp.StatusCode, err)
	}

	return out, nil
}

// translate unwraps *url.Error and friends down to the pipeline's error.
// Cancellation of the caller's context is passed through untranslated.
func translate(ctx context.Context, err error) error {
	var reqErr *apperrors.RequestError
	if errors.As(err, &reqErr) {
		return reqErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return apperrors.NewConnectivityError(fmt.Errorf("upstream request: %w", err))
}
