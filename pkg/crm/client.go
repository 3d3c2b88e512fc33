// Package crm is the typed gateway over the external appointment/CRM
// backend (C6). Every exported operation validates its inputs without
// touching the network on failure, builds its request body, calls the
// shared HTTP client through the retry envelope, and normalizes the
// response into result.Result[T]. None of these functions ever panics or
// lets an error escape unwrapped across the package boundary.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ai2b-pro/toolfleet/pkg/result"
	"github.com/ai2b-pro/toolfleet/pkg/retry"
)

// Client is the shared gateway handle. It is built once during supervisor
// startup from the shared HTTP client and threaded into every tenant
// builder — nothing here is tenant-specific.
type Client struct {
	http       *http.Client
	baseURL    string // trimmed of trailing '/'
	timeout    time.Duration
	retryPolicy retry.Policy
}

// Config configures a Client's base URL, per-call timeout and retry
// schedule, all sourced from internal/config.Config's CRM_* fields.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	Retries      int
	RetryMinDelay time.Duration
	RetryMaxDelay time.Duration
}

// NewClient builds a gateway Client over the shared pooled http.Client.
func NewClient(httpClient *http.Client, cfg Config) *Client {
	return &Client{
		http:    httpClient,
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
		retryPolicy: retry.Policy{
			MinDelay:    cfg.RetryMinDelay,
			MaxDelay:    cfg.RetryMaxDelay,
			MaxAttempts: cfg.Retries,
			Classifier:  retry.ClassifierFunc(isRetryableHTTPError),
		},
	}
}

// url builds a full URL by concatenating the trimmed base URL with a
// constant path — always lazily, never stored as a package-level constant.
func (c *Client) url(path string) string {
	if len(path) == 0 || path[0] != '/' {
		path = "/" + path
	}
	return c.baseURL + path
}

// httpStatusError carries the HTTP status code so the retry classifier and
// per-operation error mapping can inspect it without re-parsing strings.
type httpStatusError struct {
	status int
}

func (e *httpStatusError) Error() string {
	return "crm returned unexpected HTTP status"
}

// isRetryableHTTPError implements C3's classification: any I/O timeout, any
// network error, HTTP 429, and any HTTP 5xx are retryable; everything else
// (including other 4xx) is not.
func isRetryableHTTPError(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.status == http.StatusTooManyRequests ||
			(statusErr.status >= 500 && statusErr.status < 600)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Any other transport-level error (connection refused, DNS failure,
	// EOF mid-response) is treated as a network error per spec §4.2.
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	return false
}

// withTimeout bounds ctx by the client's configured per-call timeout,
// unless the caller's timeoutOverride is positive, matching the source's
// "if fallback>0 use it, else settings" rule.
func (c *Client) withTimeout(ctx context.Context, timeoutOverride time.Duration) (context.Context, context.CancelFunc) {
	d := c.timeout
	if timeoutOverride > 0 {
		d = timeoutOverride
	}
	return context.WithTimeout(ctx, d)
}

// postNoContent posts body as JSON and only cares whether the call
// succeeded — the response body, if any, is discarded unparsed. Used for
// fire-and-forget style endpoints (administrator escalation) that don't
// return a meaningful payload.
func postNoContent(ctx context.Context, c *Client, path string, body any, timeoutOverride time.Duration) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling request: %w", err)
	}

	_, err = doWithRetry[struct{}](ctx, c, func(ctx context.Context) (struct{}, error) {
		ctx, cancel := c.withTimeout(ctx, timeoutOverride)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(encoded))
		if err != nil {
			return struct{}{}, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return struct{}{}, &httpStatusError{status: resp.StatusCode}
		}
		return struct{}{}, nil
	})
	return err
}

// doWithRetry runs op through the client's retry envelope (C3).
func doWithRetry[T any](ctx context.Context, c *Client, op func(context.Context) (T, error)) (T, error) {
	return retry.Do(ctx, c.retryPolicy, op)
}

// mapTransportErr converts a transport/parse error from postJSON into the
// closed Result error taxonomy. Used by operations where a transport
// failure is a genuine err (reschedule, records, deletion, masters,
// administrator escalation, the secondary CRM); RecordTime instead folds
// transport failure into a business-shaped BookingResult, matching the
// source's always-returns-a-dict behavior, and the availability lookups
// degrade it to an empty slot list.
func mapTransportErr[T any](err error) result.Result[T] {
	var parseErr *parseError
	if errors.As(err, &parseErr) {
		return result.Fail[T](result.CodeInvalidResponse, "некорректный ответ CRM")
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.status == http.StatusUnauthorized || statusErr.status == http.StatusForbidden:
			return result.Fail[T](result.CodeUnauthorized, fmt.Sprintf("HTTP ошибка: %d", statusErr.status))
		case statusErr.status == http.StatusNotFound:
			return result.Fail[T](result.CodeNotFound, fmt.Sprintf("HTTP ошибка: %d", statusErr.status))
		case statusErr.status == http.StatusConflict:
			return result.Fail[T](result.CodeConflict, fmt.Sprintf("HTTP ошибка: %d", statusErr.status))
		case statusErr.status == http.StatusUnprocessableEntity:
			return result.Fail[T](result.CodeValidationError, fmt.Sprintf("HTTP ошибка: %d", statusErr.status))
		case statusErr.status == http.StatusTooManyRequests:
			return result.Fail[T](result.CodeRateLimited, "слишком много запросов к CRM")
		case statusErr.status >= 500:
			return result.Fail[T](result.CodeCRMUnavailable, fmt.Sprintf("CRM недоступен: HTTP %d", statusErr.status))
		default:
			return result.Fail[T](result.CodeCRMError, fmt.Sprintf("HTTP ошибка: %d", statusErr.status))
		}
	}

	return result.Fail[T](result.CodeNetworkError, "сетевая ошибка при обращении к CRM")
}
