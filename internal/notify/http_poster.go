package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const httpErrorBodyLimit = 1024

type timingConfig struct {
	timeout     time.Duration
	minInterval time.Duration
}

var defaultTiming = timingConfig{
	timeout: 5 * time.Second,
}

// DispatchError reports a failed outbound notification.
type DispatchError struct {
	Service    string
	URL        string
	StatusCode int
	Err        error
}

func (e *DispatchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s dispatch to %s failed: status %d: %v", e.Service, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s dispatch to %s failed: %v", e.Service, e.URL, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// httpPoster issues a single POST per call. Retries are disabled on the client.
type httpPoster struct {
	logger      zerolog.Logger
	serviceName string
	webhookURL  string
	contentType string
	client      *retryablehttp.Client
	timing      timingConfig
	limiter     *rate.Limiter
}

func newHTTPPoster(logger zerolog.Logger, serviceName, webhookURL, contentType string, timing timingConfig) *httpPoster {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.CheckRetry = func(_ context.Context, _ *http.Response, _ error) (bool, error) {
		return false, nil
	}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil
	client.HTTPClient = &http.Client{Timeout: timing.timeout}

	poster := &httpPoster{
		logger:      logger,
		serviceName: serviceName,
		webhookURL:  webhookURL,
		contentType: contentType,
		client:      client,
		timing:      timing,
	}
	if timing.minInterval > 0 {
		poster.limiter = rate.NewLimiter(rate.Every(timing.minInterval), 1)
	}
	return poster
}

func (n *httpPoster) waitForRateLimit(ctx context.Context) error {
	if n.limiter == nil {
		return nil
	}
	return n.limiter.Wait(ctx)
}

// postOnce sends payload and reports any failure as a *DispatchError.
// A nil payload sends an empty body.
func (n *httpPoster) postOnce(ctx context.Context, payload []byte) error {
	reqCtx, cancel := context.WithTimeout(ctx, n.timing.timeout)
	defer cancel()

	var body any
	if payload != nil {
		body = payload
	}
	req, err := retryablehttp.NewRequestWithContext(reqCtx, http.MethodPost, n.webhookURL, body)
	if err != nil {
		return n.dispatchError(0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", n.contentType)

	resp, err := n.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return n.dispatchError(0, fmt.Errorf("request timed out after %s: %w", n.timing.timeout, err))
		}
		return n.dispatchError(0, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, httpErrorBodyLimit))
	bodyText := strings.TrimSpace(string(raw))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if bodyText != "" {
		return n.dispatchError(resp.StatusCode, fmt.Errorf("unexpected response %s (%s)", resp.Status, bodyText))
	}
	return n.dispatchError(resp.StatusCode, fmt.Errorf("unexpected response %s", resp.Status))
}

func (n *httpPoster) dispatchError(status int, err error) error {
	return &DispatchError{
		Service:    n.serviceName,
		URL:        n.webhookURL,
		StatusCode: status,
		Err:        err,
	}
}
