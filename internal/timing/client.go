package timing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

// ErrRemoteTiming marks any failure to obtain a valid payload from the timing
// service. Callers recover by falling back to the cache.
var ErrRemoteTiming = errors.New("remote timing service failed")

// Client fetches prayer times from the Al Adhan API. It is stateless:
// identical (date, coordinates, method) inputs yield cacheable results.
type Client struct {
	httpClient *http.Client
	// BaseURL defaults to the public Al Adhan API. Exported for httptest.
	BaseURL string

	maxAttempts int
	backoff     time.Duration
}

// NewClient creates a client with a request timeout and bounded retry. A
// single-shot call against a public API is unreliable; two retries with a
// short backoff cover transient failures without delaying the caller much.
func NewClient() *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		BaseURL:     defaultBaseURL,
		maxAttempts: 3,
		backoff:     500 * time.Millisecond,
	}
}

// FetchTimings fetches prayer times for the given date, coordinates and
// calculation method id. methodID < 0 leaves the service’s default method.
func (c *Client) FetchTimings(ctx context.Context, date time.Time, lat, lon float64, methodID int) (*Response, error) {
	endpoint := fmt.Sprintf("%s/timings/%s", c.BaseURL, date.Format("02-01-2006"))

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", lat))
	params.Set("longitude", fmt.Sprintf("%f", lon))
	if methodID >= 0 {
		params.Set("method", fmt.Sprintf("%d", methodID))
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.doRequest(ctx, endpoint, params)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		log.Warn().Err(err).
			Int("attempt", attempt).
			Str("date", date.Format("2006-01-02")).
			Msg("timing request failed")

		if attempt < c.maxAttempts {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrRemoteTiming, ctx.Err())
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrRemoteTiming, lastErr)
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", endpoint, params.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp Response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}
	if apiResp.Code != 200 {
		return nil, fmt.Errorf("service error: code=%d status=%s", apiResp.Code, apiResp.Status)
	}
	return &apiResp, nil
}
