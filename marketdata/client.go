package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Distinct failure kinds for the snapshot fetch. The orchestrator maps
// these 1:1 to caller-visible conditions (service unavailable vs gateway
// timeout).
var (
	ErrUnavailable = errors.New("market data service unavailable")
	ErrTimeout     = errors.New("market data request timed out")
)

const maxResponseBodySize = 2 << 20

// Client fetches market context snapshots from the data processor service
type Client struct {
	baseURL     string
	marketIndex string
	timeout     time.Duration
	client      *http.Client
}

// NewClient creates a new market data client
func NewClient(baseURL, marketIndex string, timeout time.Duration) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL:     baseURL,
		marketIndex: marketIndex,
		timeout:     timeout,
		client: &http.Client{
			Transport: transport,
			// No client timeout - the per-call context controls it
		},
	}
}

// FetchContext retrieves the objective snapshot for a ticker. The call is
// bounded by the configured timeout; sub-sections that failed upstream are
// returned as erroring Sections, not as an overall error.
func (c *Client) FetchContext(ctx context.Context, ticker string) (*Snapshot, error) {
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/market/context?%s", c.baseURL, url.Values{
		"ticker":       {ticker},
		"market_index": {c.marketIndex},
	}.Encode())

	req, err := http.NewRequestWithContext(cctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}

	return &Snapshot{
		Ticker:      ticker,
		MarketIndex: c.marketIndex,
		Chart:       parseSection(payload["chart_indicators"]),
		Financial:   parseSection(payload["financial_indicators"]),
		News:        parseSection(payload["related_news"]),
		Market:      parseSection(payload["market_indicators"]),
	}, nil
}

// parseSection turns one raw sub-object into a tagged Section. A missing
// sub-object and an explicit {"error": ...} marker both become erroring
// sections so callers degrade them the same way.
func parseSection(raw json.RawMessage) Section {
	if len(raw) == 0 || string(raw) == "null" {
		return Section{Err: "not provided"}
	}

	var marker struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &marker); err == nil && marker.Error != "" {
		return Section{Err: marker.Error}
	}

	return Section{Data: raw}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
