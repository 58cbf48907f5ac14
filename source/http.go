package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fxpulse/fxpulse/errclass"
	"github.com/fxpulse/fxpulse/quote"
)

// ratePayload is the wire shape of the upstream rate endpoint.
type ratePayload struct {
	Rate        float64 `json:"rate"`
	DerivedRate float64 `json:"derived_rate"`
	Source      string  `json:"source"`
}

// HTTPClient fetches the tracked rate from a JSON HTTP endpoint. Failures are
// returned pre-classified: transport faults as Network, non-2xx statuses as
// Api (with the status code in details), malformed bodies as Parsing.
type HTTPClient struct {
	url    string
	pair   string
	client *http.Client
}

// NewHTTPClient creates a client for the rate endpoint at url. pair names the
// currency pair requested via the `pair` query parameter. httpClient may be
// nil; a default client is then used.
func NewHTTPClient(url, pair string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{url: url, pair: pair, client: httpClient}
}

// Fetch implements Source.
func (c *HTTPClient) Fetch(ctx context.Context) (quote.Value, error) {
	var zero quote.Value

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return zero, errclass.New("build rate request", errclass.Unknown, map[string]any{"url": c.url})
	}
	q := req.URL.Query()
	q.Set("pair", c.pair)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return zero, errclass.Wrap(ctx.Err())
		}
		return zero, errclass.New(fmt.Sprintf("fetch rate: %v", err), errclass.Network, nil)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, errclass.New(
			fmt.Sprintf("rate endpoint returned status %d", resp.StatusCode),
			errclass.Api,
			map[string]any{"status": resp.StatusCode},
		)
	}

	var payload ratePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return zero, errclass.New(fmt.Sprintf("decode rate response: %v", err), errclass.Parsing, nil)
	}
	if payload.Rate <= 0 {
		return zero, errclass.New("rate response missing a positive rate", errclass.Parsing, nil)
	}

	derived := payload.DerivedRate
	if derived == 0 {
		derived = 1 / payload.Rate
	}
	src := payload.Source
	if src == "" {
		src = req.URL.Host
	}

	return quote.Value{
		Primary:   payload.Rate,
		Derived:   derived,
		Timestamp: time.Now().UTC(),
		Source:    src,
	}, nil
}
