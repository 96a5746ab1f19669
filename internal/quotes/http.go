package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultHTTPTimeout = 10 * time.Second

// APIError represents a quote API error with status code and response body.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Body)
}

// HTTPProvider fetches quotes from a Tradier-style market data endpoint
// (GET {base}/markets/quotes?symbols=SYM with bearer auth).
type HTTPProvider struct {
	client  *http.Client
	logger  *logrus.Logger
	apiKey  string
	baseURL string
}

var _ Provider = (*HTTPProvider)(nil)

// NewHTTPProvider creates an HTTP quote provider. logger may be nil.
func NewHTTPProvider(baseURL, apiKey string, logger *logrus.Logger) *HTTPProvider {
	if logger == nil {
		logger = logrus.New()
	}
	return &HTTPProvider{
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		logger:  logger,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// WithClient replaces the underlying HTTP client; used by tests to point at
// an httptest server with custom transport behavior.
func (p *HTTPProvider) WithClient(client *http.Client) *HTTPProvider {
	if client != nil {
		p.client = client
	}
	return p
}

type quotesResponse struct {
	Quotes struct {
		Quote []Quote `json:"quote"`
	} `json:"quotes"`
}

// GetQuote fetches the quote for a single symbol.
func (p *HTTPProvider) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	params := url.Values{}
	params.Set("symbols", strings.ToUpper(symbol))
	endpoint := p.baseURL + "/markets/quotes?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Authorization", "Bearer "+p.apiKey)
	req.Header.Add("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			p.logger.WithError(cerr).Warn("failed to close quote response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var decoded quotesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding quote response: %w", err)
	}
	if len(decoded.Quotes.Quote) == 0 {
		return nil, fmt.Errorf("no quote found for symbol: %s", symbol)
	}
	q := decoded.Quotes.Quote[0]
	return &q, nil
}
