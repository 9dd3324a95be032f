package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockpulse/ranker/internal/domain"
	"github.com/stockpulse/ranker/pkg/formulas"
)

// Client fetches realized returns from the Yahoo Finance chart API.
type Client struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://query1.finance.yahoo.com",
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

// ChartSymbol converts a plain ticker to the Yahoo chart symbol.
// Bare tickers default to the NSE suffix; index symbols (^NSEI) and
// tickers that already carry an exchange suffix pass through unchanged.
func ChartSymbol(ticker string) string {
	if strings.HasPrefix(ticker, "^") || strings.Contains(ticker, ".") {
		return ticker
	}
	return ticker + ".NS"
}

// FetchReturn computes the close-to-close percentage return for a ticker
// over [start, end]. Returns domain.ErrNotAvailable when the symbol is
// unknown, delisted, or has no price data in the window.
func (c *Client) FetchReturn(ctx context.Context, ticker string, start, end time.Time) (float64, error) {
	closes, err := c.fetchCloses(ctx, ChartSymbol(ticker), start, end)
	if err != nil {
		return 0, err
	}
	if len(closes) < 2 {
		return 0, fmt.Errorf("ticker %s has %d price points in window: %w", ticker, len(closes), domain.ErrNotAvailable)
	}

	ret := formulas.PointToPointReturn(closes[0], closes[len(closes)-1])
	c.log.Debug().
		Str("ticker", ticker).
		Time("start", start).
		Time("end", end).
		Float64("return_pct", ret).
		Msg("Fetched realized return")
	return ret, nil
}

// chartResponse is the subset of the chart API payload we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *Client) fetchCloses(ctx context.Context, symbol string, start, end time.Time) ([]float64, error) {
	params := url.Values{}
	params.Add("period1", fmt.Sprintf("%d", start.Unix()))
	params.Add("period2", fmt.Sprintf("%d", end.Unix()))
	params.Add("interval", "1d")

	reqURL := c.baseURL + "/v8/finance/chart/" + url.QueryEscape(symbol) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Headers to mimic browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("symbol %s: %w", symbol, domain.ErrNotAvailable)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("chart API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error %s (%s): %w",
			result.Chart.Error.Code, result.Chart.Error.Description, domain.ErrNotAvailable)
	}
	if len(result.Chart.Result) == 0 || len(result.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("symbol %s has no chart data: %w", symbol, domain.ErrNotAvailable)
	}

	// Yahoo encodes missing bars as zero closes
	var closes []float64
	for _, v := range result.Chart.Result[0].Indicators.Quote[0].Close {
		if v > 0 {
			closes = append(closes, v)
		}
	}
	return closes, nil
}
