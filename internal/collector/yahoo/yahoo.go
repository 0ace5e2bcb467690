package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/newthinker/finratio/internal/collector"
	"github.com/newthinker/finratio/internal/core"
	"github.com/newthinker/finratio/internal/metrics"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com/v8/finance/chart"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5
	defaultUserAgent = "Mozilla/5.0 (compatible; finratio/1.0)"

	// lookback is how far before the reference date a close is accepted.
	lookback = 5 * 24 * time.Hour
)

// validSymbol matches exchange symbols like RELIANCE.NS, M&M.NS, BAJAJ-AUTO.BO, AAPL
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9&^-]{1,20}(\.[A-Za-z]{1,4})?$`)

// validateSymbol checks if a symbol has valid format
func validateSymbol(symbol string) error {
	if symbol == "" {
		return core.ErrMissingSymbol
	}
	if len(symbol) > 25 {
		return core.WrapError(core.ErrInvalidInput, fmt.Errorf("symbol too long: %s", symbol))
	}
	if !validSymbol.MatchString(symbol) {
		return core.WrapError(core.ErrInvalidInput, fmt.Errorf("invalid symbol format: %s", symbol))
	}
	return nil
}

// Yahoo implements collector.PriceProvider on the Yahoo Finance chart API
type Yahoo struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	logger    *zap.Logger
	metrics   *metrics.Registry
}

// Option configures a Yahoo provider
type Option func(*Yahoo)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(y *Yahoo) { y.logger = logger }
}

// WithMetrics records every request in reg
func WithMetrics(reg *metrics.Registry) Option {
	return func(y *Yahoo) { y.metrics = reg }
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(y *Yahoo) { y.client = c }
}

// New creates a Yahoo provider. Zero config values fall back to defaults.
func New(cfg collector.Config, opts ...Option) *Yahoo {
	y := &Yahoo{
		baseURL:   DefaultBaseURL,
		userAgent: defaultUserAgent,
		client:    &http.Client{Timeout: DefaultTimeout},
		limiter:   rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:    zap.NewNop(),
	}
	if cfg.BaseURL != "" {
		y.baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.UserAgent != "" {
		y.userAgent = cfg.UserAgent
	}
	if cfg.Timeout > 0 {
		y.client.Timeout = cfg.Timeout
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		y.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

// ClosingPrice returns the last close at or before the end of date's day,
// looking back up to five days to cover weekends and holidays.
func (y *Yahoo) ClosingPrice(ctx context.Context, symbol string, date time.Time) (float64, error) {
	if err := validateSymbol(symbol); err != nil {
		return 0, err
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	end := day.Add(24 * time.Hour)

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", fmt.Sprint(day.Add(-lookback).Unix()))
	params.Set("period2", fmt.Sprint(end.Unix()))

	r, err := y.chart(ctx, symbol, params)
	if err != nil {
		return 0, err
	}
	if len(r.Indicators.Quote) == 0 {
		return 0, y.notFound(symbol, date)
	}

	closes := r.Indicators.Quote[0].Close
	for i := len(r.Timestamp) - 1; i >= 0; i-- {
		if i >= len(closes) || closes[i] == nil {
			continue // Skip missing bars
		}
		if time.Unix(r.Timestamp[i], 0).UTC().Before(end) {
			return *closes[i], nil
		}
	}
	return 0, y.notFound(symbol, date)
}

// Quote fetches the current quote from the chart metadata
func (y *Yahoo) Quote(ctx context.Context, symbol string) (*core.Quote, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "1d")

	r, err := y.chart(ctx, symbol, params)
	if err != nil {
		return nil, err
	}

	meta := r.Meta
	prev := meta.ChartPreviousClose
	if meta.PreviousClose != 0 {
		prev = meta.PreviousClose
	}
	q := &core.Quote{
		Symbol:        symbol,
		Name:          meta.LongName,
		Price:         meta.RegularMarketPrice,
		PreviousClose: prev,
		DayHigh:       meta.RegularMarketDayHigh,
		DayLow:        meta.RegularMarketDayLow,
		Time:          time.Unix(meta.RegularMarketTime, 0).UTC(),
		Source:        y.Name(),
	}
	if q.Name == "" {
		q.Name = meta.ShortName
	}
	if prev != 0 {
		q.Change = core.Round(q.Price-prev, 2)
		q.ChangePercent = core.Round((q.Price-prev)/prev*100, 2)
	}
	return q, nil
}

func (y *Yahoo) chart(ctx context.Context, symbol string, params url.Values) (*chartResult, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/%s?%s", y.baseURL, url.PathEscape(symbol), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", y.userAgent)
	req.Header.Set("Accept", "application/json")

	y.logger.Debug("yahoo request", zap.String("symbol", symbol), zap.String("query", params.Encode()))

	resp, err := y.client.Do(req)
	if err != nil {
		y.metrics.RecordPriceRequest(y.Name(), "error")
		return nil, core.WrapError(core.ErrProviderFailed, fmt.Errorf("fetching chart: %w", err))
	}
	defer resp.Body.Close()

	var result chartResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		y.metrics.RecordPriceRequest(y.Name(), "not_found")
		return nil, core.WrapError(core.ErrPriceNotFound, fmt.Errorf("no chart for symbol: %s", symbol))
	case resp.StatusCode != http.StatusOK:
		y.metrics.RecordPriceRequest(y.Name(), "error")
		return nil, core.WrapError(core.ErrProviderFailed, fmt.Errorf("unexpected status: %d", resp.StatusCode))
	case decodeErr != nil:
		y.metrics.RecordPriceRequest(y.Name(), "error")
		return nil, core.WrapError(core.ErrProviderFailed, fmt.Errorf("decoding response: %w", decodeErr))
	case result.Chart.Error != nil:
		y.metrics.RecordPriceRequest(y.Name(), "error")
		return nil, core.WrapError(core.ErrProviderFailed, fmt.Errorf("yahoo error: %s", result.Chart.Error.Description))
	case len(result.Chart.Result) == 0:
		y.metrics.RecordPriceRequest(y.Name(), "not_found")
		return nil, core.WrapError(core.ErrPriceNotFound, fmt.Errorf("no data for symbol: %s", symbol))
	}

	y.metrics.RecordPriceRequest(y.Name(), "success")
	return &result.Chart.Result[0], nil
}

func (y *Yahoo) notFound(symbol string, date time.Time) error {
	return core.WrapError(core.ErrPriceNotFound,
		fmt.Errorf("no close for %s on or before %s", symbol, date.Format(time.DateOnly)))
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type chartMeta struct {
	Symbol               string  `json:"symbol"`
	LongName             string  `json:"longName"`
	ShortName            string  `json:"shortName"`
	RegularMarketPrice   float64 `json:"regularMarketPrice"`
	RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
	RegularMarketTime    int64   `json:"regularMarketTime"`
	ChartPreviousClose   float64 `json:"chartPreviousClose"`
	PreviousClose        float64 `json:"previousClose"`
}

type indicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	Close []*float64 `json:"close"`
}
