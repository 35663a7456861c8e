package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fxconvert/internal/domain"
	"net/http"
	"net/url"
	"strings"
)

const (
	dateEndpoint      = "/currency-api@%s"
	currencyEndpoint  = "/currencies/%s.json"
	currenciesListing = "/currencies.json"
)

var ErrDateUnavailable = errors.New("current date is unavailable, try different date")

// CurrencyAPIClient talks to the jsdelivr-hosted fawazahmed0 currency API.
type CurrencyAPIClient struct {
	http      *http.Client
	baseURL   string
	version   string
	reference string
}

func NewCurrencyAPIClient(httpClient *http.Client, baseURL, version string) *CurrencyAPIClient {
	return &CurrencyAPIClient{
		http:      httpClient,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		version:   strings.Trim(version, "/"),
		reference: domain.ReferenceCurrency,
	}
}

// BuildURL returns the request target for date and currency filter.
func (c *CurrencyAPIClient) BuildURL(date, currency string) (string, error) {
	if date == "" {
		date = domain.DateLatest
	}
	endpoint := currenciesListing
	if currency != "" {
		endpoint = fmt.Sprintf(currencyEndpoint, currency)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + fmt.Sprintf(dateEndpoint, date) + "/" + c.version + endpoint
	return u.String(), nil
}

func (c *CurrencyAPIClient) Fetch(ctx context.Context, date string, currency string) (domain.RateSnapshot, error) {
	target, err := c.BuildURL(date, currency)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("%w: failed to create request for date %q: %w", domain.ErrFetch, date, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("%w: failed to execute request for date %q: %w", domain.ErrFetch, date, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.RateSnapshot{}, fmt.Errorf("%w: %w (status %d)", domain.ErrFetch, ErrDateUnavailable, resp.StatusCode)
	}

	var body map[string]json.RawMessage
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("%w: failed to decode response for date %q: %w", domain.ErrFetch, date, err)
	}

	return c.toSnapshot(body, currency)
}

func (c *CurrencyAPIClient) toSnapshot(body map[string]json.RawMessage, currency string) (domain.RateSnapshot, error) {
	tableKey := currency
	if tableKey == "" {
		tableKey = c.reference
	}

	var snapshot domain.RateSnapshot
	rawDate, ok := body["date"]
	if !ok {
		return snapshot, fmt.Errorf("%w: response has no date", domain.ErrFetch)
	}
	if err := json.Unmarshal(rawDate, &snapshot.Date); err != nil || snapshot.Date == "" {
		return snapshot, fmt.Errorf("%w: response has invalid date %s", domain.ErrFetch, string(rawDate))
	}

	rawTable, ok := body[tableKey]
	if !ok {
		return snapshot, fmt.Errorf("%w: response has no %q rates table", domain.ErrFetch, tableKey)
	}
	if err := json.Unmarshal(rawTable, &snapshot.Rates); err != nil {
		return snapshot, fmt.Errorf("%w: failed to decode %q rates table: %w", domain.ErrFetch, tableKey, err)
	}
	if snapshot.Rates == nil {
		snapshot.Rates = map[string]float64{}
	}
	return snapshot, nil
}
