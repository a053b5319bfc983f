package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"task-manager/internal/model"
)

const (
	DefaultBaseURL = "https://api.weatherapi.com/v1/current.json"
	DefaultAPIKey  = "YOUR_API_KEY"
	DefaultQuery   = "auto:ip"
	DefaultTimeout = 5 * time.Second
)

// Provider returns the current weather for the configured location.
type Provider interface {
	Current(ctx context.Context) (model.Weather, error)
}

// Client queries the weatherapi.com current-conditions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	query      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, query string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if apiKey == "" {
		apiKey = DefaultAPIKey
	}
	if query == "" {
		query = DefaultQuery
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		query:      query,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type currentResponse struct {
	Current *struct {
		TempC     *float64 `json:"temp_c"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

// Current fetches and classifies the current conditions.
func (c *Client) Current(ctx context.Context) (model.Weather, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return model.Weather{}, fmt.Errorf("parse weather url: %w", err)
	}
	params := endpoint.Query()
	params.Set("key", c.apiKey)
	params.Set("q", c.query)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return model.Weather{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Weather{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return model.Weather{}, fmt.Errorf("weather request: unexpected status %d", resp.StatusCode)
	}

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.Weather{}, fmt.Errorf("decode weather response: %w", err)
	}
	if body.Current == nil || body.Current.TempC == nil {
		return model.Weather{}, errors.New("decode weather response: missing current.temp_c")
	}

	return model.Weather{
		Temp:      int(math.Round(*body.Current.TempC)),
		Condition: model.ClassifyCondition(body.Current.Condition.Text),
	}, nil
}
