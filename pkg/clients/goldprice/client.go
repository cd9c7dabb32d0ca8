package goldprice

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"go-jewelry-pos/internal/config"
)

// Client fetches today's gold prices per purity from an external feed.
type Client interface {
	FetchPrices(ctx context.Context) ([]Quote, error)
}

// Quote is one purity's price per gram in rupiah.
type Quote struct {
	Purity       string `json:"purity"`
	PricePerGram int64  `json:"price_per_gram"`
}

type pricesResponse struct {
	Prices []Quote `json:"prices"`
}

type apiError struct {
	Message string `json:"message"`
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

func NewClient(cfg config.GoldFeedConfig) *APIClient {
	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	if cfg.APIKey != "" {
		rc.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	return &APIClient{httpClient: rc}
}

func (c *APIClient) FetchPrices(ctx context.Context) ([]Quote, error) {
	result := new(pricesResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get("/prices")
	if err != nil {
		return nil, fmt.Errorf("fetch gold prices: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("gold feed error: code=%d, message=%s", resp.StatusCode(), apiErr.Message)
	}

	quotes := make([]Quote, 0, len(result.Prices))
	for _, q := range result.Prices {
		if q.Purity == "" || q.PricePerGram <= 0 {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}
