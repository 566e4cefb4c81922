package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/govalues/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/quickpos/stablepay/internal/adapter/config"
	"github.com/quickpos/stablepay/internal/core/domain"
)

// Client talks to the transfer provider's REST API. API tokens are
// short-lived; the first caller after expiry fetches a fresh one and
// concurrent callers share that fetch through the singleflight group.
type Client struct {
	logger  *zap.Logger
	baseURL string
	apiKey  string
	client  *http.Client

	group    singleflight.Group
	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func NewClient(cfg *config.Provider, log *zap.Logger) (*Client, error) {
	return &Client{
		logger:  log,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type transferResponse struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	AmountFiat float64 `json:"amountFiat"`
	TxHash     string  `json:"txHash"`
	Network    string  `json:"network"`
	Asset      string  `json:"asset"`
	Sender     string  `json:"sender"`
	Reason     string  `json:"failureReason"`
}

func (c *Client) GetTransfer(ctx context.Context, transferID string) (*domain.ProviderTransfer, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	requestStr := c.baseURL + "/v1/transfers/" + transferID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestStr, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error on %s : %w", requestStr, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error %s : %w", requestStr, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return nil, domain.ErrDataNotFound
		}
		if resp.StatusCode == http.StatusUnauthorized {
			// Token revoked server-side before our expiry; drop the cache so
			// the next call re-fetches.
			c.mu.Lock()
			c.token = ""
			c.mu.Unlock()
		}
		c.logger.Error("unexpected status for transfer request",
			zap.String("transfer", transferID), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("bad response %v for request %s", resp.StatusCode, requestStr)
	}

	var result transferResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error on response decode: %w", err)
	}
	amount, err := decimal.NewFromFloat64(result.AmountFiat)
	if err != nil {
		return nil, fmt.Errorf("error on response decode: %w", err)
	}

	return &domain.ProviderTransfer{
		TransferID:  result.ID,
		Status:      result.Status,
		AmountFiat:  amount,
		TxHash:      result.TxHash,
		NetworkID:   result.Network,
		AssetSymbol: result.Asset,
		Sender:      result.Sender,
		Reason:      result.Reason,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && time.Now().Before(c.tokenExp) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do("token", func() (any, error) {
		return c.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	requestStr := c.baseURL + "/oauth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestStr, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("error on %s : %w", requestStr, err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request error: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad response %v for token request", resp.StatusCode)
	}

	var result tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("error on token decode: %w", err)
	}

	expiresIn := result.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 300
	}

	c.mu.Lock()
	c.token = result.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(expiresIn-30) * time.Second)
	c.mu.Unlock()

	c.logger.Debug("Fetched provider access token")
	return result.AccessToken, nil
}
