package charge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/usecase"
)

// Config configures the HTTP charge client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

type chargeRequest struct {
	Customer    string `json:"customer"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

type chargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client implements usecase.ChargeGateway against a JSON charge API. A
// circuit breaker trips on connection-level failures only; declines
// count as successful calls.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	breaker *gobreaker.CircuitBreaker
	logger  zerolog.Logger
}

// NewClient creates a new Client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	logger = logger.With().Str("component", "charge_client").Logger()

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "charge-api",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrChargeDeclined)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		breaker: breaker,
		logger:  logger,
	}
}

// Charge creates a charge and returns its id.
func (c *Client) Charge(ctx context.Context, req usecase.ChargeRequest) (string, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		return c.do(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %w", domain.ErrChargeUnavailable, err)
		}
		return "", err
	}

	return result.(string), nil
}

func (c *Client) do(ctx context.Context, req usecase.ChargeRequest) (string, error) {
	body, err := json.Marshal(chargeRequest{
		Customer:    req.CustomerRef,
		Amount:      req.Amount,
		Currency:    strings.ToLower(string(req.Currency)),
		Description: req.Description,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %w", domain.ErrChargeUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", domain.ErrChargeUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrChargeUnavailable, err)
	}
	defer resp.Body.Close()

	var decoded chargeResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&decoded)

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: status %d", domain.ErrChargeUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		reason := http.StatusText(resp.StatusCode)
		if decoded.Error != nil && decoded.Error.Code != "" {
			reason = decoded.Error.Code
		}
		c.logger.Info().Int("status", resp.StatusCode).Str("reason", reason).
			Str("idempotency_key", req.IdempotencyKey).Msg("charge declined")
		return "", fmt.Errorf("%w: %s", domain.ErrChargeDeclined, reason)
	}

	if decodeErr != nil {
		return "", fmt.Errorf("%w: decode response: %w", domain.ErrChargeUnavailable, decodeErr)
	}
	if decoded.Status != "" && decoded.Status != "succeeded" {
		return "", fmt.Errorf("%w: status %s", domain.ErrChargeDeclined, decoded.Status)
	}
	if decoded.ID == "" {
		return "", fmt.Errorf("%w: response without charge id", domain.ErrChargeUnavailable)
	}

	return decoded.ID, nil
}

// State reports the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}
