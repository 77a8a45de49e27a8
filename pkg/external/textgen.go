package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/biomerkin/decision-engine/internal/domain"
)

const (
	defaultTextGenTimeout = 30 * time.Second
	defaultRateLimit      = 2 // requests per second
)

// TextGenClient calls the external narrative text-generation service. It
// implements domain.TextGenerator: on any failure (disabled backend, rate
// limit, open circuit, transport error, bad response) it returns ok=false and
// the caller falls back to templated text. It never returns an error.
type TextGenClient struct {
	baseURL    string
	apiKey     string
	model      string
	enabled    bool
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	cache      *NarrativeCache
	logger     *logrus.Logger
}

// generateRequest is the wire request to the text-generation service.
type generateRequest struct {
	Model     string            `json:"model"`
	MaxTokens int               `json:"max_tokens"`
	Messages  []generateMessage `json:"messages"`
}

type generateMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// generateResponse is the wire response from the text-generation service.
type generateResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// NewTextGenClient creates the client. A nil cache disables response caching.
func NewTextGenClient(config domain.TextGenConfig, cache *NarrativeCache, logger *logrus.Logger) *TextGenClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTextGenTimeout
	}
	rateLimit := config.RateLimit
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}
	breakerTimeout := config.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "TextGen",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger != nil {
				logger.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("Circuit breaker state changed")
			}
		},
	})

	return &TextGenClient{
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
		model:      config.Model,
		enabled:    config.Enabled && config.BaseURL != "",
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		breaker:    breaker,
		cache:      cache,
		logger:     logger,
	}
}

// GenerateText requests narrative text for a prompt. The call is bounded by
// the configured timeout in addition to the caller's context.
func (t *TextGenClient) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, bool) {
	if !t.enabled {
		return "", false
	}

	key := NarrativeKey(t.model, prompt, maxTokens)
	if t.cache != nil {
		if text, ok := t.cache.Get(ctx, key); ok {
			return text, true
		}
	}

	if err := t.limiter.Wait(ctx); err != nil {
		t.logFailure("rate limiter", err)
		return "", false
	}

	result, err := t.breaker.Execute(func() (interface{}, error) {
		return t.doGenerate(ctx, prompt, maxTokens)
	})
	if err != nil {
		t.logFailure("generation", err)
		return "", false
	}

	text, ok := result.(string)
	if !ok || text == "" {
		return "", false
	}

	if t.cache != nil {
		t.cache.Set(ctx, key, text, 0)
	}
	return text, true
}

func (t *TextGenClient) doGenerate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Model:     t.model,
		MaxTokens: maxTokens,
		Messages:  []generateMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, t.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("x-api-key", t.apiKey)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var generated generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(generated.Content) == 0 {
		return "", fmt.Errorf("empty response content")
	}

	return generated.Content[0].Text, nil
}

func (t *TextGenClient) logFailure(stage string, err error) {
	if t.logger != nil {
		t.logger.WithError(err).WithField("stage", stage).Warn("Text generation failed")
	}
}

// BreakerState exposes the circuit breaker state for health reporting.
func (t *TextGenClient) BreakerState() gobreaker.State {
	return t.breaker.State()
}
