// Package openai implements the vector encoder over an OpenAI-compatible
// embeddings API. The model is remote: the client is constructed once at
// startup and is safe for concurrent use.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/newsdex/newsdex/internal/domain"
	"github.com/newsdex/newsdex/internal/metrics"
)

// Encoder encodes text via an OpenAI-compatible embeddings endpoint.
// For a fixed model the output is deterministic bar floating-point noise in
// the provider runtime.
type Encoder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	provider   string
	logger     *zap.Logger
}

// Config holds the encoder provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Provider   string
	Logger     *zap.Logger
}

// NewEncoder creates an OpenAI-compatible encoder.
func NewEncoder(cfg *Config) *Encoder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Encoder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		provider:   cfg.Provider,
		logger:     cfg.Logger,
	}
}

var _ domain.Encoder = (*Encoder)(nil)

// Dimensions returns the configured output dimensionality (0 = model default).
func (e *Encoder) Dimensions() int { return e.dimensions }

// Encode implements domain.Encoder. Empty or whitespace-only input is
// rejected with domain.ErrEmptyQuery rather than silently mapped to a zero
// vector.
func (e *Encoder) Encode(ctx context.Context, text string) (domain.EncodingResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.EncodingResult{}, fmt.Errorf("encode: %w", domain.ErrEmptyQuery)
	}

	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()

	resp, err := e.client.CreateEmbeddings(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.EncoderRequestsTotal.WithLabelValues(e.provider, string(e.model), "error").Inc()
		return domain.EncodingResult{}, parseAPIError(err)
	}

	if len(resp.Data) == 0 {
		metrics.EncoderRequestsTotal.WithLabelValues(e.provider, string(e.model), "error").Inc()
		return domain.EncodingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEncoderUnavailable)
	}

	metrics.EncoderRequestsTotal.WithLabelValues(e.provider, string(e.model), "success").Inc()
	metrics.EncoderRequestDuration.WithLabelValues(e.provider, string(e.model)).Observe(duration.Seconds())

	totalTokens := resp.Usage.TotalTokens
	promptTokens := resp.Usage.PromptTokens
	if totalTokens > 0 {
		metrics.EncoderTokensTotal.WithLabelValues(e.provider, string(e.model), "prompt").Add(float64(promptTokens))
		metrics.EncoderTokensTotal.WithLabelValues(e.provider, string(e.model), "total").Add(float64(totalTokens))
	}

	return domain.EncodingResult{
		Vector:       resp.Data[0].Embedding,
		PromptTokens: promptTokens,
		TotalTokens:  totalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Encoder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors wrap domain.ErrEncoderUnavailable for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrEncoderUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("embedding API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("embedding request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
