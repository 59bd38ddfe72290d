package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wahealth/sca-simulator/internal/domain/entities"
	"github.com/wahealth/sca-simulator/pkg/config"
	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements the consultation scorer and case generator against the
// OpenAI chat-completions API with JSON response mode.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new OpenAI client.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ScoreConsultation submits the transcript and case context to the evaluator
// and returns a validated scoring result. Any response that does not match
// the scoring schema is an error; nothing is coerced or defaulted.
func (c *Client) ScoreConsultation(ctx context.Context, transcript string, cs *entities.Case) (*entities.ScoringResult, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, apperrors.NewValidationError("transcript is required")
	}
	if cs == nil {
		return nil, apperrors.NewValidationError("case details are required")
	}

	prompt := BuildScoringPrompt(transcript, cs)

	content, err := c.complete(ctx, scoringSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	result, err := ParseScoringResult([]byte(content))
	if err != nil {
		return nil, apperrors.NewExternalError("evaluator returned an invalid scoring response", err)
	}

	result.Timestamp = time.Now().UTC()
	return result, nil
}

// GenerateCase asks the model to synthesize a new patient case. Parse and
// transport failures are returned to the caller, which owns the fallback.
func (c *Client) GenerateCase(ctx context.Context) (*entities.GeneratedCase, error) {
	content, err := c.complete(ctx, generationSystemPrompt, generateCasePrompt)
	if err != nil {
		return nil, err
	}

	generated, err := ParseGeneratedCase([]byte(content))
	if err != nil {
		return nil, apperrors.NewExternalError("generator returned an invalid case payload", err)
	}

	return generated, nil
}

// ListModels probes the API; used by the admin connectivity check.
func (c *Client) ListModels(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewExternalError("failed to reach openai", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.NewExternalError(fmt.Sprintf("openai returned status %d", resp.StatusCode), nil)
	}
	return nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.2,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordEvaluatorMetric(ctx, c.model, 0, time.Since(start), err)
		return "", apperrors.NewExternalError("failed to reach openai", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("status %d", resp.StatusCode)
		recordEvaluatorMetric(ctx, c.model, resp.StatusCode, time.Since(start), statusErr)
		return "", apperrors.NewExternalError(fmt.Sprintf("openai request failed with status %d", resp.StatusCode), nil)
	}

	var envelope chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordEvaluatorMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return "", apperrors.NewExternalError("failed to decode openai response", err)
	}

	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		missingErr := errors.New("missing message content")
		recordEvaluatorMetric(ctx, c.model, resp.StatusCode, time.Since(start), missingErr)
		return "", apperrors.NewExternalError("openai response missing message content", missingErr)
	}

	recordEvaluatorMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
	return stripMarkdownFences(envelope.Choices[0].Message.Content), nil
}

// stripMarkdownFences removes a wrapping ```json code block if present.
func stripMarkdownFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}

type evaluatorMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

var evalMetricsInit = false
var evalMetrics evaluatorMetrics

func ensureEvaluatorMetrics() {
	if evalMetricsInit {
		return
	}
	meter := otel.Meter("github.com/wahealth/sca-simulator/openai")

	requestCount, err := meter.Int64Counter(
		"ai.openai.request.count",
		metric.WithDescription("Number of OpenAI requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.openai.request.duration",
		metric.WithDescription("OpenAI request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.openai.request.errors",
		metric.WithDescription("Number of OpenAI request errors"),
	)
	if err != nil {
		return
	}

	evalMetrics = evaluatorMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
	}
	evalMetricsInit = true
}

func recordEvaluatorMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureEvaluatorMetrics()
	if !evalMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	evalMetrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	evalMetrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		evalMetrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
