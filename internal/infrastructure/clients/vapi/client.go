package vapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wahealth/sca-simulator/internal/domain/entities"
	"github.com/wahealth/sca-simulator/pkg/config"
	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
)

// Client retrieves call records from the Vapi voice platform.
type Client struct {
	baseURL     string
	apiKey      string
	assistantID string
	httpClient  *http.Client
}

// NewClient creates a new Vapi client.
func NewClient(cfg *config.VapiConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("vapi api key is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("vapi base url is required")
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		assistantID: cfg.AssistantID,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}, nil
}

// GetCall fetches a call record and extracts its transcript. Upstream error
// statuses are surfaced to the caller with their original status and body so
// the API can proxy them through unchanged.
func (c *Client) GetCall(ctx context.Context, callID string) (*entities.CallDetails, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/call/%s", c.baseURL, callID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to reach vapi", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to read vapi response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewUpstreamError("vapi request failed", resp.StatusCode, body)
	}

	var record callRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, apperrors.NewExternalError("failed to decode vapi call record", err)
	}

	details := &entities.CallDetails{
		CallID:     callID,
		Status:     record.Status,
		Transcript: ExtractTranscript(&record),
	}
	if record.StartedAt != "" && record.EndedAt != "" {
		details.Duration = callDuration(record.StartedAt, record.EndedAt)
	}

	return details, nil
}

// Healthy probes the API by fetching the configured assistant.
func (c *Client) Healthy(ctx context.Context) error {
	if c.assistantID == "" {
		return errors.New("no assistant id configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/assistant/%s", c.baseURL, c.assistantID), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewExternalError("failed to reach vapi", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.NewExternalError(fmt.Sprintf("vapi returned status %d", resp.StatusCode), nil)
	}
	return nil
}

func callDuration(startedAt, endedAt string) float64 {
	start, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return 0
	}
	end, err := time.Parse(time.RFC3339, endedAt)
	if err != nil {
		return 0
	}
	return end.Sub(start).Seconds()
}
