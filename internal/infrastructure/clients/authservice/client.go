package authservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/wahealth/sca-simulator/internal/domain/providers"
	"github.com/wahealth/sca-simulator/pkg/config"
	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
)

// Client proxies registration to the central auth service. The simulator
// never stores credentials itself; it only keeps a local profile row once
// the auth service has accepted the account.
type Client struct {
	registerURL string
	appName     string
	httpClient  *http.Client
}

// NewClient creates a new auth service client.
func NewClient(cfg *config.AuthServiceConfig) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.New("auth service url is required")
	}

	return &Client{
		registerURL: cfg.RegisterURL(),
		appName:     cfg.AppName,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

type registerPayload struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
	AppName   string `json:"app_name"`
	Role      string `json:"role"`
}

type registerResponse struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
}

// Register forwards the registration request upstream. Upstream rejections
// keep their original status and body so the handler can relay them to the
// client verbatim, cookies included.
func (c *Client) Register(ctx context.Context, req providers.RegistrationRequest) (*providers.RegistrationResult, error) {
	payload := registerPayload{
		Name:      req.Name,
		Email:     req.Email,
		Password1: req.Password1,
		Password2: req.Password2,
		AppName:   c.appName,
		Role:      req.Role,
	}
	if req.AppName != "" {
		payload.AppName = req.AppName
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.registerURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to reach auth service", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to read auth service response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewUpstreamError("auth service rejected registration", resp.StatusCode, respBody)
	}

	var parsed registerResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, apperrors.NewExternalError("failed to decode auth service response", err)
	}
	if parsed.UserID == "" {
		return nil, apperrors.NewExternalError("auth service response missing user id", nil)
	}

	return &providers.RegistrationResult{
		UserID:      parsed.UserID,
		AccessToken: parsed.AccessToken,
		SetCookie:   resp.Header.Get("Set-Cookie"),
	}, nil
}
