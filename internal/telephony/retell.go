package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	retellCreateCallPath = "/v2/create-phone-call"
	// maxErrorBody caps how much of a failed response is kept on APIError.
	maxErrorBody = 4 << 10
)

// RetellProvider places calls through the Retell REST API.
type RetellProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewRetellProvider(apiKey, baseURL string, timeout time.Duration) *RetellProvider {
	return &RetellProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *RetellProvider) Name() string { return "retell" }

type retellCreateCallRequest struct {
	FromNumber       string            `json:"from_number"`
	ToNumber         string            `json:"to_number"`
	OverrideAgentID  string            `json:"override_agent_id,omitempty"`
	Metadata         CallMetadata      `json:"metadata"`
	DynamicVariables map[string]string `json:"retell_llm_dynamic_variables"`
}

type retellCreateCallResponse struct {
	CallID     string `json:"call_id"`
	CallStatus string `json:"call_status"`
}

func (p *RetellProvider) PlaceCall(ctx context.Context, req PlaceCallRequest) (PlaceCallResult, error) {
	vars := map[string]string{
		"driver_name": req.Metadata.DriverName,
		"load_number": req.Metadata.LoadNumber,
	}
	if req.Script != "" {
		vars["agent_prompt"] = req.Script
	}
	body, err := json.Marshal(retellCreateCallRequest{
		FromNumber:       req.FromNumber,
		ToNumber:         req.ToNumber,
		OverrideAgentID:  req.OverrideAgentID,
		Metadata:         req.Metadata,
		DynamicVariables: vars,
	})
	if err != nil {
		return PlaceCallResult{}, fmt.Errorf("telephony: marshal retell request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+retellCreateCallPath, bytes.NewReader(body))
	if err != nil {
		return PlaceCallResult{}, fmt.Errorf("telephony: build retell request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return PlaceCallResult{}, fmt.Errorf("telephony: retell request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return PlaceCallResult{}, &APIError{Provider: p.Name(), StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out retellCreateCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return PlaceCallResult{}, fmt.Errorf("telephony: decode retell response: %w", err)
	}
	if out.CallID == "" {
		return PlaceCallResult{}, ErrNoCallID
	}
	return PlaceCallResult{CallID: out.CallID}, nil
}
