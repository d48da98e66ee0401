package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ndeen17/Escrow/config"
	"github.com/ndeen17/Escrow/model"
)

// EscrowClient talks to the external escrow backend that stores contracts
// and user accounts. Calls are one-shot and never retried here; retry is a
// user action.
type EscrowClient struct {
	config     *config.EscrowConfig
	httpClient *http.Client
}

// ContractRequest is the contract-creation payload.
type ContractRequest struct {
	model.ContractDraft
	Status string `json:"status"`
}

// ContractResponse is returned by the contract-creation endpoint.
type ContractResponse struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

// RegisterRequest creates an account, optionally together with the user's
// first contract in the same request.
type RegisterRequest struct {
	Subject         string           `json:"subject"`
	Email           string           `json:"email"`
	FirstName       string           `json:"first_name"`
	LastName        string           `json:"last_name"`
	Country         string           `json:"country"`
	Role            string           `json:"role"`
	InitialContract *ContractRequest `json:"initial_contract,omitempty"`
}

// RegisterResponse is returned by the registration endpoint.
type RegisterResponse struct {
	Profile model.UserProfile `json:"profile"`
	Error   string            `json:"error,omitempty"`
}

func NewEscrowClient(cfg *config.EscrowConfig) *EscrowClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &EscrowClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateContract submits a contract with the given status, authenticated
// with the caller's identity-provider token.
func (c *EscrowClient) CreateContract(ctx context.Context, token string, draft model.ContractDraft, status string) (*ContractResponse, error) {
	var result ContractResponse
	err := c.postJSON(ctx, "/contracts", token, ContractRequest{ContractDraft: draft, Status: status}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates the user's account, carrying the contract draft as the
// initial contract when one is pending.
func (c *EscrowClient) Register(ctx context.Context, token string, req RegisterRequest) (*model.UserProfile, error) {
	var result RegisterResponse
	if err := c.postJSON(ctx, "/users/register", token, req, &result); err != nil {
		return nil, err
	}
	return &result.Profile, nil
}

func (c *EscrowClient) postJSON(ctx context.Context, path, token string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.APIURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("escrow API error: %s", apiErr.Error)
		}
		return fmt.Errorf("escrow API error: status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w, body: %s", err, string(respBody))
	}

	return nil
}
