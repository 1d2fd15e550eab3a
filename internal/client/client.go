// Package client talks to the dashboard server's HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/j-veylop/tokenflex-dashboard/internal/models"
)

const maxErrorBody = 4 << 10

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Client is a dashboard server client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client. httpClient may be nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Contracts lists the Token Flex contracts visible to the server's login.
func (c *Client) Contracts(ctx context.Context) ([]models.Contract, error) {
	var out []models.Contract
	if err := c.do(ctx, http.MethodGet, "/api/contract", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Submit runs the usage queries for a contract and returns the results.
func (c *Client) Submit(ctx context.Context, accountID string) ([]models.QueryResult, error) {
	body := map[string]string{"selectedValue": accountID}
	var out []models.QueryResult
	if err := c.do(ctx, http.MethodPost, "/api/submit-dropdown", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Latest returns the most recent batch results held by the server.
func (c *Client) Latest(ctx context.Context) ([]models.QueryResult, error) {
	var out []models.QueryResult
	if err := c.do(ctx, http.MethodGet, "/api/usecase1", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// History returns persisted batches for a contract, newest first.
func (c *Client) History(ctx context.Context, accountID string, limit int) ([]models.UsageBatch, error) {
	path := "/api/history/" + url.PathEscape(accountID)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []models.UsageBatch
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Chat sends a message to the dashboard assistant. accountID may be empty.
func (c *Client) Chat(ctx context.Context, message, accountID string) (models.ChatReply, error) {
	body := map[string]any{"message": message}
	if accountID != "" {
		body["context"] = map[string]string{"accountId": accountID}
	}
	var out models.ChatReply
	err := c.do(ctx, http.MethodPost, "/api/chatbot", body, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// decodeError reads either {"message"} or {"error"} bodies.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
