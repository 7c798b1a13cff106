package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/me/createtaxdb/internal/logging"
	"github.com/me/createtaxdb/pkg/model"
)

// Client talks to the platform services on behalf of one execution.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *slog.Logger
}

// NewClient creates a platform client with the given configuration.
func NewClient(config Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	if config.TokenEnv == "" {
		config.TokenEnv = DefaultTokenEnv
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     config,
		logger:     logger.With("component", "platform-client"),
	}
}

// token returns the execution token from the environment.
func (c *Client) token() (string, error) {
	tok, ok := os.LookupEnv(c.config.TokenEnv)
	if !ok || tok == "" {
		return "", fmt.Errorf("%w: %s is not set", model.ErrMissingCredential, c.config.TokenEnv)
	}
	return tok, nil
}

// postJSON sends body as JSON to url with the execution token and decodes
// a 2xx response into out. A nil out discards the response body.
func (c *Client) postJSON(ctx context.Context, url, token string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Latch-Execution-Token "+token)

	c.logger.Debug("sending request", "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(respBody))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshaling response: %w", err)
	}
	return nil
}
