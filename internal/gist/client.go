// Package gist is a minimal client for the two GitHub Gist API calls the
// shared document needs: read a gist and overwrite one of its files.
package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mcoot/spiderleague/internal/model"
)

// DefaultBaseURL is the public GitHub API
const DefaultBaseURL = "https://api.github.com"

// DefaultTimeout bounds a single request
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is kept in the error
const maxErrorBody = 512

// File is one file of a gist as returned by the API
type File struct {
	Filename  string `json:"filename,omitempty"`
	Size      int    `json:"size,omitempty"`
	RawURL    string `json:"raw_url,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
	Content   string `json:"content"`
}

// Gist is the subset of the gist resource the client reads
type Gist struct {
	ID        string          `json:"id"`
	Files     map[string]File `json:"files"`
	UpdatedAt time.Time       `json:"updated_at,omitzero"`
}

// UpdateRequest is the PATCH body; only file contents are sent
type UpdateRequest struct {
	Files map[string]FileContent `json:"files"`
}

// FileContent is the new content of one file in an UpdateRequest
type FileContent struct {
	Content string `json:"content"`
}

// StatusError is a non-success HTTP response. It matches
// model.ErrNetworkOrAuthFailure under errors.Is.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return model.ErrNetworkOrAuthFailure
}

// apiError is GitHub's error body
type apiError struct {
	Message string `json:"message"`
}

// Client is an HTTP client for the Gist API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client. A nil httpClient gets a default one
// with DefaultTimeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Get fetches a gist
func (c *Client) Get(ctx context.Context, token, gistID string) (*Gist, error) {
	var g Gist
	if err := c.doJSON(ctx, http.MethodGet, c.gistURL(gistID), token, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateFile replaces the content of one file of a gist. Other files of the
// gist are left alone; the file is created if it does not exist.
func (c *Client) UpdateFile(ctx context.Context, token, gistID, filename, content string) error {
	body := UpdateRequest{
		Files: map[string]FileContent{
			filename: {Content: content},
		},
	}
	return c.doJSON(ctx, http.MethodPatch, c.gistURL(gistID), token, body, nil)
}

// FileContent returns the full content of f. The API inlines at most about
// a megabyte per file; beyond that it marks the file truncated and the
// content is fetched from its raw URL.
func (c *Client) FileContent(ctx context.Context, token string, f File) (string, error) {
	if !f.Truncated {
		return f.Content, nil
	}
	if f.RawURL == "" {
		return "", fmt.Errorf("%w: file %s is truncated and has no raw url", model.ErrNetworkOrAuthFailure, f.Filename)
	}
	data, err := c.do(ctx, http.MethodGet, f.RawURL, token, nil, "")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Client) gistURL(gistID string) string {
	return c.baseURL + "/gists/" + url.PathEscape(gistID)
}

func (c *Client) doJSON(ctx context.Context, method, target, token string, body, result any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = data
	}

	respBody, err := c.do(ctx, method, target, token, payload, "application/vnd.github+json")
	if err != nil {
		return err
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: failed to parse response: %w", model.ErrNetworkOrAuthFailure, err)
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, target, token string, payload []byte, accept string) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrNetworkOrAuthFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", model.ErrNetworkOrAuthFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method:     method,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
		}
	}
	return respBody, nil
}

func errorMessage(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return msg
}
