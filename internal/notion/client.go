// Package notion is a client for the Notion public API and the adapters that
// expose Notion databases to the reconciler and the schema projector.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	// DefaultBaseURL is the root of the Notion API.
	DefaultBaseURL = "https://api.notion.com"
	// APIVersion is sent in the Notion-Version header.
	APIVersion = "2022-06-28"

	queryPageSize = 100
)

// Client is a client for the Notion REST API.
type Client struct {
	BaseURL string
	Token   string
	client  *http.Client
}

// NewClient creates a new Notion client.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		client:  http.DefaultClient,
	}
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int    `json:"status"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion: %s (status %d): %s", e.Code, e.StatusCode, e.Message)
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// request sends a JSON request and decodes a JSON response into out.
func (c *Client) request(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Notion-Version", APIVersion)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = string(raw)
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// RetrieveDatabase returns the database object including its property schema.
func (c *Client) RetrieveDatabase(ctx context.Context, id string) (*Database, error) {
	var db Database
	if err := c.request(ctx, http.MethodGet, "/v1/databases/"+url.PathEscape(id), nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// QueryDatabase returns every page of the database, following the result
// cursor until the API reports no more results.
func (c *Client) QueryDatabase(ctx context.Context, id string) ([]Page, error) {
	var pages []Page
	cursor := ""
	for {
		var resp queryResponse
		body := queryRequest{StartCursor: cursor, PageSize: queryPageSize}
		if err := c.request(ctx, http.MethodPost, "/v1/databases/"+url.PathEscape(id)+"/query", body, &resp); err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return pages, nil
		}
		cursor = *resp.NextCursor
	}
}

// RetrievePage returns a single page.
func (c *Client) RetrievePage(ctx context.Context, id string) (*Page, error) {
	var page Page
	if err := c.request(ctx, http.MethodGet, "/v1/pages/"+url.PathEscape(id), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreatePage adds a row to a database.
func (c *Client) CreatePage(ctx context.Context, databaseID string, props map[string]any) (*Page, error) {
	var page Page
	body := createPageRequest{Parent: parent{DatabaseID: databaseID}, Properties: props}
	if err := c.request(ctx, http.MethodPost, "/v1/pages", body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePage sets properties on an existing page.
func (c *Client) UpdatePage(ctx context.Context, id string, props map[string]any) (*Page, error) {
	var page Page
	body := updatePageRequest{Properties: props}
	if err := c.request(ctx, http.MethodPatch, "/v1/pages/"+url.PathEscape(id), body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
