// Package todoist is a client for the Todoist Sync API and its adapter to the
// reconciler's sink interface.
package todoist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the root of the Todoist API.
	DefaultBaseURL = "https://api.todoist.com"

	syncPath      = "/sync/v9/sync"
	completedPath = "/sync/v9/completed/get_all"

	completedPageSize = 200
)

// Client is a client for the Todoist Sync API. Writes are queued by the
// staging methods and sent in one batch by Commit.
type Client struct {
	BaseURL string
	Token   string
	client  *http.Client
	queue   []Command
}

// NewClient creates a new Todoist client.
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

// post sends a form-encoded request and decodes the JSON response into out.
func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Sync performs a full read of projects and active items.
func (c *Client) Sync(ctx context.Context) (*SyncResponse, error) {
	form := url.Values{}
	form.Set("sync_token", "*")
	form.Set("resource_types", `["projects","items"]`)

	var resp SyncResponse
	if err := c.post(ctx, syncPath, form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CompletedItems returns the whole completed tasks log.
func (c *Client) CompletedItems(ctx context.Context) ([]CompletedItem, error) {
	var all []CompletedItem
	for offset := 0; ; offset += completedPageSize {
		form := url.Values{}
		form.Set("annotate_items", "true")
		form.Set("limit", strconv.Itoa(completedPageSize))
		form.Set("offset", strconv.Itoa(offset))

		var resp completedResponse
		if err := c.post(ctx, completedPath, form, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Items...)
		if len(resp.Items) < completedPageSize {
			return all, nil
		}
	}
}

func (c *Client) stage(typ string, tempID string, args map[string]any) {
	c.queue = append(c.queue, Command{
		Type:   typ,
		UUID:   uuid.NewString(),
		TempID: tempID,
		Args:   args,
	})
}

// Pending returns the commands queued for the next commit.
func (c *Client) Pending() []Command {
	return c.queue
}

// AddProject queues a project creation and returns its temporary id.
func (c *Client) AddProject(name string) string {
	tempID := uuid.NewString()
	c.stage("project_add", tempID, map[string]any{"name": name})
	return tempID
}

// AddItem queues an item creation and returns its temporary id. The due
// string is parsed by Todoist.
func (c *Client) AddItem(content string, due *string, projectID string) string {
	tempID := uuid.NewString()
	args := map[string]any{
		"content":    content,
		"project_id": projectID,
	}
	if due != nil {
		args["due"] = map[string]string{"string": *due}
	}
	c.stage("item_add", tempID, args)
	return tempID
}

// UpdateItem queues a content and due update. A nil due clears the due date.
func (c *Client) UpdateItem(id string, content string, due *string) {
	args := map[string]any{
		"id":      id,
		"content": content,
		"due":     nil,
	}
	if due != nil {
		args["due"] = map[string]string{"string": *due}
	}
	c.stage("item_update", "", args)
}

// MoveItem queues moving an item to another project.
func (c *Client) MoveItem(id string, projectID string) {
	c.stage("item_move", "", map[string]any{"id": id, "project_id": projectID})
}

// CompleteItem queues completing an item.
func (c *Client) CompleteItem(id string) {
	c.stage("item_complete", "", map[string]any{"id": id})
}

// UncompleteItem queues reopening an item.
func (c *Client) UncompleteItem(id string) {
	c.stage("item_uncomplete", "", map[string]any{"id": id})
}

// Commit sends the queued commands and returns the ids assigned to
// temporary ids. The queue is emptied even when the call fails. Commands
// that were rejected are reported in a *CommitError.
func (c *Client) Commit(ctx context.Context) (map[string]string, error) {
	if len(c.queue) == 0 {
		return map[string]string{}, nil
	}
	cmds := c.queue
	c.queue = nil

	raw, err := json.Marshal(cmds)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal commands: %w", err)
	}
	form := url.Values{}
	form.Set("commands", string(raw))

	var resp SyncResponse
	if err := c.post(ctx, syncPath, form, &resp); err != nil {
		return nil, err
	}

	var failed []*CommandError
	for _, cmd := range cmds {
		status, ok := resp.SyncStatus[cmd.UUID]
		if !ok {
			failed = append(failed, &CommandError{UUID: cmd.UUID, Type: cmd.Type, Message: "no status returned"})
			continue
		}
		if s, isString := status.(string); isString && s == "ok" {
			continue
		}
		failed = append(failed, commandError(cmd, status))
	}
	if len(failed) > 0 {
		return resp.TempIDMapping, &CommitError{Failed: failed}
	}

	if resp.TempIDMapping == nil {
		return map[string]string{}, nil
	}
	return resp.TempIDMapping, nil
}

func commandError(cmd Command, status any) *CommandError {
	e := &CommandError{UUID: cmd.UUID, Type: cmd.Type, Message: fmt.Sprint(status)}
	if m, ok := status.(map[string]any); ok {
		if msg, ok := m["error"].(string); ok {
			e.Message = msg
		}
		if code, ok := m["error_code"].(float64); ok {
			e.Code = int(code)
		}
	}
	return e
}
