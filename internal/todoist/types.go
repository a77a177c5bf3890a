package todoist

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Project is a Todoist project.
type Project struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	IsDeleted    bool   `json:"is_deleted"`
	InboxProject bool   `json:"inbox_project"`
}

// Due is the due date of an item.
type Due struct {
	Date        string  `json:"date"`
	Timezone    *string `json:"timezone"`
	String      string  `json:"string"`
	IsRecurring bool    `json:"is_recurring"`
}

// Item is a Todoist task.
type Item struct {
	ID          string     `json:"id"`
	Content     string     `json:"content"`
	Due         *Due       `json:"due"`
	Checked     bool       `json:"checked"`
	IsDeleted   bool       `json:"is_deleted"`
	ProjectID   string     `json:"project_id"`
	CompletedAt *time.Time `json:"completed_at"`
}

// CompletedItem is an entry of the completed tasks log.
type CompletedItem struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	Content     string    `json:"content"`
	ProjectID   string    `json:"project_id"`
	CompletedAt time.Time `json:"completed_at"`
	ItemObject  *Item     `json:"item_object"`
}

// SyncResponse is the body of a read or write call to the sync endpoint.
type SyncResponse struct {
	SyncToken     string            `json:"sync_token"`
	FullSync      bool              `json:"full_sync"`
	Projects      []Project         `json:"projects"`
	Items         []Item            `json:"items"`
	SyncStatus    map[string]any    `json:"sync_status"`
	TempIDMapping map[string]string `json:"temp_id_mapping"`
}

type completedResponse struct {
	Items []CompletedItem `json:"items"`
}

// Command is a write staged for the next commit.
type Command struct {
	Type   string         `json:"type"`
	UUID   string         `json:"uuid"`
	TempID string         `json:"temp_id,omitempty"`
	Args   map[string]any `json:"args"`
}

// CommandError is a command the API rejected.
type CommandError struct {
	UUID    string
	Type    string
	Code    int
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("todoist: %s command %s failed: %s (code %d)", e.Type, e.UUID, e.Message, e.Code)
}

// CommitError collects the rejected commands of a commit.
type CommitError struct {
	Failed []*CommandError
}

func (e *CommitError) Error() string {
	msgs := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		msgs[i] = f.Error()
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("todoist: bad status %d: %s", e.StatusCode, e.Body)
}
