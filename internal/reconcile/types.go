package reconcile

import (
	"context"
	"time"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_reconcile.go -package=mocks notionsync/internal/reconcile Source,Sink

// InboxLabel is the sink project used for records without a category.
const InboxLabel = "Inbox"

// DateRange is a due date as stored on the source side.
type DateRange struct {
	Start time.Time
	End   *time.Time
	// HasTime is false for all-day dates.
	HasTime  bool
	TimeZone string
}

// SourceRecord is one row of the source task collection, read through the
// configured field roles.
type SourceRecord struct {
	ID           string
	Title        string
	Due          *DateRange
	LastModified time.Time
	// Categories holds category labels in source order. Only the first is used.
	Categories []string
	Completed  bool
	// ExternalID is the sink item id written back by a previous run, or "".
	ExternalID string
}

// SourceProject is a row of the source project collection.
type SourceProject struct {
	ID    string
	Title string
}

// RecordUpdate is a write-back onto an existing source record. Nil fields are left untouched.
type RecordUpdate struct {
	Completed  *bool
	ExternalID *string
}

// Empty reports whether the update carries no field.
func (u RecordUpdate) Empty() bool {
	return u.Completed == nil && u.ExternalID == nil
}

// NewRecord describes a source record created from a sink item.
type NewRecord struct {
	Title      string
	ExternalID string
	// ProjectID is the source project to link, or "" to leave the record uncategorized.
	ProjectID string
	Due       *DateRange
}

// SinkDue is the structured due value reported by the sink.
type SinkDue struct {
	Date     string
	TimeZone string
	String   string
}

// SinkItem is an item of the task manager.
type SinkItem struct {
	ID          string
	Content     string
	Due         *SinkDue
	Checked     bool
	CompletedAt *time.Time
	ProjectID   string
	Deleted     bool
}

// SinkProject is a project of the task manager.
type SinkProject struct {
	ID      string
	Name    string
	Deleted bool
}

// SinkSnapshot is a full read of the sink state.
type SinkSnapshot struct {
	Projects []SinkProject
	Items    []SinkItem
}

// Source is the document collection side of a reconciliation run.
type Source interface {
	// Records returns every record of the task collection in query order.
	Records(ctx context.Context) ([]SourceRecord, error)
	// Projects returns every row of the project collection.
	Projects(ctx context.Context) ([]SourceProject, error)
	// UpdateRecord persists a write-back immediately.
	UpdateRecord(ctx context.Context, id string, update RecordUpdate) error
	// CreateRecord adds a task row and returns its id.
	CreateRecord(ctx context.Context, rec NewRecord) (string, error)
	// CreateProject adds a project row titled title.
	CreateProject(ctx context.Context, title string) (SourceProject, error)
}

// Sink is the task manager side of a reconciliation run.
// Mutations are staged and only sent on Commit. Staging methods that create
// entities return a temporary id that Commit maps to the assigned id.
type Sink interface {
	Snapshot(ctx context.Context) (SinkSnapshot, error)
	AddProject(name string) string
	AddItem(content string, due *string, projectID string) string
	UpdateItem(id string, content string, due *string)
	MoveItem(id string, projectID string)
	CompleteItem(id string)
	UncompleteItem(id string)
	Commit(ctx context.Context) (map[string]string, error)
}

// Snapshot is the full input of one reconciliation pass pair.
type Snapshot struct {
	Records        []SourceRecord
	SourceProjects []SourceProject
	Sink           SinkSnapshot
}

// MutationKind names a remote write issued during a run.
type MutationKind string

const (
	MutationProjectAdd     MutationKind = "project_add"
	MutationItemAdd        MutationKind = "item_add"
	MutationItemUpdate     MutationKind = "item_update"
	MutationItemMove       MutationKind = "item_move"
	MutationItemComplete   MutationKind = "item_complete"
	MutationItemUncomplete MutationKind = "item_uncomplete"
	MutationRecordUpdate   MutationKind = "record_update"
	MutationRecordAdd      MutationKind = "record_add"
	MutationSourceProject  MutationKind = "source_project_add"
)

// Mutation records one remote write.
type Mutation struct {
	Kind MutationKind
	// ID is the sink item, sink project or source record the write applied to.
	ID string
}

// Stats counts the outcome of a run.
type Stats struct {
	Processed             int `json:"processed"`
	Skipped               int `json:"skipped"`
	ItemsCreated          int `json:"items_created"`
	ItemsUpdated          int `json:"items_updated"`
	ItemsMoved            int `json:"items_moved"`
	ItemsCompleted        int `json:"items_completed"`
	ItemsUncompleted      int `json:"items_uncompleted"`
	Conflicts             int `json:"conflicts"`
	WriteBacks            int `json:"write_backs"`
	ProjectsCreated       int `json:"projects_created"`
	RecordsCreated        int `json:"records_created"`
	SourceProjectsCreated int `json:"source_projects_created"`
	Failed                int `json:"failed"`
}

// Result is the outcome of Sync.
type Result struct {
	Stats Stats
	// SourceWrites lists write-backs and creations on the source side.
	SourceWrites []Mutation
	// SinkMutations lists committed sink writes.
	SinkMutations []Mutation
}
