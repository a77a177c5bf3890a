package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"notionsync/internal/contextutil"
	"notionsync/internal/telemetry"
)

// Options tunes a Reconciler.
type Options struct {
	// SkipInvalidDue logs and skips a sink item whose due date cannot be
	// parsed instead of aborting the run.
	SkipInvalidDue bool
}

// Reconciler synchronizes a source task collection with a sink task manager.
type Reconciler struct {
	source Source
	sink   Sink
	opts   Options
}

// New creates a Reconciler.
func New(source Source, sink Sink, opts Options) *Reconciler {
	return &Reconciler{
		source: source,
		sink:   sink,
		opts:   opts,
	}
}

// Run pulls full snapshots of both sides and reconciles them.
func (r *Reconciler) Run(ctx context.Context) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	logger.InfoContext(ctx, "reading sink snapshot")
	sinkState, err := r.sink.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read sink snapshot: %w", err)
	}

	logger.InfoContext(ctx, "reading source projects and records")
	projects, err := r.source.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read source projects: %w", err)
	}
	records, err := r.source.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read source records: %w", err)
	}

	return r.Sync(ctx, Snapshot{
		Records:        records,
		SourceProjects: projects,
		Sink:           sinkState,
	})
}

// Sync runs the forward pass (source to sink) and then the reverse pass
// (sink to source) over the given snapshot. Any remote write failure aborts
// the run; writes already issued are not rolled back.
func (r *Reconciler) Sync(ctx context.Context, snap Snapshot) (*Result, error) {
	run := &run{
		Reconciler: r,
		resolver:   NewProjectResolver(r.sink, snap.Sink.Projects),
		items:      indexItems(snap.Sink.Items),
		handled:    make(map[string]struct{}),
		result:     &Result{},
	}

	if err := run.forward(ctx, snap.Records); err != nil {
		return run.result, err
	}
	if err := run.reverse(ctx, snap.Sink.Items, snap.SourceProjects); err != nil {
		return run.result, err
	}
	return run.result, nil
}

// run holds the state owned by a single Sync call.
type run struct {
	*Reconciler
	resolver *ProjectResolver
	items    map[string]SinkItem
	handled  map[string]struct{}
	result   *Result
}

func indexItems(items []SinkItem) map[string]SinkItem {
	index := make(map[string]SinkItem, len(items))
	for _, item := range items {
		if item.Deleted {
			continue
		}
		index[item.ID] = item
	}
	return index
}

func (r *run) forward(ctx context.Context, records []SourceRecord) (err error) {
	ctx, span := telemetry.Tracer("").Start(ctx, "reconcile.forward")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Int("records", len(records)))
		span.End()
	}()

	logger := contextutil.LoggerFromContext(ctx).With("pass", "forward")
	logger.InfoContext(ctx, "syncing records to sink", "records", len(records))

	for _, rec := range records {
		recLogger := logger.With("record_id", rec.ID)
		recCtx := contextutil.WithLogger(ctx, recLogger)

		if strings.TrimSpace(rec.Title) == "" {
			recLogger.InfoContext(recCtx, "skipping record with empty title")
			r.result.Stats.Skipped++
			continue
		}
		if err := r.forwardRecord(recCtx, rec); err != nil {
			return err
		}
		r.result.Stats.Processed++
	}
	return nil
}

func (r *run) forwardRecord(ctx context.Context, rec SourceRecord) error {
	logger := contextutil.LoggerFromContext(ctx)

	due := FormatDue(rec.Due)
	label := InboxLabel
	if len(rec.Categories) > 0 && rec.Categories[0] != "" {
		label = rec.Categories[0]
	}

	logger.InfoContext(ctx, "record data",
		"title", rec.Title,
		"due", stringOrEmpty(due),
		"last_modified", rec.LastModified,
		"project", label,
		"external_id", rec.ExternalID,
	)

	created := len(r.resolver.Created())
	projectID, err := r.resolver.Resolve(ctx, label)
	if err != nil {
		return err
	}
	if len(r.resolver.Created()) > created {
		r.result.Stats.ProjectsCreated++
		r.sinkMutation(MutationProjectAdd, projectID)
	}

	var (
		update   RecordUpdate
		itemID   string
		tempID   string
		staged   []Mutation
		complete = rec.Completed
	)

	item, matched := r.items[rec.ExternalID]
	if rec.ExternalID == "" {
		matched = false
	}

	if matched {
		itemID = item.ID
		logger.InfoContext(ctx, "found sink item", "item_id", item.ID)

		if item.Checked && item.CompletedAt != nil && item.CompletedAt.After(rec.LastModified) {
			logger.InfoContext(ctx, "sink completion is newer than record",
				"completed_at", *item.CompletedAt)
			r.result.Stats.Conflicts++
			complete = true
			if !rec.Completed {
				done := true
				update.Completed = &done
			}
		}

		if item.Content != rec.Title || !dueEqual(due, item.Due) {
			r.sink.UpdateItem(item.ID, rec.Title, due)
			staged = append(staged, Mutation{Kind: MutationItemUpdate, ID: item.ID})
		}
		if item.ProjectID != projectID {
			logger.InfoContext(ctx, "moving sink item", "from", item.ProjectID, "to", projectID)
			r.sink.MoveItem(item.ID, projectID)
			staged = append(staged, Mutation{Kind: MutationItemMove, ID: item.ID})
		}
		switch {
		case complete && !item.Checked:
			r.sink.CompleteItem(item.ID)
			staged = append(staged, Mutation{Kind: MutationItemComplete, ID: item.ID})
		case !complete && item.Checked:
			r.sink.UncompleteItem(item.ID)
			staged = append(staged, Mutation{Kind: MutationItemUncomplete, ID: item.ID})
		}
	} else {
		logger.InfoContext(ctx, "adding sink item")
		tempID = r.sink.AddItem(rec.Title, due, projectID)
		staged = append(staged, Mutation{Kind: MutationItemAdd, ID: tempID})
		if complete {
			r.sink.CompleteItem(tempID)
			staged = append(staged, Mutation{Kind: MutationItemComplete, ID: tempID})
		}
	}

	if len(staged) > 0 {
		mapping, err := r.sink.Commit(ctx)
		if err != nil {
			return sinkWriteError("commit", err)
		}
		if !matched {
			itemID = mapping[tempID]
			if itemID == "" {
				return sinkWriteError(string(MutationItemAdd), errors.New("no id assigned to new item"))
			}
		}
		for _, m := range staged {
			if m.ID == tempID {
				m.ID = itemID
			}
			r.countSink(m.Kind)
			r.sinkMutation(m.Kind, m.ID)
		}
	}

	if rec.ExternalID != itemID {
		update.ExternalID = &itemID
	}
	if !update.Empty() {
		logger.InfoContext(ctx, "writing back to source record", "item_id", itemID)
		if err := r.source.UpdateRecord(ctx, rec.ID, update); err != nil {
			return sourceWriteError(string(MutationRecordUpdate), err)
		}
		r.result.Stats.WriteBacks++
		r.result.SourceWrites = append(r.result.SourceWrites, Mutation{Kind: MutationRecordUpdate, ID: rec.ID})
	}

	r.handled[itemID] = struct{}{}
	return nil
}

func (r *run) reverse(ctx context.Context, items []SinkItem, projects []SourceProject) (err error) {
	ctx, span := telemetry.Tracer("").Start(ctx, "reconcile.reverse")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	logger := contextutil.LoggerFromContext(ctx).With("pass", "reverse")
	logger.InfoContext(ctx, "syncing sink items to source", "items", len(items))

	byTitle := make(map[string]SourceProject, len(projects))
	for _, p := range projects {
		if _, ok := byTitle[p.Title]; !ok {
			byTitle[p.Title] = p
		}
	}

	for _, item := range items {
		if item.Checked || item.Deleted {
			continue
		}
		if _, ok := r.handled[item.ID]; ok {
			continue
		}

		itemLogger := logger.With("item_id", item.ID)
		itemCtx := contextutil.WithLogger(ctx, itemLogger)

		rec := NewRecord{
			Title:      item.Content,
			ExternalID: item.ID,
		}

		if item.Due != nil {
			itemLogger.InfoContext(itemCtx, "parsing sink due", "date", item.Due.Date, "timezone", item.Due.TimeZone)
			due, err := ParseDue(*item.Due)
			if err != nil {
				if r.opts.SkipInvalidDue {
					itemLogger.WarnContext(itemCtx, "skipping item with invalid due date", "error", err)
					r.result.Stats.Failed++
					continue
				}
				return fmt.Errorf("item %s: %w", item.ID, err)
			}
			rec.Due = due
		}

		projectID, err := r.sourceProject(itemCtx, item.ProjectID, byTitle)
		if err != nil {
			return err
		}
		rec.ProjectID = projectID

		itemLogger.InfoContext(itemCtx, "creating source record", "title", item.Content)
		id, err := r.source.CreateRecord(itemCtx, rec)
		if err != nil {
			return sourceWriteError(string(MutationRecordAdd), err)
		}
		r.result.Stats.RecordsCreated++
		r.result.SourceWrites = append(r.result.SourceWrites, Mutation{Kind: MutationRecordAdd, ID: id})
	}
	return nil
}

// sourceProject finds the source project mirroring a sink project, creating
// it when missing. Items in the inbox or in an unknown project stay uncategorized.
func (r *run) sourceProject(ctx context.Context, sinkProjectID string, byTitle map[string]SourceProject) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	project, ok := r.resolver.Project(sinkProjectID)
	if !ok || project.Name == InboxLabel {
		return "", nil
	}
	if existing, ok := byTitle[project.Name]; ok {
		logger.InfoContext(ctx, "source project found", "project", existing.Title)
		return existing.ID, nil
	}

	logger.InfoContext(ctx, "creating source project", "project", project.Name)
	created, err := r.source.CreateProject(ctx, project.Name)
	if err != nil {
		return "", sourceWriteError(string(MutationSourceProject), err)
	}
	byTitle[project.Name] = created
	r.result.Stats.SourceProjectsCreated++
	r.result.SourceWrites = append(r.result.SourceWrites, Mutation{Kind: MutationSourceProject, ID: created.ID})
	return created.ID, nil
}

func (r *run) sinkMutation(kind MutationKind, id string) {
	r.result.SinkMutations = append(r.result.SinkMutations, Mutation{Kind: kind, ID: id})
}

func (r *run) countSink(kind MutationKind) {
	switch kind {
	case MutationItemAdd:
		r.result.Stats.ItemsCreated++
	case MutationItemUpdate:
		r.result.Stats.ItemsUpdated++
	case MutationItemMove:
		r.result.Stats.ItemsMoved++
	case MutationItemComplete:
		r.result.Stats.ItemsCompleted++
	case MutationItemUncomplete:
		r.result.Stats.ItemsUncompleted++
	}
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
