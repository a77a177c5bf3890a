package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notionsync/internal/reconcile"
)

// fakeSink is an in-memory task manager that applies staged commands on Commit.
type fakeSink struct {
	projects []reconcile.SinkProject
	items    []reconcile.SinkItem
	pending  []fakeCommand
	next     int
	now      time.Time

	commits   int
	commands  int
	commitErr error
}

type fakeCommand struct {
	kind      string
	id        string
	content   string
	due       *string
	projectID string
}

func newFakeSink(now time.Time) *fakeSink {
	return &fakeSink{
		now:      now,
		projects: []reconcile.SinkProject{{ID: "p-inbox", Name: reconcile.InboxLabel}},
	}
}

func (s *fakeSink) Snapshot(ctx context.Context) (reconcile.SinkSnapshot, error) {
	snap := reconcile.SinkSnapshot{
		Projects: append([]reconcile.SinkProject(nil), s.projects...),
		Items:    append([]reconcile.SinkItem(nil), s.items...),
	}
	return snap, nil
}

func (s *fakeSink) tempID() string {
	s.next++
	return fmt.Sprintf("tmp-%d", s.next)
}

func (s *fakeSink) AddProject(name string) string {
	id := s.tempID()
	s.pending = append(s.pending, fakeCommand{kind: "project_add", id: id, content: name})
	return id
}

func (s *fakeSink) AddItem(content string, due *string, projectID string) string {
	id := s.tempID()
	s.pending = append(s.pending, fakeCommand{kind: "item_add", id: id, content: content, due: due, projectID: projectID})
	return id
}

func (s *fakeSink) UpdateItem(id string, content string, due *string) {
	s.pending = append(s.pending, fakeCommand{kind: "item_update", id: id, content: content, due: due})
}

func (s *fakeSink) MoveItem(id string, projectID string) {
	s.pending = append(s.pending, fakeCommand{kind: "item_move", id: id, projectID: projectID})
}

func (s *fakeSink) CompleteItem(id string) {
	s.pending = append(s.pending, fakeCommand{kind: "item_complete", id: id})
}

func (s *fakeSink) UncompleteItem(id string) {
	s.pending = append(s.pending, fakeCommand{kind: "item_uncomplete", id: id})
}

func (s *fakeSink) Commit(ctx context.Context) (map[string]string, error) {
	if s.commitErr != nil {
		s.pending = nil
		return nil, s.commitErr
	}
	s.commits++
	mapping := make(map[string]string)
	for _, cmd := range s.pending {
		s.commands++
		id := cmd.id
		if real, ok := mapping[id]; ok {
			id = real
		}
		switch cmd.kind {
		case "project_add":
			s.next++
			real := fmt.Sprintf("p%d", s.next)
			mapping[cmd.id] = real
			s.projects = append(s.projects, reconcile.SinkProject{ID: real, Name: cmd.content})
		case "item_add":
			s.next++
			real := fmt.Sprintf("%d", 1000+s.next)
			mapping[cmd.id] = real
			s.items = append(s.items, reconcile.SinkItem{
				ID:        real,
				Content:   cmd.content,
				Due:       sinkDue(cmd.due),
				ProjectID: cmd.projectID,
			})
		default:
			item := s.item(id)
			if item == nil {
				return nil, errors.New("unknown item " + id)
			}
			switch cmd.kind {
			case "item_update":
				item.Content = cmd.content
				item.Due = sinkDue(cmd.due)
			case "item_move":
				item.ProjectID = cmd.projectID
			case "item_complete":
				at := s.now
				item.Checked = true
				item.CompletedAt = &at
			case "item_uncomplete":
				item.Checked = false
				item.CompletedAt = nil
			}
		}
	}
	s.pending = nil
	return mapping, nil
}

func (s *fakeSink) item(id string) *reconcile.SinkItem {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i]
		}
	}
	return nil
}

func (s *fakeSink) projectName(id string) string {
	for _, p := range s.projects {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}

// sinkDue mirrors how the task manager reports a due string it accepted.
func sinkDue(due *string) *reconcile.SinkDue {
	if due == nil {
		return nil
	}
	if t, err := time.Parse("2006-01-02 15:04", *due); err == nil {
		return &reconcile.SinkDue{Date: t.Format("2006-01-02T15:04:05"), String: *due}
	}
	return &reconcile.SinkDue{Date: *due, String: *due}
}

// fakeSource is an in-memory document collection. Writes bump the record's
// last-modified time to the source clock.
type fakeSource struct {
	records  []reconcile.SourceRecord
	projects []reconcile.SourceProject
	clock    time.Time
	next     int

	updates        int
	created        []reconcile.NewRecord
	projectsAdded  int
	createErr      error
	updateRecorded []reconcile.RecordUpdate
}

func (s *fakeSource) Records(ctx context.Context) ([]reconcile.SourceRecord, error) {
	return append([]reconcile.SourceRecord(nil), s.records...), nil
}

func (s *fakeSource) Projects(ctx context.Context) ([]reconcile.SourceProject, error) {
	return append([]reconcile.SourceProject(nil), s.projects...), nil
}

func (s *fakeSource) UpdateRecord(ctx context.Context, id string, update reconcile.RecordUpdate) error {
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		s.updates++
		s.updateRecorded = append(s.updateRecorded, update)
		if update.Completed != nil {
			s.records[i].Completed = *update.Completed
		}
		if update.ExternalID != nil {
			s.records[i].ExternalID = *update.ExternalID
		}
		s.records[i].LastModified = s.clock
		return nil
	}
	return errors.New("unknown record " + id)
}

func (s *fakeSource) CreateRecord(ctx context.Context, rec reconcile.NewRecord) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.next++
	id := fmt.Sprintf("rec-%d", s.next)
	var categories []string
	for _, p := range s.projects {
		if p.ID == rec.ProjectID {
			categories = []string{p.Title}
		}
	}
	s.records = append(s.records, reconcile.SourceRecord{
		ID:           id,
		Title:        rec.Title,
		Due:          rec.Due,
		LastModified: s.clock,
		Categories:   categories,
		ExternalID:   rec.ExternalID,
	})
	s.created = append(s.created, rec)
	return id, nil
}

func (s *fakeSource) CreateProject(ctx context.Context, title string) (reconcile.SourceProject, error) {
	s.next++
	p := reconcile.SourceProject{ID: fmt.Sprintf("proj-%d", s.next), Title: title}
	s.projects = append(s.projects, p)
	s.projectsAdded++
	return p, nil
}

func (s *fakeSource) writes() int {
	return s.updates + len(s.created) + s.projectsAdded
}
