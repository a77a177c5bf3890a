package todoist

import (
	"context"
	"fmt"

	"notionsync/internal/reconcile"
)

// Sink adapts a Client to reconcile.Sink.
type Sink struct {
	*Client
}

var _ reconcile.Sink = (*Sink)(nil)

// NewSink creates a Sink backed by a new client.
func NewSink(baseURL, token string) *Sink {
	return &Sink{Client: NewClient(baseURL, token)}
}

// Snapshot reads projects and items, merging the completed tasks log so that
// completed items carry their completion time. Active items never do: a
// reopened or recurring task keeps its history in the log only.
func (s *Sink) Snapshot(ctx context.Context) (reconcile.SinkSnapshot, error) {
	resp, err := s.Sync(ctx)
	if err != nil {
		return reconcile.SinkSnapshot{}, fmt.Errorf("failed to sync: %w", err)
	}
	completed, err := s.CompletedItems(ctx)
	if err != nil {
		return reconcile.SinkSnapshot{}, fmt.Errorf("failed to list completed items: %w", err)
	}

	snap := reconcile.SinkSnapshot{
		Projects: make([]reconcile.SinkProject, 0, len(resp.Projects)),
		Items:    make([]reconcile.SinkItem, 0, len(resp.Items)+len(completed)),
	}
	for _, p := range resp.Projects {
		snap.Projects = append(snap.Projects, reconcile.SinkProject{
			ID:      p.ID,
			Name:    p.Name,
			Deleted: p.IsDeleted,
		})
	}

	// Latest completion per task.
	history := make(map[string]CompletedItem, len(completed))
	order := make([]string, 0, len(completed))
	for _, c := range completed {
		prev, seen := history[c.TaskID]
		if !seen {
			order = append(order, c.TaskID)
		}
		if !seen || c.CompletedAt.After(prev.CompletedAt) {
			history[c.TaskID] = c
		}
	}

	active := make(map[string]bool, len(resp.Items))
	for _, it := range resp.Items {
		item := sinkItem(it)
		if !item.Checked {
			item.CompletedAt = nil
		}
		if h, ok := history[it.ID]; ok && item.Checked && item.CompletedAt == nil {
			at := h.CompletedAt
			item.CompletedAt = &at
		}
		active[it.ID] = true
		snap.Items = append(snap.Items, item)
	}

	for _, id := range order {
		if active[id] {
			continue
		}
		h := history[id]
		var item reconcile.SinkItem
		if h.ItemObject != nil {
			item = sinkItem(*h.ItemObject)
		} else {
			item = reconcile.SinkItem{
				ID:        h.TaskID,
				Content:   h.Content,
				ProjectID: h.ProjectID,
			}
		}
		at := h.CompletedAt
		item.Checked = true
		item.CompletedAt = &at
		snap.Items = append(snap.Items, item)
	}

	return snap, nil
}

func sinkItem(it Item) reconcile.SinkItem {
	item := reconcile.SinkItem{
		ID:          it.ID,
		Content:     it.Content,
		Checked:     it.Checked,
		CompletedAt: it.CompletedAt,
		ProjectID:   it.ProjectID,
		Deleted:     it.IsDeleted,
	}
	if it.Due != nil {
		due := &reconcile.SinkDue{Date: it.Due.Date, String: it.Due.String}
		if it.Due.Timezone != nil {
			due.TimeZone = *it.Due.Timezone
		}
		item.Due = due
	}
	return item
}
