package notion

import (
	"context"
	"fmt"

	"notionsync/internal/contextutil"
	"notionsync/internal/reconcile"
)

// TaskSource exposes a Notion task database and its project database as a
// reconcile.Source.
type TaskSource struct {
	client     *Client
	tasksDB    string
	projectsDB string
	fieldMap   FieldMap

	fields        *taskFields
	projectTitle  string
	projectTitles map[string]string
}

// NewTaskSource creates a TaskSource. The field map is checked against the
// database schemas by Init.
func NewTaskSource(client *Client, tasksDB, projectsDB string, fields FieldMap) *TaskSource {
	return &TaskSource{
		client:        client,
		tasksDB:       tasksDB,
		projectsDB:    projectsDB,
		fieldMap:      fields,
		projectTitles: make(map[string]string),
	}
}

// Init reads both database schemas and resolves the configured field roles.
// It runs automatically on first use.
func (s *TaskSource) Init(ctx context.Context) error {
	if s.fields != nil {
		return nil
	}
	tasks, err := s.client.RetrieveDatabase(ctx, s.tasksDB)
	if err != nil {
		return fmt.Errorf("failed to read task database: %w", err)
	}
	fields, err := resolveFields(tasks, s.fieldMap)
	if err != nil {
		return err
	}

	projects, err := s.client.RetrieveDatabase(ctx, s.projectsDB)
	if err != nil {
		return fmt.Errorf("failed to read project database: %w", err)
	}
	for name, p := range projects.Properties {
		if p.Type == "title" {
			s.projectTitle = name
		}
	}
	if s.projectTitle == "" {
		return fmt.Errorf("project database %s has no title property", s.projectsDB)
	}

	s.fields = fields
	return nil
}

// Projects returns the rows of the project database.
func (s *TaskSource) Projects(ctx context.Context) ([]reconcile.SourceProject, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	pages, err := s.client.QueryDatabase(ctx, s.projectsDB)
	if err != nil {
		return nil, err
	}
	s.projectTitles = make(map[string]string, len(pages))
	projects := make([]reconcile.SourceProject, 0, len(pages))
	for i := range pages {
		if pages[i].Archived {
			continue
		}
		title := pages[i].Title()
		s.projectTitles[pages[i].ID] = title
		projects = append(projects, reconcile.SourceProject{ID: pages[i].ID, Title: title})
	}
	return projects, nil
}

// Records returns the rows of the task database in query order.
func (s *TaskSource) Records(ctx context.Context) ([]reconcile.SourceRecord, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	pages, err := s.client.QueryDatabase(ctx, s.tasksDB)
	if err != nil {
		return nil, err
	}

	records := make([]reconcile.SourceRecord, 0, len(pages))
	for i := range pages {
		page := &pages[i]
		if page.Archived {
			continue
		}
		due, err := s.fields.dueOf(page)
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", page.ID, err)
		}
		categories, err := s.categories(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", page.ID, err)
		}
		records = append(records, reconcile.SourceRecord{
			ID:           page.ID,
			Title:        PlainText(page.Properties[s.fields.title].Title),
			Due:          due,
			LastModified: s.fields.lastModifiedOf(page),
			Categories:   categories,
			Completed:    page.Properties[s.fields.completed].Checkbox,
			ExternalID:   s.fields.externalIDOf(page),
		})
	}
	return records, nil
}

// categories resolves the related project pages of page to their titles.
func (s *TaskSource) categories(ctx context.Context, page *Page) ([]string, error) {
	refs := page.Properties[s.fields.category].Relation
	if len(refs) == 0 {
		return nil, nil
	}
	titles := make([]string, 0, len(refs))
	for _, ref := range refs {
		title, ok := s.projectTitles[ref.ID]
		if !ok {
			related, err := s.client.RetrievePage(ctx, ref.ID)
			if isNotFound(err) {
				contextutil.LoggerFromContext(ctx).WarnContext(ctx, "related page not accessible", "page_id", ref.ID)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read related page %s: %w", ref.ID, err)
			}
			title = related.Title()
			s.projectTitles[ref.ID] = title
		}
		titles = append(titles, title)
	}
	return titles, nil
}

// UpdateRecord writes the completion flag and external id back to a task page.
func (s *TaskSource) UpdateRecord(ctx context.Context, id string, update reconcile.RecordUpdate) error {
	if err := s.Init(ctx); err != nil {
		return err
	}
	props := make(map[string]any)
	if update.Completed != nil {
		props[s.fields.completed] = CheckboxValue(*update.Completed)
	}
	if update.ExternalID != nil {
		v, err := s.fields.externalIDValue(*update.ExternalID)
		if err != nil {
			return err
		}
		props[s.fields.externalID] = v
	}
	if len(props) == 0 {
		return nil
	}

	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "updating notion page", "page_id", id, "properties", len(props))
	_, err := s.client.UpdatePage(ctx, id, props)
	return err
}

// CreateRecord adds a task page.
func (s *TaskSource) CreateRecord(ctx context.Context, rec reconcile.NewRecord) (string, error) {
	if err := s.Init(ctx); err != nil {
		return "", err
	}
	externalID, err := s.fields.externalIDValue(rec.ExternalID)
	if err != nil {
		return "", err
	}
	props := map[string]any{
		s.fields.title:      TitleValue(rec.Title),
		s.fields.externalID: externalID,
	}
	if rec.ProjectID != "" {
		props[s.fields.category] = RelationValue(rec.ProjectID)
	}
	if rec.Due != nil {
		props[s.fields.due] = s.fields.dueValue(rec.Due)
	}

	page, err := s.client.CreatePage(ctx, s.tasksDB, props)
	if err != nil {
		return "", err
	}
	return page.ID, nil
}

// CreateProject adds a page to the project database.
func (s *TaskSource) CreateProject(ctx context.Context, title string) (reconcile.SourceProject, error) {
	if err := s.Init(ctx); err != nil {
		return reconcile.SourceProject{}, err
	}
	page, err := s.client.CreatePage(ctx, s.projectsDB, map[string]any{
		s.projectTitle: TitleValue(title),
	})
	if err != nil {
		return reconcile.SourceProject{}, err
	}
	s.projectTitles[page.ID] = title
	return reconcile.SourceProject{ID: page.ID, Title: title}, nil
}
