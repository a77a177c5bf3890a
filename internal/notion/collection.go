package notion

import (
	"context"
	"fmt"
	"sort"

	"notionsync/internal/contextutil"
	"notionsync/internal/schema"
)

// schemaTypes renames Notion property types to the projector's type names.
// Types not listed keep their Notion name.
var schemaTypes = map[string]string{
	"rich_text": "text",
	"people":    "person",
}

// CollectionSource exposes a Notion database as a schema.Source.
type CollectionSource struct {
	client     *Client
	databaseID string

	names   map[string]string // slug -> property name
	types   map[string]string // slug -> notion type
	props   []schema.Property
	titles  map[string]*string
	missing map[string]bool
}

// NewCollectionSource creates a CollectionSource for the database.
func NewCollectionSource(client *Client, databaseID string) *CollectionSource {
	return &CollectionSource{
		client:     client,
		databaseID: databaseID,
	}
}

// Properties returns the database properties sorted by name.
func (s *CollectionSource) Properties(ctx context.Context) ([]schema.Property, error) {
	db, err := s.client.RetrieveDatabase(ctx, s.databaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to read database %s: %w", s.databaseID, err)
	}

	names := make([]string, 0, len(db.Properties))
	for name := range db.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	s.names = make(map[string]string, len(names))
	s.types = make(map[string]string, len(names))
	props := make([]schema.Property, 0, len(names))
	for _, name := range names {
		p := db.Properties[name]
		typ := p.Type
		if mapped, ok := schemaTypes[typ]; ok {
			typ = mapped
		}
		slug := schema.Slug(name)
		s.names[slug] = name
		s.types[slug] = p.Type
		props = append(props, schema.Property{Name: name, Slug: slug, Type: typ})
	}
	s.props = props
	return props, nil
}

// Rows returns every page of the database converted to projector values.
func (s *CollectionSource) Rows(ctx context.Context) ([]schema.Row, error) {
	if s.props == nil {
		if _, err := s.Properties(ctx); err != nil {
			return nil, err
		}
	}
	pages, err := s.client.QueryDatabase(ctx, s.databaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query database %s: %w", s.databaseID, err)
	}

	s.titles = make(map[string]*string)
	s.missing = make(map[string]bool)
	for i := range pages {
		s.titles[pages[i].ID] = titlePtr(pages[i].Title())
	}

	rows := make([]schema.Row, 0, len(pages))
	for i := range pages {
		values := make(map[string]any, len(s.props))
		for _, p := range s.props {
			v, err := s.value(ctx, s.types[p.Slug], pages[i].Properties[s.names[p.Slug]])
			if err != nil {
				return nil, fmt.Errorf("page %s, property %q: %w", pages[i].ID, p.Name, err)
			}
			values[p.Slug] = v
		}
		rows = append(rows, schema.Row{ID: pages[i].ID, Values: values})
	}
	return rows, nil
}

func (s *CollectionSource) value(ctx context.Context, notionType string, v PropertyValue) (any, error) {
	switch notionType {
	case "title":
		return PlainText(v.Title), nil
	case "rich_text":
		return PlainText(v.RichText), nil
	case "url":
		if v.URL == nil {
			return nil, nil
		}
		return *v.URL, nil
	case "select":
		if v.Select == nil {
			return nil, nil
		}
		return v.Select.Name, nil
	case "number":
		if v.Number == nil {
			return nil, nil
		}
		return *v.Number, nil
	case "checkbox":
		return v.Checkbox, nil
	case "multi_select":
		names := make([]string, 0, len(v.MultiSelect))
		for _, o := range v.MultiSelect {
			names = append(names, o.Name)
		}
		return names, nil
	case "date":
		if v.Date == nil || v.Date.Start == "" {
			return nil, nil
		}
		start, _, err := ParseDate(v.Date.Start)
		if err != nil {
			return nil, err
		}
		d := schema.DateValue{Start: start}
		if v.Date.End != nil && *v.Date.End != "" {
			end, _, err := ParseDate(*v.Date.End)
			if err != nil {
				return nil, err
			}
			d.End = &end
		}
		return d, nil
	case "created_time":
		if v.CreatedTime == nil {
			return nil, nil
		}
		return *v.CreatedTime, nil
	case "last_edited_time":
		if v.LastEditedTime == nil {
			return nil, nil
		}
		return *v.LastEditedTime, nil
	case "created_by":
		if v.CreatedBy == nil {
			return nil, nil
		}
		return &schema.User{ID: v.CreatedBy.ID, Email: v.CreatedBy.Email()}, nil
	case "people":
		users := make([]schema.User, 0, len(v.People))
		for _, u := range v.People {
			users = append(users, schema.User{ID: u.ID, Email: u.Email()})
		}
		return users, nil
	case "relation":
		refs := make([]*schema.RelationRef, 0, len(v.Relation))
		for _, r := range v.Relation {
			ref, err := s.relationRef(ctx, r.ID)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
		return refs, nil
	}
	return nil, nil
}

// relationRef resolves a related page title, caching it for the run. A page
// the integration cannot see yields a nil entry; any other failure is returned.
func (s *CollectionSource) relationRef(ctx context.Context, id string) (*schema.RelationRef, error) {
	if s.missing[id] {
		return nil, nil
	}
	title, ok := s.titles[id]
	if !ok {
		page, err := s.client.RetrievePage(ctx, id)
		if isNotFound(err) {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "related page not accessible", "page_id", id)
			s.missing[id] = true
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read related page %s: %w", id, err)
		}
		title = titlePtr(page.Title())
		s.titles[id] = title
	}
	return &schema.RelationRef{ID: id, Title: title}, nil
}

func titlePtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
