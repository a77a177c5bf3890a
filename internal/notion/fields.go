package notion

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"notionsync/internal/reconcile"
)

// FieldMap names the task database properties that carry each role.
type FieldMap struct {
	Due          string
	LastModified string
	Category     string
	Completed    string
	ExternalID   string
}

// DefaultFieldMap returns the property names used when none are configured.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		Due:          "Date",
		LastModified: "UpdatedAt",
		Category:     "Project",
		Completed:    "Completed",
		ExternalID:   "TodoistId",
	}
}

// taskFields is a FieldMap checked against the database schema.
type taskFields struct {
	title        string
	due          string
	lastModified string // empty: use the page's last_edited_time
	lastModType  string
	category     string
	completed    string
	externalID   string
	externalType string
}

// resolveFields validates m against the task database schema. Every role
// must name an existing property of a usable type; the last-modified role
// falls back to the page edit time when the property does not exist.
func resolveFields(db *Database, m FieldMap) (*taskFields, error) {
	f := &taskFields{}
	for name, p := range db.Properties {
		if p.Type == "title" {
			f.title = name
		}
	}
	if f.title == "" {
		return nil, fmt.Errorf("database %s has no title property", db.ID)
	}

	check := func(role, name string, types ...string) (string, error) {
		p, ok := db.Properties[name]
		if !ok {
			return "", fmt.Errorf("%s property %q not found in database %s", role, name, db.ID)
		}
		for _, t := range types {
			if p.Type == t {
				return p.Type, nil
			}
		}
		return "", fmt.Errorf("%s property %q has type %s, want one of %s", role, name, p.Type, strings.Join(types, ", "))
	}

	var err error
	if _, err = check("due", m.Due, "date"); err != nil {
		return nil, err
	}
	f.due = m.Due

	if _, err = check("category", m.Category, "relation"); err != nil {
		return nil, err
	}
	f.category = m.Category

	if _, err = check("completed", m.Completed, "checkbox"); err != nil {
		return nil, err
	}
	f.completed = m.Completed

	if f.externalType, err = check("external id", m.ExternalID, "rich_text", "number"); err != nil {
		return nil, err
	}
	f.externalID = m.ExternalID

	if _, ok := db.Properties[m.LastModified]; ok {
		if f.lastModType, err = check("last modified", m.LastModified, "last_edited_time", "date"); err != nil {
			return nil, err
		}
		f.lastModified = m.LastModified
	}
	return f, nil
}

func (f *taskFields) lastModifiedOf(p *Page) time.Time {
	if f.lastModified == "" {
		return p.LastEditedTime
	}
	v := p.Properties[f.lastModified]
	switch f.lastModType {
	case "last_edited_time":
		if v.LastEditedTime != nil {
			return *v.LastEditedTime
		}
	case "date":
		if v.Date != nil {
			if t, _, err := ParseDate(v.Date.Start); err == nil {
				return t
			}
		}
	}
	return p.LastEditedTime
}

func (f *taskFields) externalIDOf(p *Page) string {
	v := p.Properties[f.externalID]
	if f.externalType == "number" {
		if v.Number == nil {
			return ""
		}
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	}
	return strings.TrimSpace(PlainText(v.RichText))
}

func (f *taskFields) externalIDValue(id string) (map[string]any, error) {
	if f.externalType == "number" {
		n, err := strconv.ParseFloat(id, 64)
		if err != nil {
			return nil, fmt.Errorf("external id %q is not numeric: %w", id, err)
		}
		return NumberValue(n), nil
	}
	return RichTextValue(id), nil
}

// dueOf converts the due property of p.
func (f *taskFields) dueOf(p *Page) (*reconcile.DateRange, error) {
	v := p.Properties[f.due]
	if v.Date == nil || v.Date.Start == "" {
		return nil, nil
	}
	start, hasTime, err := ParseDate(v.Date.Start)
	if err != nil {
		return nil, err
	}
	d := &reconcile.DateRange{Start: start, HasTime: hasTime}
	if v.Date.End != nil && *v.Date.End != "" {
		end, _, err := ParseDate(*v.Date.End)
		if err != nil {
			return nil, err
		}
		d.End = &end
	}
	if v.Date.TimeZone != nil && *v.Date.TimeZone != "" {
		d.TimeZone = *v.Date.TimeZone
		if loc, err := time.LoadLocation(d.TimeZone); err == nil {
			d.Start = d.Start.In(loc)
			if d.End != nil {
				end := d.End.In(loc)
				d.End = &end
			}
		}
	}
	return d, nil
}

func (f *taskFields) dueValue(d *reconcile.DateRange) map[string]any {
	return DateValue(d.Start, d.End, d.HasTime, d.TimeZone)
}
