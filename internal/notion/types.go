package notion

import (
	"fmt"
	"strings"
	"time"
)

// Database is a Notion database object.
type Database struct {
	ID         string                    `json:"id"`
	Title      []RichText                `json:"title"`
	Properties map[string]PropertySchema `json:"properties"`
}

// PropertySchema is the declaration of one database property.
type PropertySchema struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Relation *RelationSchema `json:"relation,omitempty"`
}

// RelationSchema names the database a relation property points to.
type RelationSchema struct {
	DatabaseID string `json:"database_id"`
}

// Page is a Notion page, which is a database row when it has a database parent.
type Page struct {
	ID             string                   `json:"id"`
	CreatedTime    time.Time                `json:"created_time"`
	LastEditedTime time.Time                `json:"last_edited_time"`
	Archived       bool                     `json:"archived"`
	Properties     map[string]PropertyValue `json:"properties"`
}

// PropertyValue is the value of one page property. Only the field matching
// Type is populated.
type PropertyValue struct {
	ID             string      `json:"id"`
	Type           string      `json:"type"`
	Title          []RichText  `json:"title"`
	RichText       []RichText  `json:"rich_text"`
	Number         *float64    `json:"number"`
	Checkbox       bool        `json:"checkbox"`
	URL            *string     `json:"url"`
	Select         *Option     `json:"select"`
	MultiSelect    []Option    `json:"multi_select"`
	Date           *Date       `json:"date"`
	People         []User      `json:"people"`
	Relation       []Reference `json:"relation"`
	CreatedTime    *time.Time  `json:"created_time"`
	LastEditedTime *time.Time  `json:"last_edited_time"`
	CreatedBy      *User       `json:"created_by"`
}

// RichText is a rich text segment.
type RichText struct {
	Type      string `json:"type"`
	PlainText string `json:"plain_text"`
}

// Option is a select or multi-select option.
type Option struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Date is a date property value. Start and End are ISO 8601 dates or date-times.
type Date struct {
	Start    string  `json:"start"`
	End      *string `json:"end"`
	TimeZone *string `json:"time_zone"`
}

// User is a Notion user. Person is set for people, nil for bots.
type User struct {
	Object string      `json:"object"`
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Person *PersonInfo `json:"person,omitempty"`
}

// PersonInfo holds the email of a person user.
type PersonInfo struct {
	Email string `json:"email"`
}

// Email returns the user's email, or "" for bots and users without one.
func (u User) Email() string {
	if u.Person == nil {
		return ""
	}
	return u.Person.Email
}

// Reference points to a related page.
type Reference struct {
	ID string `json:"id"`
}

// PlainText joins rich text segments.
func PlainText(segments []RichText) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.PlainText)
	}
	return b.String()
}

// Title returns the plain text of the page's title property.
func (p *Page) Title() string {
	for _, v := range p.Properties {
		if v.Type == "title" {
			return PlainText(v.Title)
		}
	}
	return ""
}

// ParseDate parses a Notion date string. hasTime is false for plain dates.
func ParseDate(s string) (t time.Time, hasTime bool, err error) {
	if len(s) == len("2006-01-02") {
		t, err = time.Parse("2006-01-02", s)
		return t, false, err
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid notion date %q: %w", s, err)
	}
	return t, true, nil
}

type queryResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

type createPageRequest struct {
	Parent     parent         `json:"parent"`
	Properties map[string]any `json:"properties"`
}

type parent struct {
	DatabaseID string `json:"database_id"`
}

type updatePageRequest struct {
	Properties map[string]any `json:"properties"`
}
