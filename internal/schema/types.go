// Package schema projects a dynamically typed collection onto a Postgres table:
// it derives additive DDL from the collection's property schema and coerces
// row values into bulk-upsert parameters.
package schema

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PropertyType is the closed set of property types that can be projected.
type PropertyType int

const (
	TypeTitle PropertyType = iota + 1
	TypeText
	TypeURL
	TypeSelect
	TypeCreatedBy
	TypeNumber
	TypeCheckbox
	TypeDate
	TypeCreatedTime
	TypeLastEditedTime
	TypeRelation
	TypeMultiSelect
	TypePerson
)

var typeNames = map[string]PropertyType{
	"title":            TypeTitle,
	"text":             TypeText,
	"url":              TypeURL,
	"select":           TypeSelect,
	"created_by":       TypeCreatedBy,
	"number":           TypeNumber,
	"checkbox":         TypeCheckbox,
	"date":             TypeDate,
	"created_time":     TypeCreatedTime,
	"last_edited_time": TypeLastEditedTime,
	"relation":         TypeRelation,
	"multi_select":     TypeMultiSelect,
	"person":           TypePerson,
}

// ParseType maps a schema type name onto a PropertyType.
func ParseType(name string) (PropertyType, error) {
	if t, ok := typeNames[name]; ok {
		return t, nil
	}
	return 0, &UnsupportedTypeError{Type: name}
}

func (t PropertyType) String() string {
	for name, pt := range typeNames {
		if pt == t {
			return name
		}
	}
	return fmt.Sprintf("PropertyType(%d)", int(t))
}

// Property is one declared property of the collection schema.
type Property struct {
	// Name is the display name in the source collection.
	Name string
	// Slug is the column base name.
	Slug string
	// Type is the raw schema type name.
	Type string
}

// Row is one collection row. Values are keyed by property slug; see
// coerce for the accepted value shapes per type.
type Row struct {
	ID     string
	Values map[string]any
}

// DateValue is a date property value.
type DateValue struct {
	Start time.Time
	End   *time.Time
}

// RelationRef is one entry of a relation property. Title is nil when the
// related row has no title or could not be read.
type RelationRef struct {
	ID    string
	Title *string
}

// User is a person or created_by value.
type User struct {
	ID    string
	Email string
}

// MaxIdentifierLen is the longest identifier Postgres keeps without truncating.
const MaxIdentifierLen = 63

var (
	identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	slugRE       = regexp.MustCompile(`[^a-z0-9]+`)
)

// ValidIdentifier reports whether name can be used as a table name.
func ValidIdentifier(name string) bool {
	return len(name) <= MaxIdentifierLen && identifierRE.MatchString(name)
}

// Slug turns a property display name into a column base name.
func Slug(name string) string {
	return strings.Trim(slugRE.ReplaceAllString(strings.ToLower(name), "_"), "_")
}
