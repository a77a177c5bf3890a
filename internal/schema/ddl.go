package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

const (
	// KeyColumn holds the source row id and is the upsert conflict target.
	KeyColumn = "notion_id"
	// SurrogateColumn is the auto-incrementing primary key.
	SurrogateColumn = "id"
)

// IndexMethod is the Postgres access method used to index a column.
type IndexMethod string

const (
	IndexBTree IndexMethod = "btree"
	IndexGIN   IndexMethod = "gin"
)

// Column is a derived table column.
type Column struct {
	Name    string
	SQLType string
	NotNull bool
	Index   IndexMethod
}

// Field is a property resolved against the closed type set, with its columns.
type Field struct {
	Property
	Kind    PropertyType
	Columns []Column
}

// columnsFor returns the columns a property of type t projects onto.
func columnsFor(slug string, t PropertyType) []Column {
	switch t {
	case TypeDate:
		return []Column{
			{Name: slug, SQLType: "timestamptz", Index: IndexBTree},
			{Name: slug + "_end", SQLType: "timestamptz", Index: IndexBTree},
		}
	case TypeCreatedTime, TypeLastEditedTime:
		return []Column{{Name: slug, SQLType: "timestamp", NotNull: true, Index: IndexBTree}}
	case TypeRelation:
		return []Column{
			{Name: slug, SQLType: "uuid[]", Index: IndexGIN},
			{Name: slug + "_title", SQLType: "text[]", Index: IndexBTree},
		}
	case TypeNumber:
		return []Column{{Name: slug, SQLType: "double precision", Index: IndexBTree}}
	case TypeCheckbox:
		return []Column{{Name: slug, SQLType: "boolean", Index: IndexBTree}}
	case TypeMultiSelect, TypePerson:
		return []Column{{Name: slug, SQLType: "text[]", Index: IndexGIN}}
	case TypeTitle, TypeText, TypeURL, TypeCreatedBy, TypeSelect:
		return []Column{{Name: slug, SQLType: "text", Index: IndexBTree}}
	}
	panic(fmt.Sprintf("schema: no columns for %v", t))
}

// Resolve maps every property onto the closed type set and derives its
// columns. It fails on the first unsupported type, on column names longer
// than MaxIdentifierLen and on column names that collide with each other or
// with the key columns.
func Resolve(props []Property) ([]Field, error) {
	seen := map[string]string{
		SurrogateColumn: "surrogate key",
		KeyColumn:       "natural key",
	}
	fields := make([]Field, 0, len(props))
	for _, p := range props {
		if p.Slug == "" {
			return nil, fmt.Errorf("property %q has an empty column name", p.Name)
		}
		kind, err := ParseType(p.Type)
		if err != nil {
			return nil, &UnsupportedTypeError{Property: p.Slug, Type: p.Type}
		}
		cols := columnsFor(p.Slug, kind)
		for _, c := range cols {
			if len(c.Name) > MaxIdentifierLen {
				return nil, fmt.Errorf("column %q of property %q is longer than %d bytes", c.Name, p.Name, MaxIdentifierLen)
			}
			if owner, ok := seen[c.Name]; ok {
				return nil, fmt.Errorf("column %q of property %q collides with %s", c.Name, p.Name, owner)
			}
			seen[c.Name] = fmt.Sprintf("property %q", p.Name)
		}
		fields = append(fields, Field{Property: p, Kind: kind, Columns: cols})
	}
	return fields, nil
}

// DeriveDDL returns the statements that create or additively migrate table
// for props: the table itself, one add-column statement per derived column,
// then the indexes. Every statement is safe to re-run.
func DeriveDDL(table string, props []Property) ([]string, error) {
	if !ValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	fields, err := Resolve(props)
	if err != nil {
		return nil, err
	}

	qt := pq.QuoteIdentifier(table)

	defs := []string{
		fmt.Sprintf("%s serial primary key", pq.QuoteIdentifier(SurrogateColumn)),
		fmt.Sprintf("%s uuid not null unique", pq.QuoteIdentifier(KeyColumn)),
	}
	var alters []string
	indexes := []string{createIndex(table, Column{Name: KeyColumn, Index: IndexBTree})}

	for _, f := range fields {
		for _, c := range f.Columns {
			def := fmt.Sprintf("%s %s", pq.QuoteIdentifier(c.Name), c.SQLType)
			if c.NotNull {
				defs = append(defs, def+" not null")
			} else {
				defs = append(defs, def)
			}
			// Added columns stay nullable so the migration works on populated tables.
			alters = append(alters, fmt.Sprintf("alter table %s add column if not exists %s", qt, def))
			indexes = append(indexes, createIndex(table, c))
		}
	}

	stmts := make([]string, 0, 1+len(alters)+len(indexes))
	stmts = append(stmts, fmt.Sprintf("create table if not exists %s (\n\t%s\n)", qt, strings.Join(defs, ",\n\t")))
	stmts = append(stmts, alters...)
	stmts = append(stmts, indexes...)
	return stmts, nil
}

func createIndex(table string, c Column) string {
	return fmt.Sprintf("create index if not exists %s on %s using %s (%s)",
		pq.QuoteIdentifier(indexName(table, c.Name)),
		pq.QuoteIdentifier(table),
		c.Index,
		pq.QuoteIdentifier(c.Name),
	)
}

// indexName returns <table>_<column>_idx. Names past MaxIdentifierLen are
// cut and suffixed with a hash of the full name so they stay distinct.
func indexName(table, column string) string {
	name := table + "_" + column + "_idx"
	if len(name) <= MaxIdentifierLen {
		return name
	}
	sum := sha256.Sum256([]byte(name))
	suffix := "_" + hex.EncodeToString(sum[:4]) + "_idx"
	return name[:MaxIdentifierLen-len(suffix)] + suffix
}
