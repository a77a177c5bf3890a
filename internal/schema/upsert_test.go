package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsert_Statement(t *testing.T) {
	fields, err := Resolve([]Property{
		{Name: "Name", Slug: "name", Type: "title"},
		{Name: "When", Slug: "when", Type: "date"},
	})
	require.NoError(t, err)

	u := NewUpsert("tasks", fields)
	assert.Equal(t, []string{"notion_id", "name", "when", "when_end"}, u.Columns)

	assert.Equal(t,
		`insert into "tasks" ("notion_id", "name", "when", "when_end") values ($1, $2, $3, $4), ($5, $6, $7, $8) `+
			`on conflict ("notion_id") do update set "name" = excluded."name", "when" = excluded."when", "when_end" = excluded."when_end"`,
		u.Statement(2))
}

func TestUpsert_KeyOnly(t *testing.T) {
	u := NewUpsert("tasks", nil)
	assert.Equal(t, `insert into "tasks" ("notion_id") values ($1) on conflict ("notion_id") do nothing`, u.Statement(1))
}

func TestUpsert_PageSize(t *testing.T) {
	small := Upsert{Table: "t", Columns: []string{"notion_id", "a"}}
	assert.Equal(t, DefaultPageSize, small.PageSize(0))
	assert.Equal(t, 10, small.PageSize(10))

	wide := Upsert{Table: "t", Columns: make([]string, 100)}
	assert.Equal(t, 655, wide.PageSize(DefaultPageSize))
}
