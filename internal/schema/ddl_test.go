package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveDDL_MultiSelect(t *testing.T) {
	props := []Property{{Name: "Tags", Slug: "tags", Type: "multi_select"}}

	stmts, err := DeriveDDL("tasks", props)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"create table if not exists \"tasks\" (\n\t\"id\" serial primary key,\n\t\"notion_id\" uuid not null unique,\n\t\"tags\" text[]\n)",
		`alter table "tasks" add column if not exists "tags" text[]`,
		`create index if not exists "tasks_notion_id_idx" on "tasks" using btree ("notion_id")`,
		`create index if not exists "tasks_tags_idx" on "tasks" using gin ("tags")`,
	}, stmts)

	again, err := DeriveDDL("tasks", props)
	require.NoError(t, err)
	assert.Equal(t, stmts, again)
	for _, s := range stmts {
		assert.Contains(t, s, "if not exists")
	}
}

func TestDeriveDDL_TypeTable(t *testing.T) {
	tests := []struct {
		typ     string
		columns []string
		indexes []string
	}{
		{"date", []string{`"due" timestamptz`, `"due_end" timestamptz`}, []string{`using btree ("due")`, `using btree ("due_end")`}},
		{"created_time", []string{`"due" timestamp not null`}, []string{`using btree ("due")`}},
		{"last_edited_time", []string{`"due" timestamp not null`}, []string{`using btree ("due")`}},
		{"relation", []string{`"due" uuid[]`, `"due_title" text[]`}, []string{`using gin ("due")`, `using btree ("due_title")`}},
		{"number", []string{`"due" double precision`}, []string{`using btree ("due")`}},
		{"checkbox", []string{`"due" boolean`}, []string{`using btree ("due")`}},
		{"multi_select", []string{`"due" text[]`}, []string{`using gin ("due")`}},
		{"person", []string{`"due" text[]`}, []string{`using gin ("due")`}},
		{"title", []string{`"due" text`}, []string{`using btree ("due")`}},
		{"text", []string{`"due" text`}, []string{`using btree ("due")`}},
		{"url", []string{`"due" text`}, []string{`using btree ("due")`}},
		{"created_by", []string{`"due" text`}, []string{`using btree ("due")`}},
		{"select", []string{`"due" text`}, []string{`using btree ("due")`}},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			stmts, err := DeriveDDL("t", []Property{{Name: "Due", Slug: "due", Type: tt.typ}})
			require.NoError(t, err)
			all := strings.Join(stmts, "\n")
			for _, c := range tt.columns {
				assert.Contains(t, stmts[0], c)
			}
			for _, idx := range tt.indexes {
				assert.Contains(t, all, idx)
			}
			// table, one alter and one index per column, plus the key index
			assert.Len(t, stmts, 1+2*len(tt.columns)+1)
		})
	}
}

func TestDeriveDDL_AlterIsNullable(t *testing.T) {
	stmts, err := DeriveDDL("t", []Property{{Name: "Created", Slug: "created", Type: "created_time"}})
	require.NoError(t, err)
	assert.Equal(t, `alter table "t" add column if not exists "created" timestamp`, stmts[1])
}

func TestDeriveDDL_Errors(t *testing.T) {
	t.Run("unsupported type", func(t *testing.T) {
		_, err := DeriveDDL("t", []Property{
			{Name: "Ok", Slug: "ok", Type: "text"},
			{Name: "Formula", Slug: "formula", Type: "formula"},
		})
		var typeErr *UnsupportedTypeError
		require.True(t, errors.As(err, &typeErr))
		assert.Equal(t, "formula", typeErr.Property)
		assert.Equal(t, "formula", typeErr.Type)
	})

	t.Run("invalid table", func(t *testing.T) {
		_, err := DeriveDDL("tasks; drop table x", nil)
		require.Error(t, err)
	})

	t.Run("reserved column", func(t *testing.T) {
		_, err := DeriveDDL("t", []Property{{Name: "ID", Slug: "id", Type: "text"}})
		require.Error(t, err)
	})

	t.Run("derived column collision", func(t *testing.T) {
		_, err := DeriveDDL("t", []Property{
			{Name: "Due", Slug: "due", Type: "date"},
			{Name: "Due End", Slug: "due_end", Type: "text"},
		})
		require.Error(t, err)
	})
}

func TestParseType(t *testing.T) {
	for name, want := range typeNames {
		got, err := ParseType(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, name, got.String())
	}
	_, err := ParseType("rollup")
	var typeErr *UnsupportedTypeError
	require.ErrorAs(t, err, &typeErr)
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Tags":          "tags",
		"Due Date":      "due_date",
		"  Owner (PM) ": "owner_pm",
		"Ünicode name":  "nicode_name",
		"a--b":          "a_b",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slug(in), "Slug(%q)", in)
	}
}

func TestValidIdentifier(t *testing.T) {
	assert.True(t, ValidIdentifier("tasks"))
	assert.True(t, ValidIdentifier("_notion_tasks2"))
	assert.False(t, ValidIdentifier("2tasks"))
	assert.False(t, ValidIdentifier("public.tasks"))
	assert.False(t, ValidIdentifier(""))
	assert.False(t, ValidIdentifier(strings.Repeat("a", 64)))
}

func TestResolve_RejectsLongColumnNames(t *testing.T) {
	long := strings.Repeat("a", 60)

	_, err := Resolve([]Property{{Name: "Long", Slug: long, Type: "text"}})
	require.NoError(t, err)

	// Relation columns add a _title suffix past the limit.
	_, err = Resolve([]Property{{Name: "Long", Slug: long, Type: "relation"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), long+"_title")

	_, err = DeriveDDL("tasks", []Property{{Name: "Longer", Slug: strings.Repeat("b", 64), Type: "text"}})
	require.Error(t, err)
}

func TestDeriveDDL_LongIndexNames(t *testing.T) {
	prefix := strings.Repeat("c", 50)
	props := []Property{
		{Name: "First", Slug: prefix + "_first", Type: "text"},
		{Name: "Second", Slug: prefix + "_second", Type: "text"},
	}

	stmts, err := DeriveDDL("tasks", props)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, stmt := range stmts {
		if !strings.HasPrefix(stmt, "create index") {
			continue
		}
		name := strings.Fields(stmt)[5]
		name = strings.Trim(name, `"`)
		assert.LessOrEqual(t, len(name), MaxIdentifierLen, name)
		assert.True(t, strings.HasSuffix(name, "_idx"), name)
		assert.False(t, names[name], "duplicate index name %s", name)
		names[name] = true
	}
	assert.Len(t, names, 3)
	assert.True(t, names["tasks_notion_id_idx"])
}
