package notion

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notionsync/internal/schema"
)

const collectionSchema = `{
  "id": "coll",
  "properties": {
    "Name":       {"name": "Name", "type": "title"},
    "Notes":      {"name": "Notes", "type": "rich_text"},
    "Owners":     {"name": "Owners", "type": "people"},
    "Due Date":   {"name": "Due Date", "type": "date"},
    "Related":    {"name": "Related", "type": "relation"},
    "Tags":       {"name": "Tags", "type": "multi_select"},
    "Created by": {"name": "Created by", "type": "created_by"},
    "Score":      {"name": "Score", "type": "number"}
  }
}`

const collectionQuery = `{
  "results": [{
    "id": "8a3e6f5c-1111-4c2b-9d1e-000000000001",
    "properties": {
      "Name": {"type": "title", "title": [{"plain_text": "Row one"}]},
      "Notes": {"type": "rich_text", "rich_text": [{"plain_text": "hello"}]},
      "Owners": {"type": "people", "people": [{"object": "user", "id": "u1", "person": {"email": "ann@example.com"}}]},
      "Due Date": {"type": "date", "date": {"start": "2023-01-05", "end": "2023-01-07"}},
      "Related": {"type": "relation", "relation": [{"id": "rel-a"}, {"id": "rel-untitled"}, {"id": "rel-gone"}]},
      "Tags": {"type": "multi_select", "multi_select": [{"name": "x"}, {"name": "y"}]},
      "Created by": {"type": "created_by", "created_by": {"object": "user", "id": "u1", "person": {"email": "ann@example.com"}}},
      "Score": {"type": "number", "number": null}
    }
  }],
  "has_more": false
}`

func newCollectionServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
	mux.HandleFunc("GET /v1/databases/coll", func(w http.ResponseWriter, r *http.Request) { write(w, collectionSchema) })
	mux.HandleFunc("POST /v1/databases/coll/query", func(w http.ResponseWriter, r *http.Request) { write(w, collectionQuery) })
	mux.HandleFunc("GET /v1/pages/rel-a", func(w http.ResponseWriter, r *http.Request) {
		write(w, `{"id":"rel-a","properties":{"Name":{"type":"title","title":[{"plain_text":"Proj A"}]}}}`)
	})
	mux.HandleFunc("GET /v1/pages/rel-untitled", func(w http.ResponseWriter, r *http.Request) {
		write(w, `{"id":"rel-untitled","properties":{"Name":{"type":"title","title":[]}}}`)
	})
	mux.HandleFunc("GET /v1/pages/rel-gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		write(w, `{"object":"error","status":404,"code":"object_not_found","message":"gone"}`)
	})
	return httptest.NewServer(mux)
}

func TestCollectionSource_Properties(t *testing.T) {
	server := newCollectionServer(t)
	defer server.Close()

	props, err := NewCollectionSource(NewClient(server.URL, "secret"), "coll").Properties(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []schema.Property{
		{Name: "Created by", Slug: "created_by", Type: "created_by"},
		{Name: "Due Date", Slug: "due_date", Type: "date"},
		{Name: "Name", Slug: "name", Type: "title"},
		{Name: "Notes", Slug: "notes", Type: "text"},
		{Name: "Owners", Slug: "owners", Type: "person"},
		{Name: "Related", Slug: "related", Type: "relation"},
		{Name: "Score", Slug: "score", Type: "number"},
		{Name: "Tags", Slug: "tags", Type: "multi_select"},
	}, props)
}

func TestCollectionSource_Rows(t *testing.T) {
	server := newCollectionServer(t)
	defer server.Close()

	src := NewCollectionSource(NewClient(server.URL, "secret"), "coll")
	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	v := rows[0].Values
	assert.Equal(t, "Row one", v["name"])
	assert.Equal(t, "hello", v["notes"])
	assert.Equal(t, []schema.User{{ID: "u1", Email: "ann@example.com"}}, v["owners"])
	assert.Equal(t, &schema.User{ID: "u1", Email: "ann@example.com"}, v["created_by"])
	assert.Equal(t, []string{"x", "y"}, v["tags"])
	assert.Nil(t, v["score"])

	due := v["due_date"].(schema.DateValue)
	assert.Equal(t, time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), due.Start)
	require.NotNil(t, due.End)

	refs := v["related"].([]*schema.RelationRef)
	require.Len(t, refs, 3)
	require.NotNil(t, refs[0])
	assert.Equal(t, "Proj A", *refs[0].Title)
	require.NotNil(t, refs[1])
	assert.Nil(t, refs[1].Title)
	assert.Nil(t, refs[2], "pages not shared with the integration become nil entries")
}

func TestCollectionSource_ProjectsThroughSchema(t *testing.T) {
	server := newCollectionServer(t)
	defer server.Close()

	src := NewCollectionSource(NewClient(server.URL, "secret"), "coll")
	props, err := src.Properties(context.Background())
	require.NoError(t, err)
	rows, err := src.Rows(context.Background())
	require.NoError(t, err)

	fields, err := schema.Resolve(props)
	require.NoError(t, err)
	values, err := schema.ProjectRow(fields, rows[0])
	require.NoError(t, err)
	assert.Len(t, values, len(schema.NewUpsert("coll", fields).Columns))
}

func TestCollectionSource_RowsRelatedPageFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/databases/coll", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"coll","properties":{"Related":{"name":"Related","type":"relation"}}}`)
	})
	mux.HandleFunc("POST /v1/databases/coll/query", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results":[{"id":"row","properties":{"Related":{"type":"relation","relation":[{"id":"rel-a"}]}}}],"has_more":false}`)
	})
	mux.HandleFunc("GET /v1/pages/rel-a", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"object":"error","status":503,"code":"service_unavailable","message":"try later"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	rows, err := NewCollectionSource(NewClient(server.URL, "secret"), "coll").Rows(context.Background())
	require.Error(t, err)
	assert.Nil(t, rows)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}
