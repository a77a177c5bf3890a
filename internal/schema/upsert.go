package schema

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

const (
	// DefaultPageSize is the number of rows sent per upsert statement.
	DefaultPageSize = 1000
	// MaxParams is the Postgres limit on bind parameters per statement.
	MaxParams = 65535
)

// Upsert is a bulk insert keyed on the natural key column. Every non-key
// column is overwritten on conflict.
type Upsert struct {
	Table   string
	Columns []string
}

// NewUpsert builds the upsert for table over the columns of fields.
func NewUpsert(table string, fields []Field) Upsert {
	cols := []string{KeyColumn}
	for _, f := range fields {
		for _, c := range f.Columns {
			cols = append(cols, c.Name)
		}
	}
	return Upsert{Table: table, Columns: cols}
}

// PageSize returns how many rows fit in one statement, capped at want.
func (u Upsert) PageSize(want int) int {
	if want <= 0 {
		want = DefaultPageSize
	}
	if limit := MaxParams / len(u.Columns); limit < want {
		return limit
	}
	return want
}

// Statement renders the upsert for rows rows of parameters.
func (u Upsert) Statement(rows int) string {
	quoted := make([]string, len(u.Columns))
	for i, c := range u.Columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "insert into %s (%s) values ", pq.QuoteIdentifier(u.Table), strings.Join(quoted, ", "))

	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range u.Columns {
			if c > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", n)
			n++
		}
		b.WriteByte(')')
	}

	fmt.Fprintf(&b, " on conflict (%s) ", pq.QuoteIdentifier(KeyColumn))
	if len(u.Columns) == 1 {
		b.WriteString("do nothing")
		return b.String()
	}
	b.WriteString("do update set ")
	for i, c := range quoted[1:] {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s = excluded.%s", c, c)
	}
	return b.String()
}
