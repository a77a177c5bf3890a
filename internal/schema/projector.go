package schema

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_schema.go -package=mocks notionsync/internal/schema Source,Store

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"notionsync/internal/contextutil"
	"notionsync/internal/telemetry"
)

// Source provides the property schema and a full row snapshot of a collection.
type Source interface {
	Properties(ctx context.Context) ([]Property, error)
	Rows(ctx context.Context) ([]Row, error)
}

// Store executes DDL and bulk upserts against the relational database.
type Store interface {
	// ApplyDDL runs the statements in order inside one transaction.
	ApplyDDL(ctx context.Context, statements []string) error
	// BulkUpsert runs u over rows and returns the number of rows affected.
	BulkUpsert(ctx context.Context, u Upsert, rows [][]any) (int64, error)
}

// Result summarizes a projection run.
type Result struct {
	Statements   int   `json:"statements"`
	Columns      int   `json:"columns"`
	Rows         int   `json:"rows"`
	RowsAffected int64 `json:"rows_affected"`
}

// Projector mirrors a collection into a table.
type Projector struct {
	source Source
	store  Store
	table  string
}

// NewProjector creates a Projector writing to table.
func NewProjector(source Source, store Store, table string) *Projector {
	return &Projector{
		source: source,
		store:  store,
		table:  table,
	}
}

// DDL reads the collection schema and returns the statements that bring the
// table up to date, without executing them.
func (p *Projector) DDL(ctx context.Context) ([]string, []Property, error) {
	props, err := p.source.Properties(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read collection schema: %w", err)
	}
	stmts, err := DeriveDDL(p.table, props)
	if err != nil {
		return nil, nil, err
	}
	return stmts, props, nil
}

// Sync migrates the table and upserts every row of the collection.
func (p *Projector) Sync(ctx context.Context) (res *Result, err error) {
	ctx, span := telemetry.Tracer("").Start(ctx, "schema.sync")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("schema.table", p.table))

	logger := contextutil.LoggerFromContext(ctx).With("table", p.table)

	stmts, props, err := p.DDL(ctx)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "applying table definition", "statements", len(stmts), "properties", len(props))
	if err := p.store.ApplyDDL(ctx, stmts); err != nil {
		return nil, fmt.Errorf("failed to apply ddl: %w", err)
	}

	rows, err := p.source.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection rows: %w", err)
	}
	logger.InfoContext(ctx, "upserting rows", "rows", len(rows))

	affected, err := p.Upsert(ctx, props, rows)
	if err != nil {
		return nil, err
	}

	fields, _ := Resolve(props)
	res = &Result{
		Statements:   len(stmts),
		Columns:      len(NewUpsert(p.table, fields).Columns),
		Rows:         len(rows),
		RowsAffected: affected,
	}
	logger.InfoContext(ctx, "projection complete", "rows_affected", affected)
	return res, nil
}

// Upsert coerces rows per the declared property types and writes them in
// one bulk upsert keyed on the natural key.
func (p *Projector) Upsert(ctx context.Context, props []Property, rows []Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	fields, err := Resolve(props)
	if err != nil {
		return 0, err
	}

	params := make([][]any, 0, len(rows))
	for _, row := range rows {
		values, err := ProjectRow(fields, row)
		if err != nil {
			return 0, err
		}
		params = append(params, values)
	}

	affected, err := p.store.BulkUpsert(ctx, NewUpsert(p.table, fields), params)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert rows: %w", err)
	}
	return affected, nil
}
