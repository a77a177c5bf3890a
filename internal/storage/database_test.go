package storage

import (
	"path/filepath"
	"testing"
)

func ledgerPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "runs.db")
}

func TestNew_LedgerSettings(t *testing.T) {
	db, err := New(ledgerPath(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var timeout int64
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("busy_timeout: %v", err)
	}
	if timeout != busyTimeout.Milliseconds() {
		t.Errorf("busy_timeout = %d, want %d", timeout, busyTimeout.Milliseconds())
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "missing", "runs.db"))
	if err == nil {
		_ = db.Close()
		t.Fatal("New() expected error for a missing directory")
	}
}

func TestMigrate_SyncRunsColumns(t *testing.T) {
	db, err := New(ledgerPath(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	for i := 0; i < 2; i++ {
		if err := Migrate(db); err != nil {
			t.Fatalf("Migrate() run %d error = %v", i+1, err)
		}
	}

	rows, err := db.Query("SELECT name, \"notnull\", pk FROM pragma_table_info('sync_runs')")
	if err != nil {
		t.Fatalf("table_info: %v", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	type column struct{ notNull, pk bool }
	got := map[string]column{}
	for rows.Next() {
		var name string
		var notNull, pk int
		if err := rows.Scan(&name, &notNull, &pk); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got[name] = column{notNull: notNull == 1, pk: pk == 1}
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}

	want := map[string]column{
		"id":          {pk: true},
		"job":         {notNull: true},
		"started_at":  {notNull: true},
		"finished_at": {},
		"status":      {notNull: true},
		"stats":       {},
		"error":       {},
	}
	if len(got) != len(want) {
		t.Errorf("sync_runs has %d columns, want %d: %v", len(got), len(want), got)
	}
	for name, w := range want {
		g, ok := got[name]
		if !ok {
			t.Errorf("sync_runs missing column %s", name)
			continue
		}
		if g != w {
			t.Errorf("column %s = %+v, want %+v", name, g, w)
		}
	}

	var index string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name='sync_runs' AND name='sync_runs_job_started_idx'").Scan(&index)
	if err != nil {
		t.Errorf("listing index not created: %v", err)
	}
}

func TestMigrate_KeepsExistingRuns(t *testing.T) {
	path := ledgerPath(t)
	db, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if _, err := db.Exec(`INSERT INTO sync_runs (id, job, started_at, status) VALUES ('r1', 'todoist', '2024-01-01T00:00:00.000000000Z', 'succeeded')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO sync_runs (id, started_at, status) VALUES ('r2', '2024-01-01T00:00:00.000000000Z', 'running')`); err == nil {
		t.Error("insert without job should violate NOT NULL")
	}
	_ = db.Close()

	db, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() on existing ledger error = %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sync_runs").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("sync_runs has %d rows after reopening, want 1", count)
	}
}
