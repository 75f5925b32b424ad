package sqlitedb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type busyErr struct{}

func (busyErr) Error() string { return "sqlite: busy" }
func (busyErr) Code() int     { return sqliteBusyCode }

func TestOpenCreatesSchemaAndRejectsMismatch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "test.db")
	schema := Schema{Name: "widgets", SQL: "CREATE TABLE widgets (id INTEGER PRIMARY KEY)", Version: 1}

	db, err := Open(ctx, path, schema)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO widgets (id) VALUES (1)"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_ = db.Close()

	db, err = Open(ctx, path, schema)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(1) FROM widgets"); err != nil || count != 1 {
		t.Fatalf("expected persisted row, count=%d err=%v", count, err)
	}
	_ = db.Close()

	schema.Version = 2
	if _, err := Open(ctx, path, schema); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestRetryOnBusy(t *testing.T) {
	calls := 0
	err := RetryOnBusy(context.Background(), func() error {
		calls++
		if calls < 3 {
			return busyErr{}
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success after 3 calls, got calls=%d err=%v", calls, err)
	}

	calls = 0
	plain := errors.New("constraint failed")
	if err := RetryOnBusy(context.Background(), func() error { calls++; return plain }); !errors.Is(err, plain) || calls != 1 {
		t.Fatalf("expected single attempt for non-busy error, calls=%d err=%v", calls, err)
	}
}

func TestIsBusy(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{busyErr{}, true},
		{errors.New("database is locked"), true},
		{errors.New("SQLITE_BUSY (5)"), true},
		{errors.New("no such table: foo"), false},
	}
	for _, tt := range tests {
		if got := IsBusy(tt.err); got != tt.want {
			t.Fatalf("IsBusy(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
