package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benvon/sailor-swift/internal/models"
)

// captureDriver records statements and answers RETURNING clauses with the
// first timestamp argument that was bound.
type captureDriver struct {
	mu      sync.Mutex
	queries []string
}

func (d *captureDriver) Open(string) (driver.Conn, error) { return &captureConn{d: d}, nil }

type captureConn struct{ d *captureDriver }

func (c *captureConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *captureConn) Close() error              { return nil }
func (c *captureConn) Begin() (driver.Tx, error) { return nil, errors.New("tx not supported") }

func (c *captureConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.d.mu.Lock()
	c.d.queries = append(c.d.queries, query)
	c.d.mu.Unlock()

	var stamps []driver.Value
	for _, a := range args {
		if ts, ok := a.Value.(time.Time); ok {
			stamps = append(stamps, ts)
		}
	}
	_, returning, _ := strings.Cut(query, "RETURNING")
	cols := strings.Split(strings.TrimSpace(returning), ",")
	row := make([]driver.Value, len(cols))
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
		if len(stamps) > 0 {
			row[i] = stamps[0]
		}
	}
	return &captureRows{cols: cols, row: row}, nil
}

type captureRows struct {
	cols []string
	row  []driver.Value
	done bool
}

func (r *captureRows) Columns() []string { return r.cols }
func (r *captureRows) Close() error      { return nil }
func (r *captureRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	r.done = true
	copy(dest, r.row)
	return nil
}

func newCaptureDB(t *testing.T) (*DB, *captureDriver) {
	t.Helper()
	d := &captureDriver{}
	name := "capture-" + strings.ReplaceAll(t.Name(), "/", "-")
	sql.Register(name, d)
	sqlDB, err := sql.Open(name, "")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return &DB{DB: sqlDB}, d
}

func TestUserRepository_CreateSetsTimestamps(t *testing.T) {
	t.Parallel()

	db, d := newCaptureDB(t)
	repo := NewUserRepository(db)
	user := &models.User{Email: "alice@example.com", IsActive: true}

	before := time.Now().UTC()
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.CreatedAt.Before(before) || user.UpdatedAt.Before(before) {
		t.Errorf("Expected fresh timestamps, got created=%v updated=%v", user.CreatedAt, user.UpdatedAt)
	}
	if !user.UpdatedAt.Equal(user.CreatedAt) {
		t.Errorf("Expected updated_at to equal created_at on insert, got %v and %v", user.UpdatedAt, user.CreatedAt)
	}
	if resp := user.ToResponse(); resp.UpdatedAt == nil {
		t.Error("Expected updatedAt in the response of a new user")
	}

	if len(d.queries) != 1 || !strings.Contains(d.queries[0], "updated_at)") {
		t.Fatalf("Expected insert to write updated_at, got %v", d.queries)
	}
}

func TestUsersSchema_UpdatedAtDefault(t *testing.T) {
	t.Parallel()

	users := schemaStatements[0]
	if !strings.Contains(users, "updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()") {
		t.Errorf("Expected users.updated_at to default to NOW(), got:\n%s", users)
	}
}
