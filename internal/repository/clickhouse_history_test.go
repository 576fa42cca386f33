package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"strings"
	"testing"
	"time"

	"CryptoHunter/internal/domain/models"
)

// stub database/sql driver capturing the built query and bind args; enough
// to exercise the SQL ClickHouseHistory generates without a server.
type stubDriver struct{ conn *stubConn }

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

type stubConn struct {
	lastQuery string
	lastArgs  []driver.Value
	rows      [][]driver.Value
}

func (c *stubConn) Prepare(query string) (driver.Stmt, error) {
	return &stubStmt{conn: c, query: query}, nil
}
func (c *stubConn) Close() error              { return nil }
func (c *stubConn) Begin() (driver.Tx, error) { return nil, driver.ErrSkip }

type stubStmt struct {
	conn  *stubConn
	query string
}

func (s *stubStmt) Close() error  { return nil }
func (s *stubStmt) NumInput() int { return -1 }

func (s *stubStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.conn.lastQuery, s.conn.lastArgs = s.query, args
	return driver.RowsAffected(1), nil
}

func (s *stubStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.conn.lastQuery, s.conn.lastArgs = s.query, args
	return &stubRows{data: s.conn.rows}, nil
}

type stubRows struct {
	data [][]driver.Value
	pos  int
}

func (r *stubRows) Columns() []string { return []string{"ts", "price"} }
func (r *stubRows) Close() error      { return nil }
func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.pos])
	r.pos++
	return nil
}

func newStubDB(t *testing.T) (*sql.DB, *stubConn) {
	t.Helper()
	conn := &stubConn{}
	name := "chstub-" + t.Name()
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, conn
}

func TestClickHouseSeriesUnboundedWhenLimitZero(t *testing.T) {
	db, conn := newStubDB(t)
	base := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	conn.rows = [][]driver.Value{
		{base, 70000.0},
		{base.Add(time.Hour), 70100.0},
	}

	store := NewClickHouseHistory(db, "price_history")
	points, err := store.Series(context.Background(), "BTC", base, base.Add(2*time.Hour), 0)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points", len(points))
	}
	if strings.Contains(conn.lastQuery, "LIMIT") {
		t.Fatalf("limit 0 must not bound the query: %s", conn.lastQuery)
	}
	if len(conn.lastArgs) != 3 {
		t.Fatalf("args = %v", conn.lastArgs)
	}
}

func TestClickHouseSeriesAppliesPositiveLimit(t *testing.T) {
	db, conn := newStubDB(t)
	base := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

	store := NewClickHouseHistory(db, "price_history")
	if _, err := store.Series(context.Background(), "BTC", base, base.Add(time.Hour), 5); err != nil {
		t.Fatalf("series: %v", err)
	}
	if !strings.Contains(conn.lastQuery, "LIMIT ?") {
		t.Fatalf("positive limit must bound the query: %s", conn.lastQuery)
	}
	if got := conn.lastArgs[len(conn.lastArgs)-1]; got != int64(5) {
		t.Fatalf("limit arg = %v", got)
	}
}

func TestClickHouseAppendInsertsRow(t *testing.T) {
	db, conn := newStubDB(t)
	base := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

	store := NewClickHouseHistory(db, "")
	err := store.Append(context.Background(), "ETH", models.PricePoint{Timestamp: base, Price: 2500})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if !strings.Contains(conn.lastQuery, "INSERT INTO price_history") {
		t.Fatalf("query = %s", conn.lastQuery)
	}
	if len(conn.lastArgs) != 3 {
		t.Fatalf("args = %v", conn.lastArgs)
	}
}
