package sql

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lguimbarda/min-query/query"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sensor TEXT NOT NULL,
			value REAL NOT NULL
		)
	`)
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	_, err = db.Exec(`INSERT INTO readings (sensor, value) VALUES
		('a', 1.5), ('b', -2.0), ('a', 3.5), ('c', 0.5)`)
	if err != nil {
		t.Fatalf("failed to insert data: %v", err)
	}
	return db
}

type reading struct {
	ID     int
	Sensor string
	Value  float64
}

func scanReading(rows *sql.Rows) (reading, error) {
	var r reading
	err := rows.Scan(&r.ID, &r.Sensor, &r.Value)
	return r, err
}

func TestQuerySource(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	src := Query(db, "SELECT id, sensor, value FROM readings ORDER BY id", scanReading)
	got, err := query.ToSlice(ctx, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(got))
	}
	if got[0].Sensor != "a" || got[0].Value != 1.5 {
		t.Errorf("unexpected first row: %+v", got[0])
	}
}

func TestQueryComposesWithCombinators(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	src := Query(db, "SELECT id, sensor, value FROM readings ORDER BY id", scanReading)
	positive := query.Where(src, func(r reading) bool { return r.Value > 0 })
	sensors, err := query.ToSlice(ctx, query.Select(positive, func(r reading) string { return r.Sensor }))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "a", "c"}
	if len(sensors) != len(want) {
		t.Fatalf("got %v, want %v", sensors, want)
	}
	for i := range want {
		if sensors[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, sensors[i], want[i])
		}
	}
}

func TestQueryWithArgs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	src := Query(db, "SELECT id, sensor, value FROM readings WHERE sensor = ?", scanReading, "a")
	n, err := query.Count(ctx, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows for sensor a, got %d", n)
	}
}

func TestQueryErrorIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	src := Query(db, "SELECT nope FROM missing", scanReading)
	if _, err := query.ToSlice(ctx, src); err == nil {
		t.Fatal("expected the query failure to surface at the terminal")
	}
}

func TestQueryRestartsPerEnumeration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	src := Query(db, "SELECT id, sensor, value FROM readings", scanReading)
	for pass := 0; pass < 2; pass++ {
		n, err := query.Count(ctx, src)
		if err != nil {
			t.Fatalf("pass %d: unexpected error: %v", pass, err)
		}
		if n != 4 {
			t.Fatalf("pass %d: expected 4 rows, got %d", pass, n)
		}
	}
}
