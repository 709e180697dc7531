package repository

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deppfellow/post-api/internal/errs"
)

var _ DBTX = (*pgxpool.Pool)(nil)

type mockRow struct {
	scan func(dest ...any) error
}

func (r mockRow) Scan(dest ...any) error {
	return r.scan(dest...)
}

type mockDB struct {
	exec     func(sql string, args ...any) (pgconn.CommandTag, error)
	queryRow func(sql string, args ...any) pgx.Row
}

func (m *mockDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return m.exec(sql, args...)
}

func (m *mockDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	return m.queryRow(sql, args...)
}

func rowOf(id, title, summary string) pgx.Row {
	return mockRow{scan: func(dest ...any) error {
		*dest[0].(*string) = id
		*dest[1].(*string) = title
		*dest[2].(*string) = summary
		return nil
	}}
}

func TestPostgresPostRepository_Find(t *testing.T) {
	id := uuid.New()
	var gotArgs []any

	repo := NewPostgresPostRepository(&mockDB{
		queryRow: func(sql string, args ...any) pgx.Row {
			gotArgs = args
			return rowOf(id.String(), "Hello", "World")
		},
	})

	post, err := repo.Find(context.Background(), id)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if post.ID() != id || post.Title() != "Hello" || post.Summary() != "World" {
		t.Errorf("unexpected post %+v", post)
	}
	if len(gotArgs) != 1 || gotArgs[0] != id.String() {
		t.Errorf("unexpected query args %v", gotArgs)
	}
}

func TestPostgresPostRepository_FindNoRows(t *testing.T) {
	repo := NewPostgresPostRepository(&mockDB{
		queryRow: func(string, ...any) pgx.Row {
			return mockRow{scan: func(...any) error { return pgx.ErrNoRows }}
		},
	})

	_, err := repo.Find(context.Background(), uuid.New())
	if !errors.Is(err, ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPostgresPostRepository_FindQueryError(t *testing.T) {
	boom := errors.New("connection reset")
	repo := NewPostgresPostRepository(&mockDB{
		queryRow: func(string, ...any) pgx.Row {
			return mockRow{scan: func(...any) error { return boom }}
		},
	})

	_, err := repo.Find(context.Background(), uuid.New())
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "find post") {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestPostgresPostRepository_FindInvalidRow(t *testing.T) {
	id := uuid.New()
	repo := NewPostgresPostRepository(&mockDB{
		queryRow: func(string, ...any) pgx.Row {
			return rowOf(id.String(), strings.Repeat("a", 21), "World")
		},
	})

	if _, err := repo.Find(context.Background(), id); err == nil || !strings.Contains(err.Error(), "rehydrate post") {
		t.Errorf("expected rehydrate error, got %v", err)
	}
}

func TestPostgresPostRepository_Save(t *testing.T) {
	post := mustPost(t, uuid.NewString(), "Hello", "World")
	var gotSQL string
	var gotArgs []any

	repo := NewPostgresPostRepository(&mockDB{
		exec: func(sql string, args ...any) (pgconn.CommandTag, error) {
			gotSQL, gotArgs = sql, args
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	})

	if err := repo.Save(context.Background(), post); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(gotSQL, "INSERT INTO posts") {
		t.Errorf("unexpected sql %q", gotSQL)
	}
	if len(gotArgs) != 3 || gotArgs[0] != post.ID().String() || gotArgs[1] != "Hello" || gotArgs[2] != "World" {
		t.Errorf("unexpected args %v", gotArgs)
	}
}

func TestPostgresPostRepository_SaveDuplicate(t *testing.T) {
	repo := NewPostgresPostRepository(&mockDB{
		exec: func(string, ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, &pgconn.PgError{
				Code:           "23505",
				TableName:      "posts",
				ConstraintName: "posts_pkey",
			}
		},
	})

	err := repo.Save(context.Background(), mustPost(t, uuid.NewString(), "Hello", "World"))

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Status != http.StatusBadRequest || httpErr.Message != "A Post with this identifier already exists" {
		t.Errorf("unexpected error %+v", httpErr)
	}
}

func TestPostgresPostRepository_SaveOtherError(t *testing.T) {
	boom := &pgconn.PgError{Code: "57P01"}
	repo := NewPostgresPostRepository(&mockDB{
		exec: func(string, ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, boom
		},
	})

	err := repo.Save(context.Background(), mustPost(t, uuid.NewString(), "Hello", "World"))

	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		t.Fatalf("unexpected HTTPError %+v", httpErr)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped pg error, got %v", err)
	}
}
