package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"

	"github.com/deppfellow/post-api/internal/model"
	"github.com/deppfellow/post-api/internal/sqlerr"
)

var _ PostRepository = (*PostgresPostRepository)(nil)

// DBTX is the part of *pgxpool.Pool the repository uses. A pgx.Tx
// satisfies it too.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresPostRepository struct {
	db DBTX
}

func NewPostgresPostRepository(db DBTX) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// Find loads a post by id. Rows are rebuilt through model.NewPost so a
// stored row that violates the entity rules surfaces as an error instead
// of a half-valid Post.
func (r *PostgresPostRepository) Find(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var (
		postID  string
		title   string
		summary string
	)

	err := r.db.QueryRow(ctx,
		`SELECT id::text, title, summary FROM posts WHERE id = $1`,
		id.String(),
	).Scan(&postID, &title, &summary)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, pkgerrors.Wrapf(err, "find post %s", id)
	}

	post, err := model.NewPost(postID, title, summary)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "rehydrate post %s", id)
	}
	return post, nil
}

// Save inserts the post. Constraint violations, such as a duplicate id,
// come back as 400 HTTPErrors from sqlerr.
func (r *PostgresPostRepository) Save(ctx context.Context, post *model.Post) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO posts (id, title, summary) VALUES ($1, $2, $3)`,
		post.ID().String(), post.Title(), post.Summary(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && sqlerr.MapCode(pgErr.Code) != sqlerr.Other {
			return sqlerr.HandleError(err)
		}
		return pkgerrors.Wrapf(err, "save post %s", post.ID())
	}
	return nil
}
