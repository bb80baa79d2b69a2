package blog

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-blog-cache/listing"
	"github.com/goliatone/go-blog-cache/pkg/errors"
)

// OpenDB opens a SQLite-backed bun database. Use ":memory:" for an
// ephemeral database in tests and demos.
func OpenDB(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDataUnavailable, "failed to open database", err)
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// PostStore is the persistence gateway for posts. Its read side implements
// listing.Source[Post]; the write side is plain single-record CRUD.
type PostStore struct {
	db *bun.DB
}

// NewPostStore creates a store over an open database.
func NewPostStore(db *bun.DB) *PostStore {
	return &PostStore{db: db}
}

// Init creates the posts table if it does not exist.
func (s *PostStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*Post)(nil)).IfNotExists().Exec(ctx); err != nil {
		return errors.NewAppError(errors.ErrDataUnavailable, "failed to create posts table", err)
	}
	return nil
}

// FindPage implements listing.Source. Results are sorted by creation time
// descending; the listing layer depends on that ordering.
func (s *PostStore) FindPage(ctx context.Context, scope listing.Scope, offset, limit int) ([]Post, error) {
	var posts []Post

	query := s.db.NewSelect().
		Model(&posts).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)

	if scope.Author != "" {
		query = query.Where("author = ?", scope.Author)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, errors.NewAppError(errors.ErrDataUnavailable, "post page query failed", err)
	}

	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}

// Count implements listing.Source.
func (s *PostStore) Count(ctx context.Context, scope listing.Scope) (int, error) {
	query := s.db.NewSelect().Model((*Post)(nil))

	if scope.Author != "" {
		query = query.Where("author = ?", scope.Author)
	}

	count, err := query.Count(ctx)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrDataUnavailable, "post count query failed", err)
	}
	return count, nil
}

// Insert persists a new post.
func (s *PostStore) Insert(ctx context.Context, post *Post) error {
	if _, err := s.db.NewInsert().Model(post).Exec(ctx); err != nil {
		return errors.NewAppError(errors.ErrDataUnavailable, "post insert failed", err)
	}
	return nil
}

// ByID returns the post with the given ID.
func (s *PostStore) ByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	post := new(Post)

	err := s.db.NewSelect().Model(post).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewAppError(errors.ErrNotFound, "post not found", err)
	}
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDataUnavailable, "post lookup failed", err)
	}

	return post, nil
}

// Update rewrites an existing post.
func (s *PostStore) Update(ctx context.Context, post *Post) error {
	res, err := s.db.NewUpdate().Model(post).WherePK().Exec(ctx)
	if err != nil {
		return errors.NewAppError(errors.ErrDataUnavailable, "post update failed", err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return errors.NewAppError(errors.ErrNotFound, "post not found", nil)
	}
	return nil
}

// Delete removes the post with the given ID.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*Post)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return errors.NewAppError(errors.ErrDataUnavailable, "post delete failed", err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return errors.NewAppError(errors.ErrNotFound, "post not found", nil)
	}
	return nil
}
