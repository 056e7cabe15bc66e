package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	database "github.com/strataspace/strata-backend/internal"
	"github.com/strataspace/strata-backend/internal/utils"
)

// SQLStore persists spaces and resources through sqlx. The same code path
// serves Postgres (pgx) and SQLite (modernc); queries stick to the syntax
// both accept ($N placeholders, ON CONFLICT upserts, app-side timestamps).
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreateSpace(ctx context.Context, sp database.Space) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO spaces (id, controller, linkset_href, created_at, updated_at) VALUES ($1,$2,$3,$4,$5)`,
		sp.ID, sp.Controller, sp.LinksetHref, sp.CreatedAt, sp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create space %s: %w", sp.ID, err)
	}
	return nil
}

func (s *SQLStore) GetSpace(ctx context.Context, id uuid.UUID) (database.Space, error) {
	var sp database.Space
	err := s.db.GetContext(ctx, &sp,
		`SELECT id, controller, linkset_href, created_at, updated_at FROM spaces WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return database.Space{}, ErrNotFound
	}
	if err != nil {
		return database.Space{}, fmt.Errorf("get space %s: %w", id, err)
	}
	return sp, nil
}

func (s *SQLStore) Get(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	err := s.db.GetContext(ctx, &body, `SELECT body FROM resources WHERE path=$1`, path)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get resource %s: %w", path, err)
	}
	return body, nil
}

func (s *SQLStore) GetResource(ctx context.Context, path string) (database.Resource, error) {
	var res database.Resource
	err := s.db.GetContext(ctx, &res,
		`SELECT path, space_id, body, content_type, created_at, updated_at FROM resources WHERE path=$1`, path)
	if errors.Is(err, sql.ErrNoRows) {
		return database.Resource{}, ErrNotFound
	}
	if err != nil {
		return database.Resource{}, fmt.Errorf("get resource %s: %w", path, err)
	}
	return res, nil
}

func (s *SQLStore) Put(ctx context.Context, spaceID uuid.UUID, path string, body []byte, contentType string) (bool, error) {
	var existing []byte
	err := s.db.GetContext(ctx, &existing, `SELECT body FROM resources WHERE path=$1`, path)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// first write
	case err != nil:
		return false, fmt.Errorf("put resource %s: %w", path, err)
	default:
		if utils.JSONEqual(existing, body) {
			return false, nil
		}
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO resources (path, space_id, body, content_type, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (path) DO UPDATE SET body=excluded.body, content_type=excluded.content_type, updated_at=excluded.updated_at`,
		path, spaceID, body, contentType, now, now)
	if err != nil {
		return false, fmt.Errorf("put resource %s: %w", path, err)
	}
	return true, nil
}

func (s *SQLStore) ListChildren(ctx context.Context, container string) ([]string, error) {
	var paths []string
	err := s.db.SelectContext(ctx, &paths,
		`SELECT path FROM resources WHERE path LIKE $1 || '%' ORDER BY path`, container)
	if err != nil {
		return nil, fmt.Errorf("list children of %s: %w", container, err)
	}
	return DirectChildren(container, paths), nil
}

func (s *SQLStore) ListSpaces(ctx context.Context) ([]database.Space, error) {
	var out []database.Space
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, controller, linkset_href, created_at, updated_at FROM spaces ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	return out, nil
}
