// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rare/internal/expand"
	"rare/internal/models"
)

// PostStore handles post reads (with expansions) and writes.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database pool.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// PostFilter narrows the public post listing.
type PostFilter struct {
	// UserID restricts the listing to one author when set.
	UserID *int64
	// Now is the cut-off for publication dates; later posts are hidden.
	Now time.Time
}

// PostWrite carries the columns written by Create and Update.
type PostWrite struct {
	UserID          int64
	CategoryID      *int64
	Title           string
	PublicationDate string
	ImageURL        string
	Content         string
	Approved        int64
}

// ListPublished returns approved posts whose publication date is not in
// the future, newest first.
func (s *PostStore) ListPublished(ctx context.Context, f PostFilter, t expand.Tokens) ([]models.Post, error) {
	where := "p.approved = 1 AND p.publication_date <= $1"
	args := []any{f.Now.UTC().Format(time.RFC3339)}
	if f.UserID != nil {
		where += " AND p.user_id = $2"
		args = append(args, *f.UserID)
	}

	query := expand.PostPlan(t).Query(expand.PostTable, where, "p.publication_date DESC, p.id DESC")
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]models.Post, 0, len(rows))
	for _, row := range rows {
		p, err := expand.AssemblePost(row, t)
		if err != nil {
			return nil, fmt.Errorf("assemble post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// FindByID retrieves a post by id regardless of approval. Returns nil if
// not found.
func (s *PostStore) FindByID(ctx context.Context, id int64, t expand.Tokens) (*models.Post, error) {
	query := expand.PostPlan(t).Query(expand.PostTable, "p.id = $1", "")
	rows, err := s.query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	p, err := expand.AssemblePost(rows[0], t)
	if err != nil {
		return nil, fmt.Errorf("assemble post: %w", err)
	}
	return &p, nil
}

func (s *PostStore) query(ctx context.Context, query string, args ...any) ([]expand.Row, error) {
	var out []expand.Row
	err := withConn(ctx, s.db, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = expand.ScanRows(rows)
		return err
	})
	return out, err
}

// checkRefs verifies that the author, the category (when set) and every
// tag exist.
func checkRefs(ctx context.Context, tx *sql.Tx, w PostWrite, tagIDs []int64) error {
	type ref struct {
		table string
		id    int64
	}
	refs := []ref{{"Users", w.UserID}}
	if w.CategoryID != nil {
		refs = append(refs, ref{"Categories", *w.CategoryID})
	}
	for _, id := range tagIDs {
		refs = append(refs, ref{"Tags", id})
	}

	for _, ref := range refs {
		ok, err := exists(ctx, tx, ref.table, ref.id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s %d", ErrInvalidReference, ref.table, ref.id)
		}
	}
	return nil
}

// Create inserts a post and its tag associations in one transaction and
// returns the new post id.
func (s *PostStore) Create(ctx context.Context, w PostWrite, tagIDs []int64) (int64, error) {
	var id int64
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := checkRefs(ctx, tx, w, tagIDs); err != nil {
			return err
		}

		err := tx.QueryRowContext(ctx, `
			INSERT INTO Posts (user_id, category_id, title, publication_date, image_url, content, approved)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			w.UserID, w.CategoryID, w.Title, w.PublicationDate, w.ImageURL, w.Content, w.Approved,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert post: %w", err)
		}

		for _, tagID := range tagIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO PostTags (post_id, tag_id) VALUES ($1, $2)`, id, tagID,
			); err != nil {
				return fmt.Errorf("tag post %d with %d: %w", id, tagID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create post: %w", err)
	}
	return id, nil
}

// Update overwrites every writable column of post id. Returns ErrNotFound
// when the post does not exist.
func (s *PostStore) Update(ctx context.Context, id int64, w PostWrite) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "Posts", id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		if err := checkRefs(ctx, tx, w, nil); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE Posts SET
				user_id = $1, category_id = $2, title = $3, publication_date = $4,
				image_url = $5, content = $6, approved = $7
			WHERE id = $8`,
			w.UserID, w.CategoryID, w.Title, w.PublicationDate, w.ImageURL, w.Content, w.Approved, id,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("update post %d: %w", id, err)
	}
	return nil
}

// Delete removes a post; its comments and tag links cascade. Returns
// ErrNotFound when nothing was deleted.
func (s *PostStore) Delete(ctx context.Context, id int64) error {
	var affected int64
	err := withConn(ctx, s.db, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `DELETE FROM Posts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
