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

// CommentStore handles comment reads (with expansions) and writes.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database pool.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// ListByPost returns the comments of a post, oldest first.
func (s *CommentStore) ListByPost(ctx context.Context, postID int64, t expand.Tokens) ([]models.Comment, error) {
	query := expand.CommentPlan(t).Query(expand.CommentTable, "c.post_id = $1", "c.publication_date ASC, c.id ASC")

	var rows []expand.Row
	err := withConn(ctx, s.db, func(conn *sql.Conn) error {
		rs, err := conn.QueryContext(ctx, query, postID)
		if err != nil {
			return err
		}
		defer rs.Close()
		rows, err = expand.ScanRows(rs)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]models.Comment, 0, len(rows))
	for _, row := range rows {
		c, err := expand.AssembleComment(row, t)
		if err != nil {
			return nil, fmt.Errorf("assemble comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, nil
}

// Create inserts a comment dated now. Returns ErrInvalidReference when the
// post or author does not exist.
func (s *CommentStore) Create(ctx context.Context, postID, authorID int64, content string) (*models.Comment, error) {
	c := &models.Comment{
		PostID:          postID,
		AuthorID:        authorID,
		Content:         content,
		PublicationDate: time.Now().UTC().Format(time.RFC3339),
	}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, ref := range []struct {
			table string
			id    int64
		}{{"Posts", postID}, {"Users", authorID}} {
			ok, err := exists(ctx, tx, ref.table, ref.id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s %d", ErrInvalidReference, ref.table, ref.id)
			}
		}

		return tx.QueryRowContext(ctx, `
			INSERT INTO Comments (post_id, author_id, content, publication_date)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			c.PostID, c.AuthorID, c.Content, c.PublicationDate,
		).Scan(&c.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}
