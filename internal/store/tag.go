// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"rare/internal/models"
)

// TagStore reads tags. Tag associations are written by PostStore.Create.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// List returns all tags ordered by label.
func (s *TagStore) List(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	err := withConn(ctx, s.db, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, `SELECT id, label FROM Tags ORDER BY label, id`)
		if err != nil {
			return fmt.Errorf("list tags: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var t models.Tag
			if err := rows.Scan(&t.ID, &t.Label); err != nil {
				return fmt.Errorf("scan tag: %w", err)
			}
			tags = append(tags, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}
