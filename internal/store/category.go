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

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// List returns all categories ordered by label.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	items := []models.Category{}
	err := withConn(ctx, s.db, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, `SELECT id, label FROM Categories ORDER BY label, id`)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var c models.Category
			if err := rows.Scan(&c.ID, &c.Label); err != nil {
				return fmt.Errorf("scan category: %w", err)
			}
			items = append(items, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID retrieves a category by id. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	var found *models.Category
	err := withConn(ctx, s.db, func(conn *sql.Conn) error {
		var c models.Category
		err := conn.QueryRowContext(ctx, `SELECT id, label FROM Categories WHERE id = $1`, id).Scan(&c.ID, &c.Label)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find category by id: %w", err)
		}
		found = &c
		return nil
	})
	return found, err
}

// Create inserts a new category and returns it with its id.
func (s *CategoryStore) Create(ctx context.Context, label string) (*models.Category, error) {
	c := &models.Category{Label: label}
	err := withConn(ctx, s.db, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx,
			`INSERT INTO Categories (label) VALUES ($1) RETURNING id`, label,
		).Scan(&c.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}
