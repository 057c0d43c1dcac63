package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// seedPassword is the password of every development user.
const seedPassword = "rare"

// Seed populates an empty database with development data: two users, a few
// categories and tags, posts covering the approved, unapproved and
// future-dated cases, and comments on the first post.
func Seed(db *sql.DB) error {
	ctx := context.Background()

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM Users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	today := time.Now().UTC().Format("2006-01-02")
	nextYear := time.Now().UTC().AddDate(1, 0, 0).Format("2006-01-02")

	insertID := func(query string, args ...any) (int64, error) {
		var id int64
		err := tx.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id)
		return id, err
	}

	userIDs := make([]int64, 0, 2)
	for _, u := range []struct{ first, last, email, username, bio string }{
		{"Ada", "Lovelace", "ada@rare.local", "ada", "Writes about engines."},
		{"Alan", "Turing", "alan@rare.local", "alan", "Writes about machines."},
	} {
		id, err := insertID(`
			INSERT INTO Users (first_name, last_name, email, bio, username, password, profile_image_url, created_on, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)`,
			u.first, u.last, u.email, u.bio, u.username, string(hash), "", today)
		if err != nil {
			return fmt.Errorf("seed insert user %s: %w", u.username, err)
		}
		userIDs = append(userIDs, id)
	}

	categoryIDs := make([]int64, 0, 3)
	for _, label := range []string{"News", "Sports", "Tech"} {
		id, err := insertID(`INSERT INTO Categories (label) VALUES ($1)`, label)
		if err != nil {
			return fmt.Errorf("seed insert category %s: %w", label, err)
		}
		categoryIDs = append(categoryIDs, id)
	}

	for _, label := range []string{"go", "databases", "history"} {
		if _, err := insertID(`INSERT INTO Tags (label) VALUES ($1)`, label); err != nil {
			return fmt.Errorf("seed insert tag %s: %w", label, err)
		}
	}

	var firstPost int64
	for i, p := range []struct {
		user     int64
		category any
		title    string
		date     string
		approved int
	}{
		{userIDs[0], categoryIDs[2], "Notes on the Analytical Engine", today, 1},
		{userIDs[1], nil, "Computing Machinery and Intelligence", today, 1},
		{userIDs[1], categoryIDs[0], "Draft: awaiting review", today, 0},
		{userIDs[0], categoryIDs[1], "Scheduled post", nextYear, 1},
	} {
		id, err := insertID(`
			INSERT INTO Posts (user_id, category_id, title, publication_date, image_url, content, approved)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.user, p.category, p.title, p.date, "https://picsum.photos/seed/rare/800/400", "Lorem ipsum.", p.approved)
		if err != nil {
			return fmt.Errorf("seed insert post %q: %w", p.title, err)
		}
		if i == 0 {
			firstPost = id
		}
	}

	for _, c := range []struct {
		author  int64
		content string
	}{
		{userIDs[1], "A remarkable machine."},
		{userIDs[0], "Thank you!"},
	} {
		if _, err := insertID(`
			INSERT INTO Comments (post_id, author_id, content, publication_date)
			VALUES ($1, $2, $3, $4)`,
			firstPost, c.author, c.content, today); err != nil {
			return fmt.Errorf("seed insert comment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with development data",
		"users", len(userIDs),
		"password", seedPassword,
	)
	return nil
}
