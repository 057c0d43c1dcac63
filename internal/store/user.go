package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"rare/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database pool.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, first_name, last_name, email, bio, username, password, profile_image_url, created_on, active`

// scanUser scans a row into a User struct.
func scanUser(scanner interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := scanner.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Bio, &u.Username,
		&u.Password, &u.ProfileImageURL, &u.CreatedOn, &u.Active,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns all users ordered by id.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := withConn(ctx, s.db, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, `SELECT `+userColumns+` FROM Users ORDER BY id`)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return fmt.Errorf("scan user: %w", err)
			}
			users = append(users, *u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// FindByID retrieves a user by id. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return s.findOne(ctx, "id", id)
}

// FindByUsername retrieves a user by username. Returns nil if not found.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, "username", username)
}

func (s *UserStore) findOne(ctx context.Context, column string, value any) (*models.User, error) {
	var user *models.User
	err := withConn(ctx, s.db, func(conn *sql.Conn) error {
		row := conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM Users WHERE `+column+` = $1`, value)
		u, err := scanUser(row)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find user by %s: %w", column, err)
		}
		user = u
		return nil
	})
	return user, err
}

// Taken reports whether a user already holds the username or email.
func (s *UserStore) Taken(ctx context.Context, username, email string) (bool, error) {
	var n int
	err := withConn(ctx, s.db, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM Users WHERE username = $1 OR email = $2`,
			username, email,
		).Scan(&n)
	})
	if err != nil {
		return false, fmt.Errorf("check user taken: %w", err)
	}
	return n > 0, nil
}

// Create inserts a new active user with a bcrypt-hashed password. u.Password
// holds the plaintext on input and the hash on return.
func (s *UserStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var created *models.User
	err = withConn(ctx, s.db, func(conn *sql.Conn) error {
		row := conn.QueryRowContext(ctx, `
			INSERT INTO Users (first_name, last_name, email, bio, username, password, profile_image_url, created_on, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)
			RETURNING `+userColumns,
			u.FirstName, u.LastName, u.Email, u.Bio, u.Username, string(hash),
			u.ProfileImageURL, time.Now().UTC().Format("2006-01-02"),
		)
		var err error
		created, err = scanUser(row)
		return err
	})
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create user %s: %w", u.Username, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}
