// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth implements the login and registration calls of the API:
// bcrypt-checked credentials in, a signed session token out.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rare/internal/models"
	"rare/internal/store"
)

// ErrTaken is returned by Register when the username or email is in use.
var ErrTaken = errors.New("username or email already registered")

// UserStore is the subset of the user store the service needs.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Taken(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, u *models.User) (*models.User, error)
	CheckPassword(u *models.User, password string) bool
}

// Service issues tokens for valid credentials and new accounts.
type Service struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
}

// NewService returns a Service signing tokens with secret.
func NewService(users UserStore, secret string, ttl time.Duration) *Service {
	return &Service{users: users, secret: []byte(secret), ttl: ttl}
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration is the register request body.
type Registration struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"required,min=4"`
	Bio             string `json:"bio"`
	ProfileImageURL string `json:"profile_image_url" validate:"omitempty,http_url"`
}

// Outcome is returned by both calls. Token is set only when Valid.
type Outcome struct {
	Valid  bool   `json:"valid"`
	Token  string `json:"token,omitempty"`
	UserID int64  `json:"user_id,omitempty"`
}

// Login checks the credentials. Unknown users, wrong passwords and
// deactivated accounts all yield Valid == false with a nil error.
func (s *Service) Login(ctx context.Context, c Credentials) (Outcome, error) {
	user, err := s.users.FindByUsername(ctx, c.Username)
	if err != nil {
		return Outcome{}, fmt.Errorf("login: %w", err)
	}
	if user == nil || !user.Active || !s.users.CheckPassword(user, c.Password) {
		return Outcome{Valid: false}, nil
	}
	return s.outcome(user)
}

// Register creates the account and signs it in.
func (s *Service) Register(ctx context.Context, r Registration) (Outcome, error) {
	taken, err := s.users.Taken(ctx, r.Username, r.Email)
	if err != nil {
		return Outcome{}, fmt.Errorf("register: %w", err)
	}
	if taken {
		return Outcome{}, ErrTaken
	}

	user, err := s.users.Create(ctx, &models.User{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Bio:             r.Bio,
		Username:        r.Username,
		Password:        r.Password,
		ProfileImageURL: r.ProfileImageURL,
	})
	// A concurrent registration can claim the name between Taken and Create.
	if errors.Is(err, store.ErrDuplicate) {
		return Outcome{}, ErrTaken
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("register: %w", err)
	}
	return s.outcome(user)
}

// Verify parses a token previously issued by this service.
func (s *Service) Verify(token string) (*Claims, error) {
	return ParseToken(s.secret, token)
}

func (s *Service) outcome(u *models.User) (Outcome, error) {
	token, err := IssueToken(s.secret, u.ID, u.Username, s.ttl)
	if err != nil {
		return Outcome{}, fmt.Errorf("sign token: %w", err)
	}
	return Outcome{Valid: true, Token: token, UserID: u.ID}, nil
}
