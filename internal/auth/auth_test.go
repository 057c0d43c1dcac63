// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rare/internal/database/databasetest"
	"rare/internal/models"
	"rare/internal/store"
)

const testSecret = "test-secret"

func newService(t *testing.T) (*Service, *store.UserStore) {
	t.Helper()
	users := store.NewUserStore(databasetest.SQLite(t))
	return NewService(users, testSecret, time.Hour), users
}

func registration(username string) Registration {
	return Registration{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     username + "@example.com",
		Username:  username,
		Password:  "cobol",
	}
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	out, err := svc.Register(ctx, registration("grace"))
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.NotZero(t, out.UserID)
	require.NotEmpty(t, out.Token)

	claims, err := svc.Verify(out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.UserID, claims.UserID)
	assert.Equal(t, "grace", claims.Username)

	login, err := svc.Login(ctx, Credentials{Username: "grace", Password: "cobol"})
	require.NoError(t, err)
	assert.True(t, login.Valid)
	assert.Equal(t, out.UserID, login.UserID)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registration("grace"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registration("grace"))
	assert.ErrorIs(t, err, ErrTaken)

	sameEmail := registration("other")
	sameEmail.Email = "grace@example.com"
	_, err = svc.Register(ctx, sameEmail)
	assert.ErrorIs(t, err, ErrTaken)
}

func TestLoginInvalid(t *testing.T) {
	svc, users := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registration("grace"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		creds Credentials
	}{
		{"unknown user", Credentials{Username: "nobody", Password: "cobol"}},
		{"wrong password", Credentials{Username: "grace", Password: "fortran"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := svc.Login(ctx, tt.creds)
			require.NoError(t, err)
			assert.False(t, out.Valid)
			assert.Empty(t, out.Token)
		})
	}

	// A deactivated account cannot sign in even with the right password.
	u, err := users.FindByUsername(ctx, "grace")
	require.NoError(t, err)
	require.NotNil(t, u)
	u.Active = false
	stub := &inactiveStore{UserStore: users, user: u}
	out, err := NewService(stub, testSecret, time.Hour).Login(ctx, Credentials{Username: "grace", Password: "cobol"})
	require.NoError(t, err)
	assert.False(t, out.Valid)
}

// inactiveStore returns a fixed user from FindByUsername.
type inactiveStore struct {
	*store.UserStore
	user *models.User
}

func (s *inactiveStore) FindByUsername(context.Context, string) (*models.User, error) {
	return s.user, nil
}

// staleTakenStore never sees existing accounts in Taken, as when two
// registrations for the same name run concurrently.
type staleTakenStore struct {
	*store.UserStore
}

func (staleTakenStore) Taken(context.Context, string, string) (bool, error) {
	return false, nil
}

func TestRegisterRaceReportsTaken(t *testing.T) {
	_, users := newService(t)
	svc := NewService(staleTakenStore{users}, testSecret, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, registration("grace"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registration("grace"))
	assert.ErrorIs(t, err, ErrTaken)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, err := IssueToken([]byte(testSecret), 7, "ada", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken([]byte("other-secret"), token)
	assert.Error(t, err)

	claims, err := ParseToken([]byte(testSecret), token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestTokenExpires(t *testing.T) {
	token, err := IssueToken([]byte(testSecret), 7, "ada", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken([]byte(testSecret), token)
	assert.Error(t, err)
}
