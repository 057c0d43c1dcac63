// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package router

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rare/internal/auth"
	"rare/internal/database"
	"rare/internal/database/databasetest"
	"rare/internal/handlers"
	"rare/internal/middleware"
	"rare/internal/store"
)

func TestHealthHandler(t *testing.T) {
	db := databasetest.SQLite(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(db)(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestHealthHandlerDatabaseDown(t *testing.T) {
	db := databasetest.SQLite(t)
	db.Close()

	w := httptest.NewRecorder()
	healthHandler(db)(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", w.Code)
	}
}

// server is a fully wired router over a seeded database.
type server struct {
	t       *testing.T
	db      *sql.DB
	handler http.Handler
	limiter *middleware.RateLimiter
}

func newServer(t *testing.T) *server {
	t.Helper()
	limiter := middleware.NewRateLimiter(1000, time.Minute)
	t.Cleanup(limiter.Stop)
	return newServerWithLimiter(t, limiter)
}

func newServerWithLimiter(t *testing.T, limiter *middleware.RateLimiter) *server {
	t.Helper()
	db := databasetest.SQLite(t)
	require.NoError(t, database.Seed(db))

	users := store.NewUserStore(db)
	d := NewDispatcher(Handlers{
		Users:      handlers.NewUsers(users),
		Posts:      handlers.NewPosts(store.NewPostStore(db)),
		Categories: handlers.NewCategories(store.NewCategoryStore(db)),
		Comments:   handlers.NewComments(store.NewCommentStore(db)),
		Tags:       handlers.NewTags(store.NewTagStore(db)),
		Auth:       handlers.NewAuth(auth.NewService(users, "test-secret", time.Hour)),
	}, limiter)

	return &server{t: t, db: db, handler: New(db, d), limiter: limiter}
}

func (s *server) do(method, target, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func (s *server) postID(title string) int64 {
	s.t.Helper()
	var id int64
	require.NoError(s.t, s.db.QueryRow(`SELECT id FROM Posts WHERE title = $1`, title).Scan(&id))
	return id
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

const (
	titleWithCategory = "Notes on the Analytical Engine"
	titleNoCategory   = "Computing Machinery and Intelligence"
	titleUnapproved   = "Draft: awaiting review"
	titleFuture       = "Scheduled post"
)

func TestEnvelopeHeaders(t *testing.T) {
	s := newServer(t)

	for _, target := range []string{"/posts", "/nope", "/users/1", "/comments"} {
		w := s.do(http.MethodGet, target, "")
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"), target)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"), target)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader), target)
	}
}

func TestOptionsAnyPath(t *testing.T) {
	s := newServer(t)

	for _, target := range []string{"/posts/1", "/login", "/whatever/else"} {
		w := s.do(http.MethodOptions, target, "")
		assert.Equal(t, http.StatusOK, w.Code, target)
		assert.Empty(t, w.Body.String(), target)
		assert.Equal(t, "GET, POST, PUT, DELETE", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "X-Requested-With, Content-Type, Accept", w.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestUnmatchedRoutes(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/"},
		{http.MethodGet, "/unknown"},
		{http.MethodGet, "/login"},
		{http.MethodPatch, "/posts/1"},
		{http.MethodDelete, "/users/1"},
		{http.MethodPut, "/categories/1"},
		{http.MethodPost, "/users"},
		{http.MethodPut, "/posts"},
		{http.MethodDelete, "/posts"},
		{http.MethodPost, "/categories/3"},
		{http.MethodPost, "/health"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := s.do(tt.method, tt.target, `{}`)
			assert.Equal(t, http.StatusNotFound, w.Code)
			body := decode[handlers.ErrorBody](t, w)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestListPostsHidesUnpublished(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, w.Code)

	posts := decode[[]map[string]any](t, w)
	titles := map[string]bool{}
	for _, p := range posts {
		titles[p["title"].(string)] = true
		assert.EqualValues(t, 1, p["approved"])
	}
	assert.True(t, titles[titleWithCategory])
	assert.True(t, titles[titleNoCategory])
	assert.False(t, titles[titleUnapproved])
	assert.False(t, titles[titleFuture])
}

func TestListPostsByUser(t *testing.T) {
	s := newServer(t)

	var alan int64
	require.NoError(t, s.db.QueryRow(`SELECT id FROM Users WHERE username = 'alan'`).Scan(&alan))

	w := s.do(http.MethodGet, fmt.Sprintf("/posts?user_id=%d", alan), "")
	require.Equal(t, http.StatusOK, w.Code)
	posts := decode[[]map[string]any](t, w)
	require.Len(t, posts, 1)
	assert.Equal(t, titleNoCategory, posts[0]["title"])

	bad := s.do(http.MethodGet, "/posts?user_id=alan", "")
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestExpansionIsMonotonic(t *testing.T) {
	s := newServer(t)

	for _, title := range []string{titleWithCategory, titleNoCategory} {
		target := fmt.Sprintf("/posts/%d", s.postID(title))
		plain := decode[map[string]any](t, s.do(http.MethodGet, target, ""))
		expanded := decode[map[string]any](t, s.do(http.MethodGet, target+"?_expand=category", ""))

		for k := range plain {
			assert.Contains(t, expanded, k, title)
		}
		assert.Greater(t, len(expanded), len(plain), title)
		require.Contains(t, expanded, "category")
	}

	noCat := decode[map[string]any](t, s.do(http.MethodGet, fmt.Sprintf("/posts/%d?_expand=category", s.postID(titleNoCategory)), ""))
	assert.Equal(t, map[string]any{"id": nil, "label": nil}, noCat["category"])
}

func TestExpandUserAndCategoryTogether(t *testing.T) {
	s := newServer(t)
	target := fmt.Sprintf("/posts/%d?_expand=user&_expand=category", s.postID(titleWithCategory))

	post := decode[map[string]any](t, s.do(http.MethodGet, target, ""))
	user := post["user"].(map[string]any)
	assert.Equal(t, "ada", user["username"])
	assert.NotContains(t, user, "password")
	assert.Equal(t, "Tech", post["category"].(map[string]any)["label"])
	assert.Equal(t, "Ada Lovelace", post["author"])
}

func TestGetUnknownPost(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/posts/9999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post not found", decode[handlers.ErrorBody](t, w).Error)
}

func TestUpdatePost(t *testing.T) {
	s := newServer(t)
	id := s.postID(titleUnapproved)

	var user int64
	require.NoError(t, s.db.QueryRow(`SELECT user_id FROM Posts WHERE id = $1`, id).Scan(&user))

	full := func(imageURL string) string {
		return fmt.Sprintf(`{"user_id": %d, "category_id": null, "title": "Reviewed",
			"publication_date": "2024-01-01", "image_url": %q, "content": "Done.", "approved": 1}`, user, imageURL)
	}

	t.Run("missing content", func(t *testing.T) {
		w := s.do(http.MethodPut, fmt.Sprintf("/posts/%d", id),
			fmt.Sprintf(`{"user_id": %d, "category_id": 1, "title": "x", "publication_date": "2024-01-01",
				"image_url": "https://x.example/a.png", "approved": 1}`, user))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode[handlers.ErrorBody](t, w).Error, "content")
	})

	t.Run("ftp url", func(t *testing.T) {
		w := s.do(http.MethodPut, fmt.Sprintf("/posts/%d", id), full("ftp://x"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode[handlers.ErrorBody](t, w).Error, "URL")
	})

	t.Run("missing post", func(t *testing.T) {
		w := s.do(http.MethodPut, "/posts/9999", full("https://x.example/a.png"))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Post not found", decode[handlers.ErrorBody](t, w).Error)
	})

	t.Run("success", func(t *testing.T) {
		w := s.do(http.MethodPut, fmt.Sprintf("/posts/%d", id), full("https://x.example/a.png"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Post updated successfully.", decode[map[string]string](t, w)["message"])

		// Approved and in the past: now part of the public listing.
		posts := decode[[]map[string]any](t, s.do(http.MethodGet, "/posts", ""))
		var found bool
		for _, p := range posts {
			if p["title"] == "Reviewed" {
				found = true
			}
		}
		assert.True(t, found)
	})
}

func TestDeletePost(t *testing.T) {
	s := newServer(t)

	missing := s.do(http.MethodDelete, "/posts/9999", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, handlers.ErrorBody{Error: "Post not found"}, decode[handlers.ErrorBody](t, missing))

	id := s.postID(titleWithCategory)
	w := s.do(http.MethodDelete, fmt.Sprintf("/posts/%d", id), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	after := s.do(http.MethodGet, fmt.Sprintf("/posts/%d", id), "")
	assert.Equal(t, http.StatusNotFound, after.Code)
}

func TestCommentsApprovedAsymmetry(t *testing.T) {
	s := newServer(t)
	id := s.postID(titleWithCategory)

	w := s.do(http.MethodGet, fmt.Sprintf("/comments?post_id=%d&_expand=post&_expand=author", id), "")
	require.Equal(t, http.StatusOK, w.Code)
	comments := decode[[]map[string]any](t, w)
	require.Len(t, comments, 2)
	for _, c := range comments {
		post := c["post"].(map[string]any)
		assert.Equal(t, true, post["approved"], "nested approved must be a JSON boolean")
		assert.Contains(t, c, "author")
	}

	post := decode[map[string]any](t, s.do(http.MethodGet, fmt.Sprintf("/posts/%d", id), ""))
	assert.Equal(t, float64(1), post["approved"], "post approved stays numeric")

	missing := s.do(http.MethodGet, "/comments", "")
	assert.Equal(t, http.StatusBadRequest, missing.Code)
	assert.NotEmpty(t, decode[handlers.ErrorBody](t, missing).Error)
}

func TestCreateComment(t *testing.T) {
	s := newServer(t)
	id := s.postID(titleNoCategory)

	w := s.do(http.MethodPost, "/comments", fmt.Sprintf(`{"post_id": %d, "author_id": 1, "content": "Nice."}`, id))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	list := decode[[]map[string]any](t, s.do(http.MethodGet, fmt.Sprintf("/comments?post_id=%d", id), ""))
	require.Len(t, list, 1)
	assert.Equal(t, "Nice.", list[0]["content"])
}

func TestCategoriesRoundTrip(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/categories", `{"label":"Science"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[map[string]any](t, w)
	assert.Equal(t, "Science", created["label"])
	assert.Len(t, created, 2)

	got := s.do(http.MethodGet, fmt.Sprintf("/categories/%v", created["id"]), "")
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, created, decode[map[string]any](t, got))

	missing := s.do(http.MethodGet, "/categories/9999", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "Category not found", decode[handlers.ErrorBody](t, missing).Error)

	all := decode[[]map[string]any](t, s.do(http.MethodGet, "/categories", ""))
	assert.Len(t, all, 4)
}

func TestCreatePostWithTags(t *testing.T) {
	s := newServer(t)

	body := `{"user_id": 1, "category_id": 2, "title": "Tagged", "publication_date": "2024-03-03",
		"image_url": "https://x.example/t.png", "content": "c", "approved": 1, "tags": [1, 2]}`
	w := s.do(http.MethodPost, "/posts", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := int64(decode[map[string]float64](t, w)["id"])

	var links int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM PostTags WHERE post_id = $1`, id).Scan(&links))
	assert.Equal(t, 2, links)

	bad := s.do(http.MethodPost, "/posts", `{"user_id": 1, "category_id": null, "title": "x",
		"publication_date": "2024-03-03", "image_url": "https://x.example/t.png", "content": "c", "tags": [999]}`)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestUsersAndTags(t *testing.T) {
	s := newServer(t)

	users := decode[[]map[string]any](t, s.do(http.MethodGet, "/users", ""))
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotContains(t, u, "password")
	}

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/users/9999", "").Code)

	tags := decode[[]map[string]any](t, s.do(http.MethodGet, "/tags", ""))
	assert.Len(t, tags, 3)
}

func TestLoginAndRegister(t *testing.T) {
	s := newServer(t)

	ok := s.do(http.MethodPost, "/login", `{"username":"ada","password":"rare"}`)
	require.Equal(t, http.StatusOK, ok.Code)
	out := decode[map[string]any](t, ok)
	assert.Equal(t, true, out["valid"])
	assert.NotEmpty(t, out["token"])

	bad := s.do(http.MethodPost, "/login", `{"username":"ada","password":"wrong"}`)
	require.Equal(t, http.StatusOK, bad.Code)
	assert.Equal(t, map[string]any{"valid": false}, decode[map[string]any](t, bad))

	reg := s.do(http.MethodPost, "/register", `{"first_name":"Grace","last_name":"Hopper",
		"email":"grace@rare.local","username":"grace","password":"cobol"}`)
	require.Equal(t, http.StatusCreated, reg.Code, reg.Body.String())
	assert.Equal(t, true, decode[map[string]any](t, reg)["valid"])

	dup := s.do(http.MethodPost, "/register", `{"first_name":"Grace","last_name":"Hopper",
		"email":"grace@rare.local","username":"grace","password":"cobol"}`)
	assert.Equal(t, http.StatusBadRequest, dup.Code)

	malformed := s.do(http.MethodPost, "/login", `not json`)
	assert.Equal(t, http.StatusBadRequest, malformed.Code)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(2, time.Minute)
	defer limiter.Stop()
	s := newServerWithLimiter(t, limiter)

	login := `{"username":"x","password":"y"}`
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, s.do(http.MethodPost, "/login", login).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Other spellings of the path share the same budget.
	for _, target := range []string{"/login/", "//login", "/login?x=1", "/login/0"} {
		w := s.do(http.MethodPost, target, login)
		if target == "/login/0" {
			// A pk on login is not a route at all.
			assert.Equal(t, http.StatusNotFound, w.Code, target)
			continue
		}
		assert.Equal(t, http.StatusTooManyRequests, w.Code, target)
		assert.Equal(t, "Too Many Requests", decode[handlers.ErrorBody](t, w).Error, target)
	}

	// register has its own budget.
	reg := `{"first_name":"Grace","last_name":"Hopper","email":"grace@rare.local","username":"grace","password":"cobol"}`
	assert.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/register/", reg).Code)

	// Other routes are not limited.
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/tags", "").Code)
	}
}

func TestStorageFailureIsGeneric(t *testing.T) {
	s := newServer(t)
	s.db.Close()

	w := s.do(http.MethodGet, "/posts", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", decode[handlers.ErrorBody](t, w).Error)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	s.do(http.MethodGet, "/posts", "")

	w := s.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rare_http_requests_total")
}

func TestOversizedBody(t *testing.T) {
	s := newServer(t)

	big := `{"label":"` + string(bytes.Repeat([]byte("a"), maxBodyBytes+1)) + `"}`
	w := s.do(http.MethodPost, "/categories", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
