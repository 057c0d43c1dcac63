// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"

	"rare/internal/auth"
	"rare/internal/store"
)

// Users serves the users resource.
type Users struct {
	users *store.UserStore
}

// NewUsers creates the users handler group.
func NewUsers(users *store.UserStore) *Users {
	return &Users{users: users}
}

// Get lists all users or returns one by id.
func (h *Users) Get(ctx context.Context, req Request) Result {
	if req.HasPK {
		user, err := h.users.FindByID(ctx, req.PK)
		if err != nil {
			return StorageFailure(err)
		}
		if user == nil {
			return Fail(KindNotFound, "User not found")
		}
		return Ok(user)
	}

	users, err := h.users.List(ctx)
	if err != nil {
		return StorageFailure(err)
	}
	return Ok(users)
}

// Categories serves the categories resource.
type Categories struct {
	categories *store.CategoryStore
}

// NewCategories creates the categories handler group.
func NewCategories(categories *store.CategoryStore) *Categories {
	return &Categories{categories: categories}
}

type categoryInput struct {
	Label string `json:"label" validate:"required"`
}

// Get lists all categories or returns one by id. An empty table is
// reported as not found.
func (h *Categories) Get(ctx context.Context, req Request) Result {
	if req.HasPK {
		c, err := h.categories.FindByID(ctx, req.PK)
		if err != nil {
			return StorageFailure(err)
		}
		if c == nil {
			return Fail(KindNotFound, "Category not found")
		}
		return Ok(c)
	}

	all, err := h.categories.List(ctx)
	if err != nil {
		return StorageFailure(err)
	}
	if len(all) == 0 {
		return Fail(KindNotFound, "No categories found")
	}
	return Ok(all)
}

// Create adds a category and echoes it back with its id.
func (h *Categories) Create(ctx context.Context, req Request) Result {
	var in categoryInput
	if err := req.decode(&in); err != nil {
		return bodyFailure(err)
	}
	if res, ok := check(&in); !ok {
		return res
	}

	c, err := h.categories.Create(ctx, in.Label)
	if err != nil {
		return StorageFailure(err)
	}
	return Ok(c)
}

// Comments serves the comments resource.
type Comments struct {
	comments *store.CommentStore
}

// NewComments creates the comments handler group.
func NewComments(comments *store.CommentStore) *Comments {
	return &Comments{comments: comments}
}

type commentInput struct {
	PostID   *int64  `json:"post_id" validate:"required"`
	AuthorID *int64  `json:"author_id" validate:"required"`
	Content  *string `json:"content" validate:"required"`
}

// List returns the comments of the post named by the post_id query
// parameter, which is mandatory.
func (h *Comments) List(ctx context.Context, req Request) Result {
	postID, ok, err := req.QueryID("post_id")
	if !ok {
		return Fail(KindClientInput, "post_id query parameter is required")
	}
	if err != nil {
		return Fail(KindClientInput, "post_id must be an integer")
	}

	comments, err := h.comments.ListByPost(ctx, postID, req.Expand())
	if err != nil {
		return StorageFailure(err)
	}
	return Ok(comments)
}

// Create adds a comment dated now.
func (h *Comments) Create(ctx context.Context, req Request) Result {
	var in commentInput
	if err := req.decode(&in); err != nil {
		return bodyFailure(err)
	}
	if res, ok := check(&in); !ok {
		return res
	}

	c, err := h.comments.Create(ctx, *in.PostID, *in.AuthorID, *in.Content)
	if errors.Is(err, store.ErrInvalidReference) {
		return Fail(KindClientInput, "post_id or author_id refer to a record that does not exist")
	}
	if err != nil {
		return StorageFailure(err)
	}
	return Ok(c)
}

// Tags serves the tags resource.
type Tags struct {
	tags *store.TagStore
}

// NewTags creates the tags handler group.
func NewTags(tags *store.TagStore) *Tags {
	return &Tags{tags: tags}
}

// List returns every tag.
func (h *Tags) List(ctx context.Context, _ Request) Result {
	tags, err := h.tags.List(ctx)
	if err != nil {
		return StorageFailure(err)
	}
	return Ok(tags)
}

// Auth exposes login and registration.
type Auth struct {
	svc *auth.Service
}

// NewAuth creates the auth handler group.
func NewAuth(svc *auth.Service) *Auth {
	return &Auth{svc: svc}
}

// Login answers {"valid": false} for bad credentials rather than failing.
func (h *Auth) Login(ctx context.Context, req Request) Result {
	var in auth.Credentials
	if err := req.decode(&in); err != nil {
		return bodyFailure(err)
	}
	if res, ok := check(&in); !ok {
		return res
	}

	out, err := h.svc.Login(ctx, in)
	if err != nil {
		return StorageFailure(err)
	}
	return Ok(out)
}

// Register creates an account and returns a token for it.
func (h *Auth) Register(ctx context.Context, req Request) Result {
	var in auth.Registration
	if err := req.decode(&in); err != nil {
		return bodyFailure(err)
	}
	if res, ok := check(&in); !ok {
		return res
	}

	out, err := h.svc.Register(ctx, in)
	if errors.Is(err, auth.ErrTaken) {
		return Fail(KindClientInput, "Username or email is already registered")
	}
	if err != nil {
		return StorageFailure(err)
	}
	return Ok(out)
}
