// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"time"

	"rare/internal/store"
)

// Posts serves the posts resource.
type Posts struct {
	posts *store.PostStore
	now   func() time.Time
}

// NewPosts creates the posts handler group.
func NewPosts(posts *store.PostStore) *Posts {
	return &Posts{posts: posts, now: time.Now}
}

// postFields are the columns a client writes on create and update.
type postFields struct {
	UserID          *int64     `json:"user_id" validate:"required"`
	CategoryID      nullableID `json:"category_id" validate:"required"`
	Title           *string    `json:"title" validate:"required"`
	PublicationDate *string    `json:"publication_date" validate:"required"`
	ImageURL        *string    `json:"image_url" validate:"required,http_url"`
	Content         *string    `json:"content" validate:"required"`
}

type postUpdate struct {
	postFields
	Approved *int64 `json:"approved" validate:"required"`
}

type postCreate struct {
	postFields
	Approved *int64  `json:"approved"`
	Tags     []int64 `json:"tags"`
}

func (f postFields) write(approved *int64) store.PostWrite {
	w := store.PostWrite{
		UserID:          *f.UserID,
		CategoryID:      f.CategoryID.Value,
		Title:           *f.Title,
		PublicationDate: *f.PublicationDate,
		ImageURL:        *f.ImageURL,
		Content:         *f.Content,
	}
	if approved != nil {
		w.Approved = *approved
	}
	return w
}

// PostUpdated is the body of a successful update.
type PostUpdated struct {
	Message string `json:"message"`
}

// PostCreated is the body of a successful create.
type PostCreated struct {
	ID int64 `json:"id"`
}

const (
	msgPostNotFound = "Post not found"
	msgBadReference = "user_id, category_id or tags refer to a record that does not exist"
)

// Get lists published posts, optionally by one author, or returns one post
// by id regardless of its approval state.
func (h *Posts) Get(ctx context.Context, req Request) Result {
	t := req.Expand()

	if req.HasPK {
		post, err := h.posts.FindByID(ctx, req.PK, t)
		if err != nil {
			return StorageFailure(err)
		}
		if post == nil {
			return Fail(KindNotFound, msgPostNotFound)
		}
		return Ok(post)
	}

	filter := store.PostFilter{Now: h.now()}
	userID, ok, err := req.QueryID("user_id")
	if err != nil {
		return Fail(KindClientInput, "user_id must be an integer")
	}
	if ok {
		filter.UserID = &userID
	}

	posts, err := h.posts.ListPublished(ctx, filter, t)
	if err != nil {
		return StorageFailure(err)
	}
	return Ok(posts)
}

// Create inserts a post and its tag links.
func (h *Posts) Create(ctx context.Context, req Request) Result {
	var in postCreate
	if err := req.decode(&in); err != nil {
		return bodyFailure(err)
	}
	if res, ok := check(&in); !ok {
		return res
	}

	id, err := h.posts.Create(ctx, in.write(in.Approved), in.Tags)
	if errors.Is(err, store.ErrInvalidReference) {
		return Fail(KindClientInput, msgBadReference)
	}
	if err != nil {
		return StorageFailure(err)
	}
	return Ok(PostCreated{ID: id})
}

// Update replaces every writable column of the post. Required fields are
// checked first, then the image URL, then the post's existence.
func (h *Posts) Update(ctx context.Context, req Request) Result {
	var in postUpdate
	if err := req.decode(&in); err != nil {
		return bodyFailure(err)
	}
	if res, ok := check(&in); !ok {
		return res
	}

	err := h.posts.Update(ctx, req.PK, in.write(in.Approved))
	switch {
	case errors.Is(err, store.ErrNotFound):
		return Fail(KindNotFound, msgPostNotFound)
	case errors.Is(err, store.ErrInvalidReference):
		return Fail(KindClientInput, msgBadReference)
	case err != nil:
		return StorageFailure(err)
	}
	return Ok(PostUpdated{Message: "Post updated successfully."})
}

// Delete removes the post. The success response has no body.
func (h *Posts) Delete(ctx context.Context, req Request) Result {
	err := h.posts.Delete(ctx, req.PK)
	if errors.Is(err, store.ErrNotFound) {
		return Fail(KindNotFound, msgPostNotFound)
	}
	if err != nil {
		return StorageFailure(err)
	}
	return Ok(nil)
}
