// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures exchanged with the storage
// layer and serialized on the wire.
package models

// User is a registered author. The password hash never leaves the server.
type User struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Bio             string `json:"bio"`
	Username        string `json:"username"`
	Password        string `json:"-"`
	ProfileImageURL string `json:"profile_image_url"`
	CreatedOn       string `json:"created_on"`
	Active          bool   `json:"active"`
}

// Category labels posts. A post has at most one.
type Category struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// Tag is attached to posts through PostTags.
type Tag struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// Post is the wire shape of a post. The base fields are always present;
// Category and User are populated only when the matching expansion was
// requested.
type Post struct {
	ID              int64  `json:"id"`
	UserID          int64  `json:"user_id"`
	CategoryID      *int64 `json:"category_id"`
	Title           string `json:"title"`
	PublicationDate string `json:"publication_date"`
	ImageURL        string `json:"image_url"`
	Content         string `json:"content"`
	// Approved is the storage value (0 or 1), not a boolean.
	Approved int64  `json:"approved"`
	Author   string `json:"author"`

	Category *CategoryRef `json:"category,omitempty"`
	User     *UserRef     `json:"user,omitempty"`
}

// CategoryRef is an embedded category. Both fields are null when the post
// has no category.
type CategoryRef struct {
	ID    *int64  `json:"id"`
	Label *string `json:"label"`
}

// UserRef is the public projection of a user embedded in posts and comments.
type UserRef struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Bio             string `json:"bio"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
}

// Comment is the wire shape of a comment with optional embedded author and post.
type Comment struct {
	ID              int64  `json:"id"`
	PostID          int64  `json:"post_id"`
	AuthorID        int64  `json:"author_id"`
	Content         string `json:"content"`
	PublicationDate string `json:"publication_date"`

	Author *UserRef `json:"author,omitempty"`
	Post   *PostRef `json:"post,omitempty"`
}

// PostRef is a post embedded in a comment. Unlike Post, Approved is a real
// boolean here.
type PostRef struct {
	ID              int64  `json:"id"`
	UserID          int64  `json:"user_id"`
	CategoryID      *int64 `json:"category_id"`
	Title           string `json:"title"`
	PublicationDate string `json:"publication_date"`
	ImageURL        string `json:"image_url"`
	Content         string `json:"content"`
	Approved        bool   `json:"approved"`
}
