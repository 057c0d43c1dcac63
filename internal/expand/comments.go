// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package expand

import (
	"rare/internal/models"
)

// Column aliases selected by CommentPlan and read by AssembleComment.
const (
	commentID              = "id"
	commentPostID          = "post_id"
	commentAuthorID        = "author_id"
	commentContent         = "content"
	commentPublicationDate = "publication_date"

	commentAuthorObjID           = "author_obj_id"
	commentAuthorFirstName       = "author_first_name"
	commentAuthorLastName        = "author_last_name"
	commentAuthorEmail           = "author_email"
	commentAuthorBio             = "author_bio"
	commentAuthorUsername        = "author_username"
	commentAuthorProfileImageURL = "author_profile_image_url"

	commentPostObjID           = "post_obj_id"
	commentPostUserID          = "post_user_id"
	commentPostCategoryID      = "post_category_id"
	commentPostTitle           = "post_title"
	commentPostPublicationDate = "post_publication_date"
	commentPostImageURL        = "post_image_url"
	commentPostContent         = "post_content"
	commentPostApproved        = "post_approved"
)

// CommentTable is the FROM clause CommentPlan's field expressions refer to.
const CommentTable = "Comments c"

var commentBaseFields = []FieldSpec{
	{"c.id", commentID},
	{"c.post_id", commentPostID},
	{"c.author_id", commentAuthorID},
	{"c.content", commentContent},
	{"c.publication_date", commentPublicationDate},
}

var commentAuthorJoin = JoinSpec{InnerJoin, "Users", "u", "c.author_id = u.id"}

// "author" and "user" are synonyms for the same expansion.
var commentAuthor = relation{
	tokens: []string{TokenAuthor, TokenUser},
	fields: []FieldSpec{
		{"u.id", commentAuthorObjID},
		{"u.first_name", commentAuthorFirstName},
		{"u.last_name", commentAuthorLastName},
		{"u.email", commentAuthorEmail},
		{"u.bio", commentAuthorBio},
		{"u.username", commentAuthorUsername},
		{"u.profile_image_url", commentAuthorProfileImageURL},
	},
}

// A comment always belongs to a post, so the join is inner.
var commentPost = relation{
	tokens: []string{TokenPost},
	fields: []FieldSpec{
		{"p.id", commentPostObjID},
		{"p.user_id", commentPostUserID},
		{"p.category_id", commentPostCategoryID},
		{"p.title", commentPostTitle},
		{"p.publication_date", commentPostPublicationDate},
		{"p.image_url", commentPostImageURL},
		{"p.content", commentPostContent},
		{"p.approved", commentPostApproved},
	},
	join: &JoinSpec{InnerJoin, "Posts", "p", "c.post_id = p.id"},
}

// CommentPlan returns the fields and joins for a comments query with the
// given expansions.
func CommentPlan(t Tokens) Plan {
	return build(commentBaseFields, commentAuthorJoin, t, commentAuthor, commentPost)
}

// AssembleComment builds a comment from a row selected with CommentPlan(t).
func AssembleComment(row Row, t Tokens) (models.Comment, error) {
	r := newReader(row)
	c := assembleComment(r, t)
	return c, r.err
}

func assembleComment(r *reader, t Tokens) models.Comment {
	c := models.Comment{
		ID:              r.int64(commentID),
		PostID:          r.int64(commentPostID),
		AuthorID:        r.int64(commentAuthorID),
		Content:         r.string(commentContent),
		PublicationDate: r.string(commentPublicationDate),
	}

	if t.HasAny(commentAuthor.tokens...) {
		c.Author = &models.UserRef{
			ID:              r.int64(commentAuthorObjID),
			FirstName:       r.string(commentAuthorFirstName),
			LastName:        r.string(commentAuthorLastName),
			Email:           r.string(commentAuthorEmail),
			Bio:             r.string(commentAuthorBio),
			Username:        r.string(commentAuthorUsername),
			ProfileImageURL: r.string(commentAuthorProfileImageURL),
		}
	}

	if t.HasAny(commentPost.tokens...) {
		c.Post = &models.PostRef{
			ID:              r.int64(commentPostObjID),
			UserID:          r.int64(commentPostUserID),
			CategoryID:      r.nullInt64(commentPostCategoryID),
			Title:           r.string(commentPostTitle),
			PublicationDate: r.string(commentPostPublicationDate),
			ImageURL:        r.string(commentPostImageURL),
			Content:         r.string(commentPostContent),
			Approved:        r.bool(commentPostApproved),
		}
	}

	return c
}
