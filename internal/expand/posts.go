// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package expand

import (
	"rare/internal/models"
)

// Column aliases selected by PostPlan and read by AssemblePost.
const (
	postID              = "id"
	postUserID          = "user_id"
	postCategoryID      = "category_id"
	postTitle           = "title"
	postPublicationDate = "publication_date"
	postImageURL        = "image_url"
	postContent         = "content"
	postApproved        = "approved"
	postAuthor          = "author"

	postCatID    = "cat_id"
	postCatLabel = "cat_label"

	postUserObjID           = "user_obj_id"
	postUserFirstName       = "user_first_name"
	postUserLastName        = "user_last_name"
	postUserEmail           = "user_email"
	postUserBio             = "user_bio"
	postUserUsername        = "user_username"
	postUserProfileImageURL = "user_profile_image_url"
)

// PostTable is the FROM clause PostPlan's field expressions refer to.
const PostTable = "Posts p"

var postBaseFields = []FieldSpec{
	{"p.id", postID},
	{"p.user_id", postUserID},
	{"p.category_id", postCategoryID},
	{"p.title", postTitle},
	{"p.publication_date", postPublicationDate},
	{"p.image_url", postImageURL},
	{"p.content", postContent},
	{"p.approved", postApproved},
	{"u.first_name || ' ' || u.last_name", postAuthor},
}

// Every post has an author, so the Users join is inner; a post without one
// drops out of the result instead of producing a half-filled row.
var postAuthorJoin = JoinSpec{InnerJoin, "Users", "u", "p.user_id = u.id"}

// Posts may have no category: LEFT keeps the post and yields null cat_* columns.
var postCategory = relation{
	tokens: []string{TokenCategory},
	fields: []FieldSpec{
		{"c.id", postCatID},
		{"c.label", postCatLabel},
	},
	join: &JoinSpec{LeftJoin, "Categories", "c", "p.category_id = c.id"},
}

// The full user projection reuses the author join.
var postUser = relation{
	tokens: []string{TokenUser},
	fields: []FieldSpec{
		{"u.id", postUserObjID},
		{"u.first_name", postUserFirstName},
		{"u.last_name", postUserLastName},
		{"u.email", postUserEmail},
		{"u.bio", postUserBio},
		{"u.username", postUserUsername},
		{"u.profile_image_url", postUserProfileImageURL},
	},
}

// PostPlan returns the fields and joins for a posts query with the given
// expansions.
func PostPlan(t Tokens) Plan {
	return build(postBaseFields, postAuthorJoin, t, postCategory, postUser)
}

// AssemblePost builds a post from a row selected with PostPlan(t).
func AssemblePost(row Row, t Tokens) (models.Post, error) {
	r := newReader(row)
	p := assemblePost(r, t)
	return p, r.err
}

func assemblePost(r *reader, t Tokens) models.Post {
	p := models.Post{
		ID:              r.int64(postID),
		UserID:          r.int64(postUserID),
		CategoryID:      r.nullInt64(postCategoryID),
		Title:           r.string(postTitle),
		PublicationDate: r.string(postPublicationDate),
		ImageURL:        r.string(postImageURL),
		Content:         r.string(postContent),
		Approved:        r.int64(postApproved),
		Author:          r.string(postAuthor),
	}

	if t.HasAny(postCategory.tokens...) {
		p.Category = &models.CategoryRef{
			ID:    r.nullInt64(postCatID),
			Label: r.nullString(postCatLabel),
		}
	}

	if t.HasAny(postUser.tokens...) {
		p.User = &models.UserRef{
			ID:              r.int64(postUserObjID),
			FirstName:       r.string(postUserFirstName),
			LastName:        r.string(postUserLastName),
			Email:           r.string(postUserEmail),
			Bio:             r.string(postUserBio),
			Username:        r.string(postUserUsername),
			ProfileImageURL: r.string(postUserProfileImageURL),
		}
	}

	return p
}
