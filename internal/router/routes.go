// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package router

import (
	"net/http"

	"rare/internal/handlers"
)

// pkRule says how a route treats the id segment.
type pkRule int

const (
	// pkOptional routes branch on the id themselves.
	pkOptional pkRule = iota
	// pkRequired routes answer 404 without an id.
	pkRequired
	// pkForbidden routes answer 404 when an id is given.
	pkForbidden
)

type routeKey struct {
	method   string
	resource string
}

type route struct {
	handler handlers.Func
	pk      pkRule
	status  int
	// limited routes spend the client's auth rate limit budget.
	limited bool
}

// Handlers are the resource handler groups the table dispatches to.
type Handlers struct {
	Users      *handlers.Users
	Posts      *handlers.Posts
	Categories *handlers.Categories
	Comments   *handlers.Comments
	Tags       *handlers.Tags
	Auth       *handlers.Auth
}

// routeTable is the complete (method, resource) surface of the API. Any
// pair missing here is a 404.
func routeTable(h Handlers) map[routeKey]route {
	return map[routeKey]route{
		{http.MethodGet, "users"}:      {h.Users.Get, pkOptional, http.StatusOK, false},
		{http.MethodGet, "posts"}:      {h.Posts.Get, pkOptional, http.StatusOK, false},
		{http.MethodGet, "categories"}: {h.Categories.Get, pkOptional, http.StatusOK, false},
		{http.MethodGet, "comments"}:   {h.Comments.List, pkForbidden, http.StatusOK, false},
		{http.MethodGet, "tags"}:       {h.Tags.List, pkForbidden, http.StatusOK, false},

		{http.MethodPost, "login"}:      {h.Auth.Login, pkForbidden, http.StatusOK, true},
		{http.MethodPost, "register"}:   {h.Auth.Register, pkForbidden, http.StatusCreated, true},
		{http.MethodPost, "categories"}: {h.Categories.Create, pkForbidden, http.StatusCreated, false},
		{http.MethodPost, "posts"}:      {h.Posts.Create, pkForbidden, http.StatusCreated, false},
		{http.MethodPost, "comments"}:   {h.Comments.Create, pkForbidden, http.StatusCreated, false},

		{http.MethodPut, "posts"}:    {h.Posts.Update, pkRequired, http.StatusOK, false},
		{http.MethodDelete, "posts"}: {h.Posts.Delete, pkRequired, http.StatusNoContent, false},
	}
}

// statusFor maps a failure kind to its HTTP status.
func statusFor(k handlers.Kind) int {
	switch k {
	case handlers.KindClientInput, handlers.KindValidation:
		return http.StatusBadRequest
	case handlers.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
