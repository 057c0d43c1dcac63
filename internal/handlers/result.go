// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the resource handlers behind the dispatch
// table. A handler never writes to the response: it returns a Result and
// the dispatcher turns it into a status code and a JSON body.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"reflect"
	"strconv"

	"rare/internal/expand"
)

// Kind classifies a failed Result.
type Kind int

const (
	// KindNone marks a successful Result.
	KindNone Kind = iota
	// KindClientInput is a missing or malformed request field.
	KindClientInput
	// KindValidation is a present but ill-formed field, such as a bad URL.
	KindValidation
	// KindNotFound is a missing resource or id.
	KindNotFound
	// KindStorage is a data-access failure. Its message is generic; the
	// cause is kept in Err for logging.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindClientInput:
		return "client_input"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Result is what every handler returns: either a payload or a failure.
type Result struct {
	Payload any
	Kind    Kind
	Message string
	Err     error
}

// Ok wraps a successful payload. A nil payload means no response body.
func Ok(payload any) Result {
	return Result{Payload: payload}
}

// Fail builds a failed Result with a user-visible message.
func Fail(kind Kind, message string) Result {
	return Result{Kind: kind, Message: message}
}

// StorageFailure hides err behind a generic message.
func StorageFailure(err error) Result {
	return Result{Kind: KindStorage, Message: "Internal Server Error", Err: err}
}

// Failed reports whether the Result carries an error.
func (r Result) Failed() bool {
	return r.Kind != KindNone
}

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Error string `json:"error"`
}

// Func is the signature shared by all resource handlers.
type Func func(ctx context.Context, req Request) Result

// Request is the parsed input a handler sees.
type Request struct {
	PK    int64
	HasPK bool
	Query url.Values
	Body  []byte
}

// Expand returns the `_expand` tokens of the request.
func (r Request) Expand() expand.Tokens {
	return expand.NewTokens(r.Query["_expand"]...)
}

// QueryID reads an integer query parameter. ok is false when the key is
// absent; err is set when it is present but not a base-10 integer.
func (r Request) QueryID(key string) (id int64, ok bool, err error) {
	v := r.Query.Get(key)
	if v == "" {
		return 0, false, nil
	}
	id, err = strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, true, err
	}
	return id, true, nil
}

// decode unmarshals the JSON body into v.
func (r Request) decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

var invalidBody = Fail(KindClientInput, "Request body must be a JSON object")

// bodyFailure turns a decode error into a Result. A value of the wrong JSON
// type is reported against its field.
func bodyFailure(err error) Result {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return Fail(KindClientInput, typeErr.Field+" must be "+jsonKind(typeErr.Type))
	}
	return invalidBody
}

func jsonKind(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "valid"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Bool:
		return "a boolean"
	case reflect.String:
		return "a string"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}
