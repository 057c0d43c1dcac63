// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package router

import (
	"net/url"
	"strconv"
	"strings"
)

// ParsedURL is a request target split into the parts dispatch needs.
type ParsedURL struct {
	// Resource is the first non-empty path segment, or "".
	Resource string
	// PK is the second segment as a base-10 integer, or 0.
	PK int64
	// HasPK distinguishes an explicit id of 0 from a missing or
	// unparseable one.
	HasPK bool
	// Query keeps every value of repeated keys, in order.
	Query url.Values
}

// ParseURL splits a raw path and query string. It never fails: anything it
// cannot make sense of falls back to the zero value of that part.
func ParseURL(raw string) ParsedURL {
	path, rawQuery := splitTarget(raw)

	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	p := ParsedURL{Query: url.Values{}}
	if len(segments) > 0 {
		p.Resource = segments[0]
	}
	if len(segments) > 1 {
		if pk, err := strconv.ParseInt(segments[1], 10, 64); err == nil {
			p.PK, p.HasPK = pk, true
		}
	}

	// ParseQuery keeps every well-formed pair even when it reports an error
	// for a malformed one.
	if q, _ := url.ParseQuery(rawQuery); q != nil {
		p.Query = q
	}
	return p
}

// splitTarget returns the decoded path and the raw query of raw. Absolute
// URLs are accepted; anything starting with "/" is a path, even "//x".
func splitTarget(raw string) (path, rawQuery string) {
	if !strings.HasPrefix(raw, "/") {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			return u.Path, u.RawQuery
		}
	}

	raw, _, _ = strings.Cut(raw, "#")
	path, rawQuery, _ = strings.Cut(raw, "?")
	if p, err := url.PathUnescape(path); err == nil {
		path = p
	}
	return path, rawQuery
}
