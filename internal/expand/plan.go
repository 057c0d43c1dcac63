// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package expand turns `_expand` query tokens into SQL field and join plans
// and assembles the resulting flat rows back into nested wire objects.
//
// Each resource has a planner and an assembler built from the same alias
// constants: every column a plan selects is read by exactly one assembler
// field, and the assembler never reads a column the plan did not select.
package expand

import (
	"strings"
)

// Expansion tokens understood by the planners. Unknown tokens are ignored.
const (
	TokenCategory = "category"
	TokenUser     = "user"
	TokenAuthor   = "author"
	TokenPost     = "post"
)

// Tokens is the set of requested expansions. Order and duplicates in the
// query string do not matter.
type Tokens map[string]struct{}

// NewTokens builds a token set from raw `_expand` values.
func NewTokens(values ...string) Tokens {
	t := make(Tokens, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			t[v] = struct{}{}
		}
	}
	return t
}

// HasAny reports whether any of the names was requested.
func (t Tokens) HasAny(names ...string) bool {
	for _, n := range names {
		if _, ok := t[n]; ok {
			return true
		}
	}
	return false
}

// FieldSpec is one selected column: a SQL expression and the alias it is
// read back under.
type FieldSpec struct {
	Expr  string
	Alias string
}

// SQL renders the field for a SELECT list.
func (f FieldSpec) SQL() string {
	return f.Expr + " AS " + f.Alias
}

// JoinKind is the SQL join type.
type JoinKind string

const (
	InnerJoin JoinKind = "JOIN"
	LeftJoin  JoinKind = "LEFT JOIN"
)

// JoinSpec is one joined table.
type JoinSpec struct {
	Kind  JoinKind
	Table string
	Alias string
	On    string
}

// SQL renders the join clause.
func (j JoinSpec) SQL() string {
	return string(j.Kind) + " " + j.Table + " " + j.Alias + " ON " + j.On
}

// Plan is the field selection and join list needed to satisfy a request.
type Plan struct {
	Fields []FieldSpec
	Joins  []JoinSpec
}

// relation is an optional expansion: the tokens that trigger it, the
// fields it adds, and the join it needs (nil when it reuses a base join).
type relation struct {
	tokens []string
	fields []FieldSpec
	join   *JoinSpec
}

// build assembles a plan from the base fields and join plus every relation
// whose tokens were requested. Relations are applied in declaration order,
// so the plan shape does not depend on token order.
func build(base []FieldSpec, baseJoin JoinSpec, t Tokens, relations ...relation) Plan {
	p := Plan{
		Fields: append([]FieldSpec(nil), base...),
		Joins:  []JoinSpec{baseJoin},
	}
	for _, rel := range relations {
		if !t.HasAny(rel.tokens...) {
			continue
		}
		p.Fields = append(p.Fields, rel.fields...)
		if rel.join != nil {
			p.Joins = append(p.Joins, *rel.join)
		}
	}
	return p
}

// Aliases returns the output column names in selection order.
func (p Plan) Aliases() []string {
	out := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		out[i] = f.Alias
	}
	return out
}

// Query renders a SELECT over table with the plan's fields and joins.
// where and orderBy are appended verbatim when non-empty.
func (p Plan) Query(table, where, orderBy string) string {
	var b strings.Builder

	b.WriteString("SELECT\n\t")
	for i, f := range p.Fields {
		if i > 0 {
			b.WriteString(",\n\t")
		}
		b.WriteString(f.SQL())
	}
	b.WriteString("\nFROM ")
	b.WriteString(table)
	for _, j := range p.Joins {
		b.WriteString("\n")
		b.WriteString(j.SQL())
	}
	if where != "" {
		b.WriteString("\nWHERE ")
		b.WriteString(where)
	}
	if orderBy != "" {
		b.WriteString("\nORDER BY ")
		b.WriteString(orderBy)
	}
	return b.String()
}
