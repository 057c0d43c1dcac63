// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package expand

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrMissingColumn is returned when an assembler reads a column the row
// does not carry.
var ErrMissingColumn = errors.New("missing column")

// Row is one result row keyed by column alias.
type Row map[string]any

// ScanRows reads every remaining row into a Row. Byte slices are copied
// into strings so the values outlive the driver buffers.
func ScanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// reader pulls typed values out of a Row. The first failure is kept in err
// and every later read becomes a no-op, so assemblers check once at the end.
type reader struct {
	row Row
	err error
}

func newReader(row Row) *reader {
	return &reader{row: row}
}

func (r *reader) value(col string) (any, bool) {
	if r.err != nil {
		return nil, false
	}
	v, ok := r.row[col]
	if !ok {
		r.err = fmt.Errorf("%w %q", ErrMissingColumn, col)
		return nil, false
	}
	return v, true
}

func (r *reader) fail(col string, v any, want string) {
	r.err = fmt.Errorf("column %q: cannot convert %T to %s", col, v, want)
}

func (r *reader) nullInt64(col string) *int64 {
	v, ok := r.value(col)
	if !ok || v == nil {
		return nil
	}
	var n int64
	switch x := v.(type) {
	case int64:
		n = x
	case int32:
		n = int64(x)
	case int:
		n = int64(x)
	case float64:
		n = int64(x)
	case string:
		parsed, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			r.fail(col, v, "int64")
			return nil
		}
		n = parsed
	default:
		r.fail(col, v, "int64")
		return nil
	}
	return &n
}

func (r *reader) int64(col string) int64 {
	if n := r.nullInt64(col); n != nil {
		return *n
	}
	return 0
}

func (r *reader) nullString(col string) *string {
	v, ok := r.value(col)
	if !ok || v == nil {
		return nil
	}
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case time.Time:
		s = x.Format(time.RFC3339)
	case int64:
		s = strconv.FormatInt(x, 10)
	default:
		r.fail(col, v, "string")
		return nil
	}
	return &s
}

func (r *reader) string(col string) string {
	if s := r.nullString(col); s != nil {
		return *s
	}
	return ""
}

func (r *reader) bool(col string) bool {
	v, ok := r.value(col)
	if !ok || v == nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	case int32:
		return x != 0
	case int:
		return x != 0
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			r.fail(col, v, "bool")
		}
		return b
	}
	r.fail(col, v, "bool")
	return false
}
