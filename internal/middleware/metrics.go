// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"rare/internal/metrics"
)

// Metrics records request counts and latencies. resource maps a request to
// a bounded label value so arbitrary paths do not create new series.
func Metrics(resource func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := wrap(w)
			next.ServeHTTP(wrapped, r)

			res := resource(r)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, res, strconv.Itoa(wrapped.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, res).Observe(time.Since(start).Seconds())
		})
	}
}
