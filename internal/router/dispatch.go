// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package router

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"rare/internal/handlers"
	"rare/internal/metrics"
	"rare/internal/middleware"
)

// maxBodyBytes caps request bodies read by the dispatcher.
const maxBodyBytes = 1 << 20

const msgNotFound = "Not found"

// Dispatcher resolves a request against the route table, runs the handler
// and writes its Result.
type Dispatcher struct {
	routes    map[routeKey]route
	resources map[string]bool
	limiter   middleware.Limiter
}

// NewDispatcher builds the dispatcher over the fixed route table. Routes
// marked limited are throttled by authLimiter, per client and resource;
// a nil authLimiter disables throttling.
func NewDispatcher(h Handlers, authLimiter middleware.Limiter) *Dispatcher {
	d := &Dispatcher{routes: routeTable(h), resources: map[string]bool{}, limiter: authLimiter}
	for k := range d.routes {
		d.resources[k.resource] = true
	}
	return d
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u := ParseURL(r.URL.RequestURI())

	rt, ok := d.routes[routeKey{r.Method, u.Resource}]
	if !ok {
		writeJSON(w, http.StatusNotFound, handlers.ErrorBody{Error: msgNotFound})
		return
	}
	if (rt.pk == pkRequired && !u.HasPK) || (rt.pk == pkForbidden && u.HasPK) {
		writeJSON(w, http.StatusNotFound, handlers.ErrorBody{Error: msgNotFound})
		return
	}
	// Keyed on the parsed resource so every spelling of a path shares one budget.
	if rt.limited && d.limiter != nil {
		if !middleware.Throttle(w, r, d.limiter, middleware.ClientIP(r)+"|"+u.Resource) {
			return
		}
	}

	req := handlers.Request{PK: u.PK, HasPK: u.HasPK, Query: u.Query}
	if r.Method == http.MethodPost || r.Method == http.MethodPut {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, handlers.ErrorBody{Error: "Request body too large"})
				return
			}
			writeJSON(w, http.StatusBadRequest, handlers.ErrorBody{Error: "Could not read request body"})
			return
		}
		req.Body = body
	}

	res := rt.handler(r.Context(), req)
	if res.Failed() {
		metrics.HandlerFailuresTotal.WithLabelValues(u.Resource, res.Kind.String()).Inc()
		if res.Kind == handlers.KindStorage {
			slog.Error("handler failed",
				"method", r.Method,
				"resource", u.Resource,
				"pk", u.PK,
				"request_id", middleware.RequestIDFromCtx(r.Context()),
				"error", res.Err,
			)
		}
		writeJSON(w, statusFor(res.Kind), handlers.ErrorBody{Error: res.Message})
		return
	}

	if rt.status == http.StatusNoContent || res.Payload == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rt.status)
		return
	}
	writeJSON(w, rt.status, res.Payload)
}

// resourceLabel bounds the metrics label to known resources.
func (d *Dispatcher) resourceLabel(r *http.Request) string {
	res := ParseURL(r.URL.RequestURI()).Resource
	switch {
	case d.resources[res], res == "health", res == "metrics":
		return res
	default:
		return "unmatched"
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write response", "error", err)
	}
}
