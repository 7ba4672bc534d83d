package server

import (
	"net/http"
	"sort"
	"strings"
)

type RouteDoc struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
	Summary string `json:"summary,omitempty"`
	Access  string `json:"access"`
}

const (
	accessPublic  = "public"
	accessSession = "session"
	accessAdmin   = "admin"
)

type RouteRegistry struct {
	routes []RouteDoc
}

func (rr *RouteRegistry) Add(doc RouteDoc) {
	rr.routes = append(rr.routes, doc)
}

// List returns the registered routes ordered by pattern, then method.
func (rr *RouteRegistry) List() []RouteDoc {
	out := make([]RouteDoc, len(rr.routes))
	copy(out, rr.routes)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pattern != out[j].Pattern {
			return out[i].Pattern < out[j].Pattern
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Handle registers h on mux under a Go 1.22 "METHOD /path" pattern and records it.
func Handle(mux *http.ServeMux, rr *RouteRegistry, methodAndPattern, access, summary string, h http.Handler) {
	parts := strings.SplitN(methodAndPattern, " ", 2)
	method, pattern := parts[0], ""
	if len(parts) == 2 {
		pattern = parts[1]
	}
	rr.Add(RouteDoc{Method: method, Pattern: pattern, Summary: summary, Access: access})
	mux.Handle(methodAndPattern, h)
}
