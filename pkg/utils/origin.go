package utils

import (
	"net/http"
	"strings"
)

// CheckOrigin returns a websocket origin check for the given allow list.
// An empty list or a "*" entry allows everything. Requests without an
// Origin header come from non-browser clients and always pass.
func CheckOrigin(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[normalizeOrigin(o)] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(set) == 0 || set["*"] || origin == "" {
			return true
		}
		return set[normalizeOrigin(origin)]
	}
}

func normalizeOrigin(o string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(o)), "/")
}
