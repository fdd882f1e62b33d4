package middleware

import (
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// extractToken prefers the Authorization header and falls back to ?access_token=
// for websocket upgrades, where browsers cannot set headers.
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	return r.URL.Query().Get("access_token")
}
