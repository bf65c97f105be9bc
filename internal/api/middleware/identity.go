package middleware

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	SessionIDKey contextKey = "session_id"

	// maxIdentityLen caps caller-supplied identifiers before they reach
	// logs and the request log table.
	maxIdentityLen = 128
)

// ClientIdentity copies the optional X-User-ID and X-Session-ID headers
// into the request context. The values are opaque and not verified.
func ClientIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := cleanIdentity(r.Header.Get("X-User-ID")); id != "" {
			ctx = context.WithValue(ctx, UserIDKey, id)
		}
		if id := cleanIdentity(r.Header.Get("X-Session-ID")); id != "" {
			ctx = context.WithValue(ctx, SessionIDKey, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cleanIdentity returns valid UTF-8 without NUL bytes, cut on a rune
// boundary at maxIdentityLen bytes. Postgres text columns reject both.
func cleanIdentity(v string) string {
	v = strings.ToValidUTF8(v, "")
	v = strings.ReplaceAll(v, "\x00", "")
	v = strings.TrimSpace(v)
	if len(v) > maxIdentityLen {
		cut := maxIdentityLen
		for cut > 0 && !utf8.RuneStart(v[cut]) {
			cut--
		}
		v = strings.TrimSpace(v[:cut])
	}
	return v
}

func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}
