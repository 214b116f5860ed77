package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session identifies the shopper for the duration of one request. Guests get
// a client-held id; authenticated users come from the bearer token. The
// session is built once here and passed explicitly to everything below, no
// handler reads auth state on its own.
type Session struct {
	OwnerID       string
	Authenticated bool
}

type ctxKey int

const sessionKey ctxKey = iota

func sessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}

// guestHeader carries the client-persisted anonymous identity. The server
// mints one on first contact and echoes it back.
const guestHeader = "X-Guest-Id"

// AuthMiddleware resolves the request's session. A valid bearer token wins;
// otherwise the request runs as a guest.
func AuthMiddleware(jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := userIDFromBearer(r, jwtSecret); userID != "" {
				ctx := context.WithValue(r.Context(), sessionKey, Session{
					OwnerID:       userID,
					Authenticated: true,
				})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			guestID := r.Header.Get(guestHeader)
			if guestID == "" {
				guestID = "guest-" + uuid.NewString()
			}
			w.Header().Set(guestHeader, guestID)
			ctx := context.WithValue(r.Context(), sessionKey, Session{
				OwnerID: guestID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFromBearer(r *http.Request, secret []byte) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	raw := strings.TrimPrefix(auth, "Bearer ")

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return ""
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return ""
	}
	return sub
}
