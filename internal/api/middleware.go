package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/blogware/simple-blog/internal/auth"
	"github.com/blogware/simple-blog/pkg/simpleblog"
)

type contextKey string

const principalKey contextKey = "principal"

// Authenticator resolves a bearer token into a principal. Requests without
// a token proceed as anonymous; the service layer decides what anonymous
// principals may do. A present but invalid token is rejected outright.
func Authenticator(tokens *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, ErrorResponse{Error: "malformed authorization header"})
				return
			}

			principal, err := tokens.Parse(tokenString)
			if err != nil {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, ErrorResponse{Error: "invalid token"})
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// principalFrom returns the authenticated principal, or the anonymous
// principal when the request carried no token.
func principalFrom(ctx context.Context) simpleblog.Principal {
	if p, ok := ctx.Value(principalKey).(simpleblog.Principal); ok {
		return p
	}
	return simpleblog.Principal{}
}
