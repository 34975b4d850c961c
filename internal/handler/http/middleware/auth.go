package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-report-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type principalKey struct{}

// AuthRequired accepts verified access tokens and stores the caller's Principal.
// It must run after jwtauth.Verifier.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, jwt.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if tokenType != jwt.TokenTypeAccess || !ok {
				response.HandleError(w, jwt.ErrInvalidToken)
				return
			}

			p, err := jwt.PrincipalFromClaims(claims, bearerToken(r))
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		}
		return http.HandlerFunc(hfn)
	}
}

func WithPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller stored by AuthRequired.
func PrincipalFrom(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	return p, ok
}

// bearerToken is forwarded to the HR API so upstream calls run as the caller.
func bearerToken(r *http.Request) string {
	bearer := r.Header.Get("Authorization")
	if len(bearer) > 7 && strings.EqualFold(bearer[0:6], "BEARER") {
		return bearer[7:]
	}
	return ""
}
