package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// AuthRequired rejects requests without a verified operator token carrying a
// subject claim. The platform's identity service issues the tokens; this
// engine only consumes them.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.Unauthorized(w, "Missing operator token")
				return
			}
			if err := jwt.Validate(token, ja.ValidateOptions()...); err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			sub, ok := claims["sub"].(string)
			if !ok || sub == "" {
				response.Unauthorized(w, "Operator token has no subject")
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
