package http

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
)

// operatorID returns the authenticated operator's identity from the verified
// JWT. AuthRequired already guaranteed the subject claim is present.
func operatorID(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}
