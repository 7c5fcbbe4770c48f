package middleware

import (
	"net/http"

	"github.com/khetisathi/khetisathi-backend/api/responses"
	pkgerrors "github.com/khetisathi/khetisathi-backend/pkg/errors"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
)

// RequireDispatch blocks operators whose role cannot trigger assignments.
func RequireDispatch(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !RoleFromContext(r.Context()).CanDispatch() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "dispatch role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
