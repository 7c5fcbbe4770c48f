package controllers

import (
	"net/http"

	"github.com/khetisathi/khetisathi-backend/api/responses"
	"github.com/khetisathi/khetisathi-backend/api/validators"
	pkgerrors "github.com/khetisathi/khetisathi-backend/pkg/errors"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox"
)

// ListDLQ returns the most recent dead-lettered outbox events for triage.
func ListDLQ(repo *outbox.DLQRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := repo.List(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dead letter queue"))
			return
		}
		responses.WriteSuccess(w, entries)
	}
}
