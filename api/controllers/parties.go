package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/khetisathi/khetisathi-backend/api/responses"
	"github.com/khetisathi/khetisathi-backend/internal/directory"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	pkgerrors "github.com/khetisathi/khetisathi-backend/pkg/errors"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
	"github.com/khetisathi/khetisathi-backend/pkg/pagination"
)

// ListParties returns a cursor page of the labor profile directory,
// optionally filtered by role.
func ListParties(repo directory.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := pagination.Params{
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			params.Limit = value
		}

		var role *enums.PartyRole
		if roleStr := strings.TrimSpace(r.URL.Query().Get("role")); roleStr != "" {
			parsed, err := enums.ParsePartyRole(roleStr)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
				return
			}
			role = &parsed
		}

		list, err := repo.ListPage(r.Context(), role, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list labor profiles"))
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"parties":     list.Profiles,
			"next_cursor": list.NextCursor,
		})
	}
}

// GetParty returns a single labor profile.
func GetParty(repo directory.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partyID, err := parsePartyID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := repo.FindByID(r.Context(), partyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "party not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load labor profile"))
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
