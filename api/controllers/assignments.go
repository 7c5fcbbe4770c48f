package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/api/responses"
	"github.com/khetisathi/khetisathi-backend/api/validators"
	"github.com/khetisathi/khetisathi-backend/internal/fulfillment"
	pkgerrors "github.com/khetisathi/khetisathi-backend/pkg/errors"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
)

// AutoAssign runs one automatic worker matching pass over the order.
func AutoAssign(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.AutoAssign(r.Context(), fulfillment.AutoAssignInput{
			OrderID: orderID,
			Actor:   actorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}

type manualAssignRequest struct {
	PartyIDs []string `json:"party_ids" validate:"required,min=1,dive,uuid"`
}

// ManualAssign offers the order to an operator-chosen set of workers.
func ManualAssign(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req manualAssignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partyIDs := make([]uuid.UUID, 0, len(req.PartyIDs))
		for _, raw := range req.PartyIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid party id"))
				return
			}
			partyIDs = append(partyIDs, id)
		}

		outcome, err := svc.ManualAssign(r.Context(), fulfillment.ManualAssignInput{
			OrderID:  orderID,
			PartyIDs: partyIDs,
			Actor:    actorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}

// AssignDrivers resolves the transport tier for the order's accepted workers
// and offers the resulting driver slots.
func AssignDrivers(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.AssignDrivers(r.Context(), fulfillment.AssignDriversInput{
			OrderID: orderID,
			Actor:   actorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}
