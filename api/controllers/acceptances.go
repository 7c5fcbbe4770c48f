package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/api/responses"
	"github.com/khetisathi/khetisathi-backend/api/validators"
	"github.com/khetisathi/khetisathi-backend/internal/fulfillment"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	pkgerrors "github.com/khetisathi/khetisathi-backend/pkg/errors"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
)

type recordResponseRequest struct {
	PartyID  string `json:"party_id" validate:"required,uuid"`
	Response string `json:"response" validate:"required,oneof=accepted rejected completed"`
}

// RecordResponse applies a party's answer to its open offer.
func RecordResponse(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req recordResponseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partyID, err := uuid.Parse(req.PartyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid party id"))
			return
		}
		response, err := enums.ParseAcceptanceStatus(req.Response)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid response"))
			return
		}

		if err := svc.RecordResponse(r.Context(), fulfillment.RecordResponseInput{
			OrderID:  orderID,
			PartyID:  partyID,
			Response: response,
			Actor:    actorFromContext(r.Context()),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}
