package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/khetisathi/khetisathi-backend/api/responses"
	"github.com/khetisathi/khetisathi-backend/api/validators"
	"github.com/khetisathi/khetisathi-backend/internal/pricing"
	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	pkgerrors "github.com/khetisathi/khetisathi-backend/pkg/errors"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
)

// ListRates returns the configured service and vehicle rate tables.
func ListRates(repo pricing.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceRates, err := repo.ListServiceRates(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list service rates"))
			return
		}
		vehicleRates, err := repo.ListVehicleRates(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicle rates"))
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"service_rates": serviceRates,
			"vehicle_rates": vehicleRates,
		})
	}
}

type upsertServiceRateRequest struct {
	Service    string `json:"service" validate:"required"`
	MaleWage   string `json:"male_wage"`
	FemaleWage string `json:"female_wage"`
	FlatWage   string `json:"flat_wage"`
	BundleRate string `json:"bundle_rate"`
}

// UpsertServiceRate creates or replaces the daily wage entry for a service.
func UpsertServiceRate(repo pricing.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req upsertServiceRateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		service, err := enums.ParseServiceType(req.Service)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid service type"))
			return
		}

		rate := models.ServiceRate{Service: service}
		if rate.MaleWage, err = parseWage(req.MaleWage, "male_wage"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if rate.FemaleWage, err = parseWage(req.FemaleWage, "female_wage"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if rate.FlatWage, err = parseWage(req.FlatWage, "flat_wage"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if rate.BundleRate, err = parseWage(req.BundleRate, "bundle_rate"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := repo.UpsertServiceRate(r.Context(), &rate); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store service rate"))
			return
		}
		responses.WriteSuccess(w, rate)
	}
}

type upsertVehicleRateRequest struct {
	Vehicle  string `json:"vehicle" validate:"required"`
	TripRate string `json:"trip_rate" validate:"required"`
}

// UpsertVehicleRate creates or replaces the per-trip charge for a vehicle class.
func UpsertVehicleRate(repo pricing.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req upsertVehicleRateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := enums.ParseVehicleClass(req.Vehicle)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle class"))
			return
		}
		tripRate, err := parseWage(req.TripRate, "trip_rate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rate := models.VehicleRate{Vehicle: vehicle, TripRate: tripRate}
		if err := repo.UpsertVehicleRate(r.Context(), &rate); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store vehicle rate"))
			return
		}
		responses.WriteSuccess(w, rate)
	}
}

type quoteRequest struct {
	Service     string  `json:"service" validate:"required"`
	MaleCount   int     `json:"male_count" validate:"min=0"`
	FemaleCount int     `json:"female_count" validate:"min=0"`
	Count       int     `json:"count" validate:"min=0"`
	Vehicle     *string `json:"vehicle"`
	DriverCount int     `json:"driver_count" validate:"min=0"`
}

// QuoteOrder computes the labor and transport cost for a staffed order.
func QuoteOrder(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		service, err := enums.ParseServiceType(req.Service)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid service type"))
			return
		}

		input := pricing.QuoteInput{
			Service:     service,
			MaleCount:   req.MaleCount,
			FemaleCount: req.FemaleCount,
			TotalCount:  req.Count,
			DriverCount: req.DriverCount,
		}
		if req.Vehicle != nil {
			vehicle, err := enums.ParseVehicleClass(*req.Vehicle)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle class"))
				return
			}
			input.VehicleClass = &vehicle
		}

		quote, err := svc.Quote(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

func parseWage(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "amount must be decimal").WithDetails(map[string]any{"field": field})
	}
	if value.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}
