package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/khetisathi/khetisathi-backend/api/controllers"
	"github.com/khetisathi/khetisathi-backend/api/middleware"
	"github.com/khetisathi/khetisathi-backend/internal/directory"
	"github.com/khetisathi/khetisathi-backend/internal/fulfillment"
	"github.com/khetisathi/khetisathi-backend/internal/notifications"
	"github.com/khetisathi/khetisathi-backend/internal/pricing"
	"github.com/khetisathi/khetisathi-backend/pkg/config"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox"
)

// Deps collects everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            controllers.Pinger
	Redis         controllers.Pinger
	Fulfillment   fulfillment.Service
	Directory     directory.Repository
	Pricing       pricing.Service
	Rates         pricing.Repository
	Notifications notifications.Service
	DLQ           *outbox.DLQRepository
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.Fulfillment, logg))
			r.Get("/{orderId}", controllers.GetOrder(deps.Fulfillment, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireDispatch(logg))
				r.Post("/", controllers.CreateOrder(deps.Fulfillment, logg))
				r.Post("/{orderId}/cancel", controllers.CancelOrder(deps.Fulfillment, logg))
				r.Post("/{orderId}/assign", controllers.AutoAssign(deps.Fulfillment, logg))
				r.Post("/{orderId}/assign/manual", controllers.ManualAssign(deps.Fulfillment, logg))
				r.Post("/{orderId}/assign/drivers", controllers.AssignDrivers(deps.Fulfillment, logg))
				r.Post("/{orderId}/responses", controllers.RecordResponse(deps.Fulfillment, logg))
			})
		})

		r.Route("/rates", func(r chi.Router) {
			r.Get("/", controllers.ListRates(deps.Rates, logg))
			r.Post("/quote", controllers.QuoteOrder(deps.Pricing, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireDispatch(logg))
				r.Put("/services", controllers.UpsertServiceRate(deps.Rates, logg))
				r.Put("/vehicles", controllers.UpsertVehicleRate(deps.Rates, logg))
			})
		})

		r.Route("/parties", func(r chi.Router) {
			r.Get("/", controllers.ListParties(deps.Directory, logg))
			r.Get("/{partyId}", controllers.GetParty(deps.Directory, logg))

			r.Route("/{partyId}/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
			})
		})

		r.Route("/outbox", func(r chi.Router) {
			r.Use(middleware.RequireDispatch(logg))
			r.Get("/dlq", controllers.ListDLQ(deps.DLQ, logg))
		})
	})

	return r
}
