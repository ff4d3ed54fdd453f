package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/auth"
	"github.com/frahmantamala/transport-management/internal/availability"
	"github.com/frahmantamala/transport-management/internal/fleet"
	"github.com/frahmantamala/transport-management/internal/maintenance"
	"github.com/frahmantamala/transport-management/internal/notification"
	"github.com/frahmantamala/transport-management/internal/tada"
	"github.com/frahmantamala/transport-management/internal/transport/middleware"
	"github.com/frahmantamala/transport-management/internal/transport/swagger"
	"github.com/frahmantamala/transport-management/internal/trip"
	"github.com/frahmantamala/transport-management/internal/user"
	"github.com/go-chi/chi"
)

// Handlers bundles every feature handler the router mounts.
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Trip         *trip.Handler
	Availability *availability.Handler
	Tada         *tada.Handler
	Maintenance  *maintenance.Handler
	Fleet        *fleet.Handler
	Notification *notification.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, cfg *internal.Config, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RecoveryMiddleware(logger))

	if cfg.Server.RateLimitPerSec > 0 {
		limiter := middleware.NewRateLimiter(cfg.Server.RateLimitPerSec, cfg.Server.RateLimitBurst)
		router.Use(limiter.Middleware)
	}

	// Serve the OpenAPI spec and Swagger UI outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		// Everything below requires an authenticated principal
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.User.GetCurrentUser)
			pr.Group(func(sr chi.Router) {
				sr.Use(middleware.RequireRoles(auth.RoleManager, auth.RoleTransport, auth.RoleAdmin))
				sr.Get("/users", h.User.ListUsers)
				sr.Get("/users/{id}", h.User.GetUser)
			})

			pr.Route("/trips", func(tr chi.Router) {
				tr.Post("/", h.Trip.CreateTrip)
				tr.Get("/", h.Trip.ListTrips)
				tr.Get("/{id}", h.Trip.GetTrip)
				tr.Patch("/{id}/cancel", h.Trip.CancelTrip)

				tr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequireRoles(auth.RoleManager, auth.RoleAdmin))
					mr.Get("/pending", h.Trip.ListPendingTrips)
					mr.Patch("/{id}/decide", h.Trip.DecideTrip)
				})

				tr.Group(func(or chi.Router) {
					or.Use(middleware.RequireRoles(auth.RoleTransport, auth.RoleAdmin))
					or.Patch("/{id}/assign", h.Trip.AssignTrip)
					or.Patch("/{id}/start", h.Trip.StartTrip)
					or.Patch("/{id}/complete", h.Trip.CompleteTrip)
				})

				// Travel allowance claims hang off their trip
				tr.Post("/{tripID}/claims", h.Tada.CreateClaim)
				tr.Post("/{tripID}/claims/batch", h.Tada.CreateClaimBatch)
				tr.Get("/{tripID}/claims", h.Tada.ListTripClaims)
			})

			pr.Group(func(sr chi.Router) {
				sr.Use(middleware.RequireRoles(auth.RoleManager, auth.RoleTransport, auth.RoleAdmin))
				sr.Get("/availability", h.Availability.FindAvailable)
			})

			pr.Route("/claims", func(cr chi.Router) {
				cr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequireRoles(auth.RoleManager, auth.RoleAdmin))
					mr.Get("/pending", h.Tada.ListPendingClaims)
					mr.Patch("/{id}/decide", h.Tada.DecideClaim)
				})
			})

			pr.Route("/maintenance", func(mr chi.Router) {
				mr.Post("/entitled", h.Maintenance.CreateEntitledRequest)
				mr.Get("/", h.Maintenance.ListRequests)
				mr.Get("/{id}", h.Maintenance.GetRequest)
				mr.Post("/{id}/issues", h.Maintenance.ReportIssue)

				mr.Group(func(dr chi.Router) {
					dr.Use(middleware.RequireRoles(auth.RoleManager, auth.RoleAdmin))
					dr.Get("/pending", h.Maintenance.ListPendingRequests)
					dr.Patch("/{id}/decide", h.Maintenance.DecideRequest)
				})

				mr.Group(func(or chi.Router) {
					or.Use(middleware.RequireRoles(auth.RoleTransport, auth.RoleAdmin))
					or.Post("/fleet", h.Maintenance.CreateFleetRequest)
					or.Patch("/{id}/start", h.Maintenance.StartRequest)
					or.Patch("/{id}/complete", h.Maintenance.CompleteRequest)
				})
			})

			pr.Route("/drivers", func(dr chi.Router) {
				dr.Use(middleware.RequireRoles(auth.RoleTransport, auth.RoleAdmin))
				dr.Post("/", h.Fleet.CreateDriver)
				dr.Get("/", h.Fleet.ListDrivers)
				dr.Patch("/{id}", h.Fleet.UpdateDriver)
				dr.Patch("/{id}/deactivate", h.Fleet.DeactivateDriver)
				dr.Patch("/{id}/reactivate", h.Fleet.ReactivateDriver)
				dr.Delete("/{id}", h.Fleet.DeleteDriver)
			})

			pr.Route("/vehicles", func(vr chi.Router) {
				vr.Use(middleware.RequireRoles(auth.RoleTransport, auth.RoleAdmin))
				vr.Post("/", h.Fleet.CreateVehicle)
				vr.Get("/", h.Fleet.ListVehicles)
				vr.Patch("/{id}", h.Fleet.UpdateVehicle)
				vr.Patch("/{id}/deactivate", h.Fleet.DeactivateVehicle)
				vr.Patch("/{id}/reactivate", h.Fleet.ReactivateVehicle)
				vr.Delete("/{id}", h.Fleet.DeleteVehicle)
			})

			pr.Route("/entitled-vehicles", func(er chi.Router) {
				er.Get("/", h.Fleet.ListEntitledVehicles)

				er.Group(func(ar chi.Router) {
					ar.Use(middleware.RequireRoles(auth.RoleAdmin))
					ar.Post("/", h.Fleet.CreateEntitledVehicle)
					ar.Patch("/{id}/deactivate", h.Fleet.DeactivateEntitledVehicle)
				})
			})

			pr.Group(func(nr chi.Router) {
				nr.Use(middleware.RequireRoles(auth.RoleManager, auth.RoleTransport, auth.RoleAdmin))
				nr.Get("/notifications", h.Notification.ListNotifications)
				nr.Get("/notifications/{entityKind}/{entityID}", h.Notification.ListEntityNotifications)
			})
		})
	})
}
