package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/yuadm/first-step-greet/internal/domain/user"
	"github.com/yuadm/first-step-greet/internal/handler/http/middleware"
	"github.com/yuadm/first-step-greet/internal/pkg/jwt"
)

// RouterOptions carries the settings the router needs from configuration.
type RouterOptions struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	CORSOrigins    []string
	LoginRateLimit int
	// UploadsDir, when set, is served read-only under /uploads.
	UploadsDir string
}

type Handlers struct {
	Auth       AuthHandler
	Compliance ComplianceHandler
	Dashboard  DashboardHandler
	Assessment AssessmentHandler
	Master     MasterHandler
	Events     EventsHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if opts.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadsDir)))
		r.Handle("/uploads/*", fs)
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimitPerMinute(opts.LoginRateLimit)).Post("/login", h.Auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService))
				r.Post("/logout", h.Auth.Logout)
				r.Post("/sse-token", h.Auth.SSEToken)
			})
		})

		// SSE authenticates with a short-lived query token
		r.Get("/events", h.Events.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/compliance", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionComplianceView)).
					Get("/periods/parse", h.Compliance.ParsePeriod)

				r.Route("/types", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionComplianceView)).Get("/", h.Compliance.ListTypes)
					r.With(middleware.RequirePermission(user.PermissionComplianceManageTypes)).Post("/", h.Compliance.CreateType)

					r.Route("/{id}", func(r chi.Router) {
						r.Group(func(r chi.Router) {
							r.Use(middleware.RequirePermission(user.PermissionComplianceView))
							r.Get("/", h.Compliance.GetType)
							r.Get("/periods", h.Compliance.ListPeriods)
							r.Get("/status", h.Compliance.GetPeriodStatus)
						})

						r.With(middleware.RequirePermission(user.PermissionComplianceManageTypes)).Put("/", h.Compliance.UpdateType)
						r.With(middleware.RequirePermission(user.PermissionComplianceExport)).Get("/status/export", h.Compliance.ExportPeriodStatus)

						r.Route("/records", func(r chi.Router) {
							r.Use(middleware.RequirePermission(user.PermissionComplianceRecord))
							r.Put("/", h.Compliance.UpsertRecord)
							r.Delete("/{recordID}", h.Compliance.DeleteRecord)
							r.Post("/{recordID}/evidence", h.Compliance.AttachEvidence)
						})
					})
				})
			})

			r.With(middleware.RequirePermission(user.PermissionDashboardView)).
				Get("/dashboard/compliance", h.Dashboard.GetComplianceOverview)

			r.Route("/forms/{form}", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAssessmentSubmit))
				r.Get("/draft", h.Assessment.GetDraft)
				r.Put("/draft", h.Assessment.SaveDraft)
				r.Delete("/draft", h.Assessment.DiscardDraft)
				r.Post("/submit", h.Assessment.Submit)
			})

			r.Route("/branches", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionBranchView))
				r.Get("/", h.Master.ListBranches)
				r.Get("/{id}", h.Master.GetBranch)
			})
		})
	})
	return r
}
