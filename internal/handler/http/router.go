package http

import (
	"io"
	"log/slog"

	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	Attendance AttendanceHandler
	Dashboard  DashboardHandler
	Payroll    PayrollHandler
	Policy     PolicyHandler
	Reconcile  ReconcileHandler
}

type RouterOptions struct {
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(logger *slog.Logger, JWTService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

		r.Route("/attendance", func(r chi.Router) {
			r.Post("/punches", h.Attendance.RecordPunch)
			r.With(middleware.AdminOnly).Get("/", h.Attendance.List)
		})

		r.With(middleware.AdminOnly).Get("/dashboard/daily-stats", h.Dashboard.GetDailyStats)

		r.Route("/employees/{id}", func(r chi.Router) {
			r.Use(middleware.SelfOrAdmin("id"))
			r.Get("/calendar", h.Dashboard.GetMonthlyCalendar)
			r.Get("/payroll-estimate", h.Payroll.GetEstimate)
		})

		r.Route("/policy", func(r chi.Router) {
			r.Get("/", h.Policy.Get)
			r.With(middleware.AdminOnly).Put("/", h.Policy.Set)
		})

		r.Route("/reconciliations", func(r chi.Router) {
			r.Use(middleware.AdminOnly)
			r.Post("/", h.Reconcile.Request)
			r.Get("/invariants", h.Reconcile.GetInvariantReport)
		})
	})

	return r
}

// NewLogger builds the JSON logger shared by request logging and the jobs.
func NewLogger(out io.Writer, level slog.Level, app, version, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app),
		slog.String("version", version),
		slog.String("env", env),
	)
}
