package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/config"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	app config.AppConfig,
	JWTService jwt.Service,
	authHandler AuthHandler,
	punchHandler PunchHandler,
	companyHandler CompanyHandler,
	employeeHandler EmployeeHandler,
	kioskHandler KioskHandler,
	timeEntryHandler TimeEntryHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(app.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "punchclock"),
		slog.String("version", "v1.0.0"),
		slog.String("env", app.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	// Probed by the punch client to detect connectivity.
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api", func(r chi.Router) {
		// The stream authenticates with its own short-lived query token.
		r.Get("/me/status/stream", punchHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Post("/clock-in", punchHandler.Submit)

			r.Route("/me", func(r chi.Router) {
				r.Get("/status", punchHandler.MyStatus)
				r.Post("/status/stream-token", punchHandler.GetStreamToken)
				r.Get("/entries", punchHandler.MyEntries)
				r.Get("/summary", punchHandler.MySummary)
			})

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/company", func(r chi.Router) {
					r.Get("/", companyHandler.GetCompany)
					r.Put("/", companyHandler.UpsertCompany)
				})

				r.Route("/employees", func(r chi.Router) {
					r.Get("/", employeeHandler.ListEmployees)
					r.Post("/", employeeHandler.CreateEmployee)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", employeeHandler.GetEmployee)
						r.Put("/", employeeHandler.UpdateEmployee)
						r.Delete("/", employeeHandler.DeleteEmployee)
						r.Post("/token", authHandler.IssueToken)
					})
				})

				r.Route("/kiosks", func(r chi.Router) {
					r.Get("/", kioskHandler.ListKiosks)
					r.Post("/", kioskHandler.CreateKiosk)
					r.Put("/{id}", kioskHandler.UpdateKiosk)
					r.Delete("/{id}", kioskHandler.DeleteKiosk)
				})

				r.Route("/entries", func(r chi.Router) {
					r.Get("/pending", timeEntryHandler.ListPending)
					r.Put("/{id}", timeEntryHandler.Edit)
					r.Post("/{id}/approve", timeEntryHandler.Approve)
					r.Post("/{id}/reject", timeEntryHandler.Reject)
				})

				r.Post("/medical-certificates", timeEntryHandler.RecordMedicalCertificate)

				r.Get("/reports/time-entries", reportHandler.GetTimeEntriesReport)
			})
		})
	})
	return r
}
