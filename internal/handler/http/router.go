package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-report-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig holds the router's non-handler settings
type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// ExportsDir serves locally archived exports under /exports when set
	ExportsDir string
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	reportHandler ReportHandler,
	viewHandler ViewHandler,
	actionHandler ActionHandler,
	eventHandler EventHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition", "X-Row-Count", "X-Archive-Key", "X-Archive-URL"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
		// The SSE stream is long lived; log it on connect only
		Skip: func(req *http.Request, respStatus int) bool {
			return strings.HasSuffix(req.URL.Path, "/events")
		},
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.ExportsDir != "" {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.RequirePermission(user.PermissionReportViewAll))
			r.Handle("/exports/*", http.StripPrefix("/exports/", http.FileServer(http.Dir(cfg.ExportsDir))))
		})
	}

	r.Route("/api/v1", func(r chi.Router) {

		// EventSource cannot send headers; the stream authenticates with an SSE token
		r.Get("/views/{id}/events", eventHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/reports", func(r chi.Router) {
				r.Get("/", reportHandler.ListReports)
				r.Get("/{report}", reportHandler.QueryReport)
				r.Get("/{report}/export", reportHandler.ExportReport)
			})

			r.Get("/exports", reportHandler.ListExports)

			r.Route("/views", func(r chi.Router) {
				r.Post("/", viewHandler.OpenView)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", viewHandler.GetView)
					r.Delete("/", viewHandler.CloseView)
					r.Post("/refresh", viewHandler.RefreshView)
					r.Patch("/filters", viewHandler.UpdateFilters)
					r.Post("/sort", viewHandler.ToggleSort)
					r.Put("/page", viewHandler.SetPage)
					r.Get("/export", viewHandler.ExportView)
					r.Post("/events/token", eventHandler.IssueToken)

					r.Route("/records/{recordID}", func(r chi.Router) {
						r.Get("/history", actionHandler.ActionHistory)
						r.Post("/{action}", actionHandler.SubmitAction)
					})
				})
			})
		})
	})
	return r
}
