package api

import (
	"context"
	"net/http"
	"time"

	"code_practice/internal/api/handler"
	"code_practice/internal/api/middleware"
	"code_practice/internal/app/realtime"
	"code_practice/internal/app/service"
	"code_practice/internal/common"
	"code_practice/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Auth         *service.AuthService
	Pattern      *service.PatternService
	Problem      *service.ProblemService
	Submission   *service.SubmissionService
	Stats        *service.StatsService
	Notification *service.NotificationService
}

type Options struct {
	Hub            *realtime.Hub
	ClientOrigins  []string
	UploadMaxBytes int64
	// HealthCheck reports datastore reachability; nil means always healthy.
	HealthCheck func(ctx context.Context) error
}

func NewRouter(svc Services, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.ClientOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Searches "Authorization: Bearer T" and puts the verified token in context.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", healthHandler(opts.HealthCheck))
	r.Handle("/metrics", promhttp.Handler())

	authn := middleware.Authenticator(svc.Auth)

	authHandler := handler.NewAuthHandler(svc.Auth)
	patternHandler := handler.NewPatternHandler(svc.Pattern)
	problemHandler := handler.NewProblemHandler(svc.Problem)
	submissionHandler := handler.NewSubmissionHandler(svc.Submission, opts.UploadMaxBytes)
	statsHandler := handler.NewStatsHandler(svc.Stats)
	notificationHandler := handler.NewNotificationHandler(svc.Notification, svc.Auth, opts.Hub, opts.ClientOrigins)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			authHandler.RegisterRoutes(ar, authn)
		})

		api.Get("/notifications/ws", notificationHandler.ServeWS)

		api.Group(func(private chi.Router) {
			private.Use(authn)
			private.Route("/patterns", patternHandler.RegisterRoutes)
			private.Route("/problems", problemHandler.RegisterRoutes)
			private.Route("/submissions", submissionHandler.RegisterRoutes)
			private.Route("/stats", statsHandler.RegisterRoutes)
			private.Route("/notifications", notificationHandler.RegisterRoutes)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusNotFound, "Route not found")
	})

	return r
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	DB        string    `json:"db"`
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := healthResponse{Status: "ok", Timestamp: time.Now().UTC(), DB: "ok"}
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				res.Status = "degraded"
				res.DB = err.Error()
				common.RespondWithJSON(w, http.StatusServiceUnavailable, res)
				return
			}
		}
		common.RespondWithJSON(w, http.StatusOK, res)
	}
}
