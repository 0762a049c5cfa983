// Package moodtracker предоставляет маршруты для основного приложения.
package moodtracker

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/mood-tracker/internal/config"
	"github.com/magabrotheeeer/mood-tracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/mood-tracker/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/mood-tracker/internal/http/handlers/health"
	trackercreate "github.com/magabrotheeeer/mood-tracker/internal/http/handlers/tracker/create"
	trackerlist "github.com/magabrotheeeer/mood-tracker/internal/http/handlers/tracker/list"
	trackerremove "github.com/magabrotheeeer/mood-tracker/internal/http/handlers/tracker/remove"
	trackersummary "github.com/magabrotheeeer/mood-tracker/internal/http/handlers/tracker/summary"
	userme "github.com/magabrotheeeer/mood-tracker/internal/http/handlers/user/me"
	userpassword "github.com/magabrotheeeer/mood-tracker/internal/http/handlers/user/password"
	"github.com/magabrotheeeer/mood-tracker/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/mood-tracker/internal/services/auth"
	trackerservice "github.com/magabrotheeeer/mood-tracker/internal/services/tracker"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mood_tracker_http_requests_total",
	Help: "Количество обработанных HTTP-запросов по методу и пути.",
}, []string{"method", "path"})

func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestsTotal.WithLabelValues(r.Method, r.URL.Path).Inc()
		next.ServeHTTP(w, r)
	})
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	authService *authservice.AuthService, trackerService *trackerservice.TrackerService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		countRequests,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/users", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Get("/me", userme.New(logger).ServeHTTP)
			r.Put("/me/password", userpassword.New(logger, authService).ServeHTTP)
		})
	})

	r.Route("/tracker", func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(authService, logger))
		r.Post("/", trackercreate.New(logger, trackerService).ServeHTTP)
		r.Get("/", trackerlist.New(logger, trackerService).ServeHTTP)
		r.Get("/summary", trackersummary.New(logger, trackerService).ServeHTTP)
		r.Delete("/{entry_id}", trackerremove.New(logger, trackerService).ServeHTTP)
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
