// Package api assembles the HTTP surface: routing, middleware, and the
// translation of domain results into responses.
package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/bryanspearman/event-listener-server/internal/api/apierr"
	"github.com/bryanspearman/event-listener-server/internal/api/handlers"
	"github.com/bryanspearman/event-listener-server/internal/api/middleware"
	"github.com/bryanspearman/event-listener-server/internal/auth"
	"github.com/bryanspearman/event-listener-server/internal/config"
	"github.com/bryanspearman/event-listener-server/internal/domain/resources"
	"github.com/bryanspearman/event-listener-server/internal/domain/users"
	"github.com/bryanspearman/event-listener-server/internal/metrics"
	"github.com/bryanspearman/event-listener-server/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter wires the full handler tree. The repository and readiness probe
// are injected so tests can run the router against fakes.
func NewRouter(cfg config.Config, logger zerolog.Logger, repo storage.Repository, db handlers.Pinger) http.Handler {
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)

	userService := users.NewService(repo.Users(), logger)
	eventService := resources.NewService(storage.KindEvent, repo.Records(), logger)
	itemService := resources.NewService(storage.KindItem, repo.Records(), logger)

	authHandler := handlers.NewAuthHandler(userService, tokens)
	eventsHandler := handlers.NewResourcesHandler(eventService)
	itemsHandler := handlers.NewResourcesHandler(itemService)

	requireAuth := middleware.RequireAuth(tokens)
	loginLimit := middleware.LoginRateLimit(cfg.RateLimit)

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(db))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/api/v1/signup", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Signup),
	}))
	mux.Handle("/api/v1/login", methodMux(map[string]http.Handler{
		http.MethodPost: loginLimit(http.HandlerFunc(authHandler.Login)),
	}))
	mux.Handle("/api/v1/refresh", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Refresh),
	}))

	mountResource(mux, "/api/v1/events", eventsHandler, requireAuth)
	mountResource(mux, "/api/v1/items", itemsHandler, requireAuth)

	// Anything else is a JSON 404, not the default text response.
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apierr.NotFound(w, r, nil)
	}))

	var handler http.Handler = mux
	handler = middleware.RequestLogging(logger)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

func mountResource(mux *http.ServeMux, path string, h *handlers.ResourcesHandler, requireAuth func(http.Handler) http.Handler) {
	mux.Handle(path, requireAuth(methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(h.List),
		http.MethodPost: http.HandlerFunc(h.Create),
	})))
	mux.Handle(path+"/{id}", requireAuth(methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(h.Get),
		http.MethodPut:    http.HandlerFunc(h.Update),
		http.MethodDelete: http.HandlerFunc(h.Delete),
	})))
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
