package router

import (
	"net/http"

	"github.com/fixora/taskhub/domain/entity"
	"github.com/fixora/taskhub/infrastructure/http/handler"
	"github.com/fixora/taskhub/infrastructure/http/middleware"
	"github.com/fixora/taskhub/infrastructure/http/response"
	"github.com/fixora/taskhub/infrastructure/service/logger"
	"github.com/fixora/taskhub/infrastructure/service/metrics"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth          *handler.AuthHandler
	DriveAuth     *handler.DriveAuthHandler
	Employees     *handler.EmployeeHandler
	Organizations *handler.OrganizationHandler
	Industries    *handler.IndustryHandler
	Events        *handler.EventHandler
	Tasks         *handler.TaskHandler
	Audit         *handler.AuditHandler
	Health        *handler.HealthHandler
}

type Options struct {
	Auth             *middleware.AuthMiddleware
	RateLimit        *middleware.RateLimitMiddleware
	Logger           logger.Logger
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
	EnableRequestLog bool
}

// New wires every route. Handlers left nil are not mounted.
func New(h Handlers, opts Options) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.Use(middleware.RequestLogMiddleware(opts.Logger, opts.Metrics, opts.EnableRequestLog))
	r.Use(middleware.ClientMiddleware)

	if h.Health != nil {
		r.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	}
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	if h.DriveAuth != nil {
		r.HandleFunc("/auth/google", h.DriveAuth.Begin).Methods(http.MethodGet)
		r.HandleFunc("/auth/google/callback", h.DriveAuth.Callback).Methods(http.MethodGet)
	}

	// Subrouters answer misses themselves; without these a method mismatch
	// under /api/v1 surfaces as a bare 404.
	api := r.PathPrefix("/api/v1").Subrouter()
	api.NotFoundHandler = http.HandlerFunc(notFound)
	api.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	if opts.RateLimit != nil {
		api.Use(opts.RateLimit.RateLimit)
	}

	authed := opts.Auth.Require()
	managers := opts.Auth.Require(entity.DesignationLPI, entity.DesignationPPI)

	if h.Auth != nil {
		api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
		api.HandleFunc("/auth/me", authed(h.Auth.Me)).Methods(http.MethodGet)
	}

	if e := h.Employees; e != nil {
		api.HandleFunc("/employees", managers(e.List)).Methods(http.MethodGet)
		api.HandleFunc("/employees", managers(e.Create)).Methods(http.MethodPost)
		api.HandleFunc("/employees/me/password", authed(e.ChangePassword)).Methods(http.MethodPut)
		api.HandleFunc("/employees/{id}", managers(e.Get)).Methods(http.MethodGet)
		api.HandleFunc("/employees/{id}", managers(e.Update)).Methods(http.MethodPut, http.MethodPatch)
		api.HandleFunc("/employees/{id}", managers(e.Delete)).Methods(http.MethodDelete)
	}

	if o := h.Organizations; o != nil {
		api.HandleFunc("/organizations", authed(o.List)).Methods(http.MethodGet)
		api.HandleFunc("/organizations", managers(o.Create)).Methods(http.MethodPost)
		api.HandleFunc("/organizations/{id}", authed(o.Get)).Methods(http.MethodGet)
		api.HandleFunc("/organizations/{id}", managers(o.Update)).Methods(http.MethodPut, http.MethodPatch)
		api.HandleFunc("/organizations/{id}", managers(o.Delete)).Methods(http.MethodDelete)
	}

	if i := h.Industries; i != nil {
		api.HandleFunc("/industries", authed(i.List)).Methods(http.MethodGet)
		api.HandleFunc("/industries", managers(i.Create)).Methods(http.MethodPost)
		api.HandleFunc("/industries/{id}", authed(i.Get)).Methods(http.MethodGet)
		api.HandleFunc("/industries/{id}", managers(i.Update)).Methods(http.MethodPut, http.MethodPatch)
		api.HandleFunc("/industries/{id}", managers(i.Delete)).Methods(http.MethodDelete)
	}

	if ev := h.Events; ev != nil {
		api.HandleFunc("/events", authed(ev.List)).Methods(http.MethodGet)
		api.HandleFunc("/events", managers(ev.Create)).Methods(http.MethodPost)
		api.HandleFunc("/events/{id}", authed(ev.Get)).Methods(http.MethodGet)
		api.HandleFunc("/events/{id}", managers(ev.Update)).Methods(http.MethodPut, http.MethodPatch)
		api.HandleFunc("/events/{id}", managers(ev.Delete)).Methods(http.MethodDelete)
		api.HandleFunc("/events/{id}/posters", managers(ev.AttachPosters)).Methods(http.MethodPost)
	}

	if t := h.Tasks; t != nil {
		api.HandleFunc("/tasks", authed(t.List)).Methods(http.MethodGet)
		api.HandleFunc("/tasks", authed(t.Create)).Methods(http.MethodPost)
		api.HandleFunc("/tasks/summary", authed(t.Summary)).Methods(http.MethodGet)
		api.HandleFunc("/tasks/{id}", authed(t.Get)).Methods(http.MethodGet)
		api.HandleFunc("/tasks/{id}", authed(t.Update)).Methods(http.MethodPut, http.MethodPatch)
		api.HandleFunc("/tasks/{id}", authed(t.Delete)).Methods(http.MethodDelete)
		api.HandleFunc("/tasks/{id}/files", authed(t.AttachFiles)).Methods(http.MethodPost)
		api.HandleFunc("/tasks/{id}/audit-logs", authed(t.History)).Methods(http.MethodGet)
	}

	if h.Audit != nil {
		api.HandleFunc("/audit-logs", managers(h.Audit.Search)).Methods(http.MethodGet)
	}

	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	response.NotFound(w, "Route not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	response.MethodNotAllowed(w, "Method not allowed")
}
