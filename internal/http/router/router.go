package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"delivery-dispatch/internal/http/handlers"
	"delivery-dispatch/internal/http/middleware"
)

// New constructs a chi-based http.Handler with base middleware and
// routes.
func New(
	base *handlers.Handlers,
	orders *handlers.OrderHandler,
	workers *handlers.WorkerHandler,
	requests *handlers.ChangeRequestHandler,
	admin *handlers.AdminHandler,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(10 * time.Second))
	r.Use(middleware.Observability)

	r.Get("/ping", base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(base.HealthcheckHead))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", orders.List)
		r.Post("/", orders.Create)
		r.Get("/{id}", orders.GetByID)
		r.Patch("/{id}", orders.Update)
		r.Delete("/{id}", orders.Delete)
		r.Post("/{id}/accept", orders.Accept)
		r.Post("/{id}/reject", orders.Reject)
		r.Post("/{id}/deliver", orders.Deliver)
		r.Post("/{id}/change-requests", requests.Submit)
	})

	r.Route("/workers", func(r chi.Router) {
		r.Get("/", workers.List)
		r.Post("/", workers.Create)
		r.Get("/{id}", workers.GetByID)
		r.Patch("/{id}", workers.Update)
		r.Delete("/{id}", workers.Delete)
		r.Get("/{id}/summary", workers.Summary)
	})

	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", workers.ListExpenses)
		r.Post("/", workers.CreateExpense)
		r.Delete("/{id}", workers.DeleteExpense)
	})

	r.Route("/change-requests", func(r chi.Router) {
		r.Get("/", requests.List)
		r.Post("/{id}/approve", requests.Approve)
		r.Post("/{id}/reject", requests.Reject)
	})

	r.Get("/state", admin.State)
	r.Route("/admin", func(r chi.Router) {
		r.Post("/backup", admin.Backup)
		r.Post("/restore", admin.Restore)
		r.Post("/reset", admin.Reset)
	})

	r.NotFound(http.HandlerFunc(base.NotFound))

	return r
}
