package api

import (
	_ "fxconvert/docs"
	"fxconvert/internal/metrics"
	"fxconvert/internal/rate/handler"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swagger "github.com/swaggo/http-swagger"
)

func NewRouter(rateHandler *handler.Handler, m *metrics.Metrics, gatherer prometheus.Gatherer, allowedOrigins []string) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Swagger UI
	router.Get("/swagger/*", swagger.WrapHandler)

	router.Group(func(r chi.Router) {
		r.Use(countRequests(m))

		r.Get("/ws", rateHandler.Socket)
		r.Route("/api/v1", func(r chi.Router) {
			r.Post("/conversions", rateHandler.Convert)
			r.Get("/conversions", rateHandler.ListConversions)
			r.Get("/currencies", rateHandler.GetSupportedCodes)
		})
	})
	return router
}

// countRequests labels requests by route pattern, so path values never
// become label values.
func countRequests(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			pattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					pattern = p
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.ObserveHTTPRequest(pattern, r.Method, strconv.Itoa(status/100)+"xx")
		})
	}
}
