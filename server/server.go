package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lamwh/microblog-backend/env"
	"github.com/lamwh/microblog-backend/middleware"
	"github.com/lamwh/microblog-backend/monitoring"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupMiddlewares installs the router-wide middleware chain and the
// metrics endpoint.
func SetupMiddlewares(r *chi.Mux) {
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.WithDeviceInfo)
	r.Use(monitoring.InstrumentHandler)
	r.Handle("/metrics", promhttp.Handler())
}

func New(h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + env.APP_PORT,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
