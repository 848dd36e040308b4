package monitoring

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	SigninSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signin_success_total",
		Help: "Total successful signin attempts",
	})

	SigninFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "signin_failure_total",
		Help: "Total failed signin attempts",
	}, []string{"reason"})

	RegisterSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "register_success_total",
		Help: "Total successful registrations",
	})

	MicropostsPosted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "microposts_posted_total",
		Help: "Total microposts successfully created",
	})

	FollowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "follows_total",
		Help: "Total follow actions",
	})

	UnfollowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "unfollows_total",
		Help: "Total unfollow actions",
	})
)

func init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(SigninSuccess)
	prometheus.MustRegister(SigninFailure)
	prometheus.MustRegister(RegisterSuccess)
	prometheus.MustRegister(MicropostsPosted)
	prometheus.MustRegister(FollowsTotal)
	prometheus.MustRegister(UnfollowsTotal)
}

type statusRecordingWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecordingWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack keeps websocket upgrades working behind the instrumentation.
func (rw *statusRecordingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return hj.Hijack()
}

// InstrumentHandler records a duration sample per request, labelled by
// method, path and status.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &statusRecordingWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		// the route pattern keeps ids out of the label set
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		RequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}
