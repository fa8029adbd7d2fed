package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Hemantgithubpro/rewear-1/internal/handler"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/auth"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/observability"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis"
)

// SetupRouter builds the HTTP API. Prometheus metrics are served separately.
func SetupRouter(h *handler.Handler, redisClient redis.RedisClient, tokens *auth.TokenManager) http.Handler {
	router := mux.NewRouter()
	router.Use(metricsMiddleware)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	authenticated := auth.AuthMiddleware(redisClient, tokens)
	adminOnly := func(next http.Handler) http.Handler {
		return authenticated(auth.RequireAdmin(next))
	}

	apiRouter := router.PathPrefix("/api").Subrouter()
	h.RegisterPublicRoutes(apiRouter, auth.OptionalAuth(redisClient, tokens))
	h.RegisterProtectedRoutes(apiRouter, authenticated)
	h.RegisterAdminRoutes(apiRouter, adminOnly)

	return otelhttp.NewHandler(router, "rewear-http")
}

// metricsMiddleware labels requests by route template so ids do not blow up
// the label cardinality.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}

		recorder := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)

		if recorder.status == 0 {
			recorder.status = http.StatusOK
		}
		observability.HTTPRequests.WithLabelValues(r.Method, endpoint, strconv.Itoa(recorder.status)).Inc()
		observability.HTTPRequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

// statusRecorder captures the response status.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}
