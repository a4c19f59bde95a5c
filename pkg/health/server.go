package health

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Checker reports an error when a dependency is not usable.
type Checker func(ctx context.Context) error

func NewHealthCheckServer(listen, path string, handler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	return &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func DefaultHandler(checks map[string]Checker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.Warn().Err(err).Str("check", name).Msg("health check failed")

				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(name + " is unavailable"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}
