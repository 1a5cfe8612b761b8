package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kindling-app/kindling/internal/app"
	"github.com/kindling-app/kindling/internal/auth"
	"github.com/kindling-app/kindling/internal/errors"
	"github.com/kindling-app/kindling/internal/metrics"
)

// NewRouter assembles the HTTP router: ambient middleware, public endpoints,
// and every registrar's routes behind the auth middleware.
func NewRouter(appCtx *app.AppContext, public []Registrar, protected []Registrar) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(appCtx))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		errors.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Uploaded photos are plain static files behind the store's public URL.
	r.Handle("/photos/*", http.StripPrefix("/photos/",
		http.FileServer(http.Dir(appCtx.Config.Upload.Dir))))

	r.Route("/api", func(api chi.Router) {
		for _, reg := range public {
			reg.Register(api)
		}
		api.Group(func(priv chi.Router) {
			priv.Use(auth.Middleware(appCtx))
			for _, reg := range protected {
				reg.Register(priv)
			}
		})
	})

	return r
}

// Start boots the HTTP server and blocks until ctx is canceled, then shuts
// down gracefully.
func Start(ctx context.Context, appCtx *app.AppContext, handler http.Handler) error {
	addr := fmt.Sprintf("%s:%s", appCtx.Config.HTTP.Host, appCtx.Config.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs one line per request through the app's slog logger.
func requestLogger(appCtx *app.AppContext) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			appCtx.Logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
