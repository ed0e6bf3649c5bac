package internal

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kmorozov/taskdeck/internal/config"
	"github.com/kmorozov/taskdeck/internal/task"
	"github.com/kmorozov/taskdeck/pkg/cerr"
	"github.com/kmorozov/taskdeck/pkg/clog"
)

type Server struct {
	server     *http.Server
	env        *config.Env
	taskServer *task.Server
}

func NewServer(env *config.Env, taskServer *task.Server) *Server {
	return &Server{
		env:        env,
		taskServer: taskServer,
	}
}

// ListenAndServe starts the HTTP server. The provided context becomes the
// base context of every request, so cancelling it (shutdown signal) also
// cancels long-lived event streams.
func (s *Server) ListenAndServe(ctx context.Context) error {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(clog.SlogChiMiddleware())
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			cerr.WriteJSONError(r.Context(), w, cerr.NewError(cerr.NotFound, "not found", nil))
		})
		s.taskServer.Routes(r)
	})

	mux := http.NewServeMux()
	mux.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	mux.Handle("/api/", r)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(mux)

	s.server = &http.Server{
		Addr:    net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort),
		Handler: h2c.NewHandler(corsHandler, &http2.Server{}),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
