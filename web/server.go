// ABOUTME: HTTP front end over the screen controllers
// ABOUTME: Public pages, session-guarded pages that 303 to /login, and a JSON API under /api
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/harperreed/shaft/viewmodel"
)

type Options struct {
	AllowedOrigins []string
}

type Server struct {
	sessions viewmodel.SessionManager
	stores   viewmodel.Stores
	log      zerolog.Logger
	router   chi.Router
}

func NewServer(sessions viewmodel.SessionManager, stores viewmodel.Stores, opts Options, log zerolog.Logger) *Server {
	s := &Server{sessions: sessions, stores: stores, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Get("/register", s.handleRegisterPage)
	r.Post("/register", s.handleRegister)
	r.Get("/explore", s.handleExplore)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requirePageSession)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/contacts", s.handleListContacts)
		r.Get("/deals", s.handleListDeals)
		r.Get("/tasks", s.handleListTasks)
		r.Get("/calendar", s.handleListEvents)
		r.Get("/analytics", s.handleAnalytics)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireAPISession)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/analytics", s.handleAnalytics)
		r.Get("/analytics/pipeline.dot", s.handlePipelineGraph)

		r.Get("/contacts", s.handleListContacts)
		r.Post("/contacts", s.handleCreateContact)
		r.Put("/contacts/{id}", s.handleUpdateContact)
		r.Delete("/contacts/{id}", s.handleDeleteContact)

		r.Get("/deals", s.handleListDeals)
		r.Post("/deals", s.handleCreateDeal)
		r.Put("/deals/{id}", s.handleUpdateDeal)
		r.Delete("/deals/{id}", s.handleDeleteDeal)

		r.Get("/tasks", s.handleListTasks)
		r.Post("/tasks", s.handleCreateTask)
		r.Post("/tasks/{id}/toggle", s.handleToggleTask)
		r.Delete("/tasks/{id}", s.handleDeleteTask)

		r.Get("/events", s.handleListEvents)
		r.Post("/events", s.handleCreateEvent)
		r.Post("/events/{id}/move", s.handleMoveEvent)
		r.Delete("/events/{id}", s.handleDeleteEvent)
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("starting web server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func (s *Server) requirePageSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.sessions.Current() == nil {
			http.Redirect(w, r, viewmodel.PathLogin, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAPISession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.sessions.Current() == nil {
			writeError(w, http.StatusUnauthorized, "Not signed in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFailure maps a controller error to a status code.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, viewmodel.ErrNoSession):
		writeError(w, http.StatusUnauthorized, "Not signed in")
	case viewmodel.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
