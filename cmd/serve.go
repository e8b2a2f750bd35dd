package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/claims-cli/internal/model"
	"github.com/sells-group/claims-cli/internal/wizard"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local claim session API",
	Long:  "Exposes the claim wizard over HTTP so browser front ends can drive sessions: field updates, step navigation, prediction status, and submission.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		be := initBackend()
		orch := initOrchestrator(be)

		hub := newSessionHub(func() *wizard.Session {
			return wizard.NewSession(orch, be)
		})
		defer hub.closeAll()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(hub, cfg.Server.CORSOrigins),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// sessionHub tracks live wizard sessions by id.
type sessionHub struct {
	mu       sync.Mutex
	sessions map[string]*wizard.Session
	create   func() *wizard.Session
}

func newSessionHub(create func() *wizard.Session) *sessionHub {
	return &sessionHub{
		sessions: make(map[string]*wizard.Session),
		create:   create,
	}
}

func (h *sessionHub) open() (string, *wizard.Session) {
	id := uuid.NewString()
	s := h.create()
	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()
	return id, s
}

func (h *sessionHub) get(id string) (*wizard.Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	return s, ok
}

func (h *sessionHub) close(id string) bool {
	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

func (h *sessionHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		s.Close()
		delete(h.sessions, id)
	}
}

func newRouter(hub *sessionHub, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, _ *http.Request) {
			id, s := hub.open()
			writeJSON(w, http.StatusCreated, sessionResponse{ID: id, State: s.State()})
		})

		r.Route("/{id}", func(r chi.Router) {
			r.Use(hub.require)

			r.Get("/", func(w http.ResponseWriter, req *http.Request) {
				id, s := sessionFrom(req)
				writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: s.State()})
			})

			r.Delete("/", func(w http.ResponseWriter, req *http.Request) {
				id, _ := sessionFrom(req)
				hub.close(id)
				w.WriteHeader(http.StatusNoContent)
			})

			r.Patch("/fields", func(w http.ResponseWriter, req *http.Request) {
				id, s := sessionFrom(req)
				var fields model.FieldValues
				if err := json.NewDecoder(req.Body).Decode(&fields); err != nil {
					writeError(w, http.StatusBadRequest, "invalid request body")
					return
				}
				s.SetFields(fields)
				writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: s.State()})
			})

			r.Post("/next", func(w http.ResponseWriter, req *http.Request) {
				id, s := sessionFrom(req)
				writeStepResult(w, id, s, s.Next())
			})

			r.Post("/back", func(w http.ResponseWriter, req *http.Request) {
				id, s := sessionFrom(req)
				s.Back()
				writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: s.State()})
			})

			r.Post("/regenerate", func(w http.ResponseWriter, req *http.Request) {
				id, s := sessionFrom(req)
				writeStepResult(w, id, s, s.Regenerate())
			})

			r.Get("/prediction", func(w http.ResponseWriter, req *http.Request) {
				id, s := sessionFrom(req)
				if req.URL.Query().Get("wait") == "true" {
					if _, err := s.WaitPrediction(req.Context()); err != nil &&
						errors.Is(err, req.Context().Err()) {
						writeError(w, http.StatusRequestTimeout, "wait cancelled")
						return
					}
				}
				writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: s.State()})
			})

			r.Post("/submit", func(w http.ResponseWriter, req *http.Request) {
				id, s := sessionFrom(req)
				claim, err := s.Submit(req.Context())
				if err != nil {
					writeWizardError(w, id, s, err)
					return
				}
				writeJSON(w, http.StatusCreated, sessionResponse{
					ID:    id,
					State: s.State(),
					Claim: claim,
				})
			})
		})
	})

	return r
}

type sessionResponse struct {
	ID    string       `json:"id"`
	State wizard.State `json:"state"`
	Claim *model.Claim `json:"claim,omitempty"`
	Error string       `json:"error,omitempty"`

	// MissingFields is set for validation failures so the UI can
	// highlight them in place.
	MissingFields []string `json:"missing_fields,omitempty"`
}

type sessionKey struct{}

type sessionEntry struct {
	id      string
	session *wizard.Session
}

func withSession(ctx context.Context, id string, s *wizard.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionEntry{id: id, session: s})
}

func sessionFrom(req *http.Request) (string, *wizard.Session) {
	e := req.Context().Value(sessionKey{}).(sessionEntry)
	return e.id, e.session
}

// require resolves the session id or 404s.
func (h *sessionHub) require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		s, ok := h.get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		ctx := withSession(req.Context(), id, s)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func writeStepResult(w http.ResponseWriter, id string, s *wizard.Session, err error) {
	if err != nil {
		writeWizardError(w, id, s, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: s.State()})
}

// writeWizardError maps wizard sentinels onto HTTP statuses, returning
// the session state alongside so clients never need a follow-up GET.
func writeWizardError(w http.ResponseWriter, id string, s *wizard.Session, err error) {
	resp := sessionResponse{ID: id, State: s.State(), Error: err.Error()}

	status := http.StatusInternalServerError
	var vErr *wizard.ValidationError
	switch {
	case errors.As(err, &vErr):
		status = http.StatusUnprocessableEntity
		resp.MissingFields = vErr.Missing
	case errors.Is(err, wizard.ErrPredictionNotReady),
		errors.Is(err, wizard.ErrPredictionInFlight),
		errors.Is(err, wizard.ErrSubmissionInFlight),
		errors.Is(err, wizard.ErrAlreadySubmitted):
		status = http.StatusConflict
	case errors.Is(err, wizard.ErrAtFinalStep),
		errors.Is(err, wizard.ErrForwardJump):
		status = http.StatusBadRequest
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
