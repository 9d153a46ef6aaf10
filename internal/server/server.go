// Package server implements the taskboard backend: the static version marker, the runtime
// configuration document and the task API with its push channel.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tasklist/taskboard/internal/config"
	tbhttp "github.com/tasklist/taskboard/internal/http"
	"github.com/tasklist/taskboard/internal/task"
)

const (
	shutdownTimeout = 10 * time.Second
	pingInterval    = 30 * time.Second
	writeTimeout    = 10 * time.Second
	maxRequestBody  = 64 << 10
)

// Server serves the taskboard backend.
type Server struct {
	cfg      config.ServeConfig
	tasks    task.Service
	hub      *Hub
	upgrader websocket.Upgrader
}

func New(cfg config.ServeConfig, tasks task.Service) *Server {
	return &Server{
		cfg:   cfg,
		tasks: tasks,
		hub:   NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Handler returns the HTTP handler of all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+tbhttp.VersionPath, s.handleVersion)
	mux.HandleFunc("GET /config.json", s.handleConfig)
	mux.HandleFunc("GET "+tbhttp.TasksPath, s.handleList)
	mux.HandleFunc("POST "+tbhttp.TasksPath, s.handleCreate)
	mux.HandleFunc("POST "+tbhttp.TasksPath+"/{id}/toggle", s.handleToggle)
	mux.HandleFunc("DELETE "+tbhttp.TasksPath+"/{id}", s.handleRemove)
	mux.HandleFunc("GET "+tbhttp.WatchPath, s.handleWatch)

	return logRequests(mux)
}

// Serve accepts connections on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down.")
		// hijacked websocket connections are not covered by Shutdown
		s.hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	log.Info().Str("addr", ln.Addr().String()).Str("version", s.cfg.Version).Msg("Serving taskboard.")

	return s.Serve(ctx, ln)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	v := s.cfg.Version
	if s.cfg.VersionFile != "" {
		b, err := os.ReadFile(s.cfg.VersionFile)
		if err != nil {
			log.Err(err).Str("path", s.cfg.VersionFile).Msg("Failed to read version file.")
			http.NotFound(w, r)
			return
		}
		v = strings.TrimSpace(string(b))
	}

	noStore(w)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintln(w, v)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	c := s.cfg.AppConfig
	if c.BackendURL == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		c.BackendURL = scheme + "://" + r.Host
	}

	noStore(w)
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, tbhttp.ErrorResponse{Error: "invalid request body"})
		return
	}

	t, err := s.tasks.Create(r.Context(), in.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.Publish(task.Event{Kind: task.EventCreated, TaskID: t.ID})
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	t, err := s.tasks.Toggle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.Publish(task.Event{Kind: task.EventToggled, TaskID: t.ID})
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.tasks.Remove(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.hub.Publish(task.Event{Kind: task.EventRemoved, TaskID: id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		log.Debug().Err(err).Msg("Failed to upgrade watch connection.")
		return
	}
	defer conn.Close()

	events, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	// The client never sends anything, but reading is required to process control frames and notice a close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeTimeout))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}

func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to write response.")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, task.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, task.ErrEmptyText):
		status = http.StatusBadRequest
	default:
		log.Err(err).Msg("Request failed.")
	}
	writeJSON(w, status, tbhttp.ErrorResponse{Error: err.Error()})
}
