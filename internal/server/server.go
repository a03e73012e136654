package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/kapu/warmtalk-go/internal/constants"
	"github.com/kapu/warmtalk-go/internal/domain"
	"github.com/kapu/warmtalk-go/internal/prompt"
	"github.com/kapu/warmtalk-go/internal/service/history"
)

// Server exposes the translation socket and the small REST surface around it.
type Server struct {
	httpServer *http.Server
	upgrader   websocket.Upgrader
	translator Translator
	history    *history.Service
	logger     *zap.Logger

	sessions conc.WaitGroup

	// baseCtx outlives individual requests: upgraded sockets are hijacked
	// from the HTTP server, so their lifetime is tied to this instead of
	// the request context.
	baseCtx   context.Context
	cancelAll context.CancelFunc
}

func New(addr string, translator Translator, historySvc *history.Service, logger *zap.Logger) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The UI is served from the same origin in production; local dev
			// runs the frontend on a separate port.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		translator: translator,
		history:    historySvc,
		logger:     logger,
	}
	s.baseCtx, s.cancelAll = context.WithCancel(context.Background())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/scenarios", s.handleScenarios)
	mux.HandleFunc("/api/methodologies", s.handleMethodologies)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: constants.ServerConfig.ReadTimeout,
	}

	return s
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting connections, then waits for open sessions to
// finish their in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.cancelAll()
	s.sessions.Wait()
	s.logger.Info("HTTP server stopped")
	return err
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	s.logger.Info("Client connected", zap.String("remote", conn.RemoteAddr().String()))

	sess := newSession(conn, s.translator, s.history, s.logger)
	s.sessions.Go(func() {
		sess.run(s.baseCtx)
		s.logger.Info("Client disconnected", zap.String("remote", conn.RemoteAddr().String()))
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.history.List(r.Context()))
	case http.MethodDelete:
		if err := s.history.Clear(r.Context()); err != nil {
			s.logger.Error("History clear failed", zap.Error(err))
			http.Error(w, "failed to clear history", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleScenarios lists the selectable contexts with their labels and input
// placeholders, in display order.
func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type scenarioInfo struct {
		ID          domain.Scenario `json:"id"`
		Label       string          `json:"label"`
		Placeholder string          `json:"placeholder"`
	}

	scenarios := domain.AllScenarios()
	out := make([]scenarioInfo, 0, len(scenarios))
	for _, sc := range scenarios {
		out = append(out, scenarioInfo{ID: sc, Label: sc.Label(), Placeholder: sc.Placeholder()})
	}

	writeJSON(w, http.StatusOK, out)
}

// handleMethodologies exposes the framework reference table the UI shows
// alongside results.
func (s *Server) handleMethodologies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, prompt.Methodologies)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
