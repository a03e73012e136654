package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kapu/warmtalk-go/internal/constants"
	"github.com/kapu/warmtalk-go/internal/domain"
	"github.com/kapu/warmtalk-go/internal/util"
)

// Translator is the request path the session drives. Implemented by
// ai.Translator.
type Translator interface {
	Translate(ctx context.Context, req domain.TranslationRequest, onProgress func(string)) (*domain.TranslationResult, error)
}

// HistoryRecorder receives finished translations. Implemented by
// history.Service.
type HistoryRecorder interface {
	Record(ctx context.Context, result *domain.TranslationResult, scenario domain.Scenario) error
}

// session owns one browser connection. At most one translation runs per
// session: a new translate request cancels the previous one and clears any
// earlier error on the client side by starting fresh.
type session struct {
	conn       *websocket.Conn
	translator Translator
	history    HistoryRecorder
	logger     *zap.Logger

	writeMu sync.Mutex

	requestMu sync.Mutex
	cancel    context.CancelFunc

	inflight sync.WaitGroup
}

func newSession(conn *websocket.Conn, translator Translator, history HistoryRecorder, logger *zap.Logger) *session {
	return &session{
		conn:       conn,
		translator: translator,
		history:    history,
		logger:     logger,
	}
}

// run reads client messages until the socket closes, then waits for the
// in-flight request to wind down.
func (s *session) run(ctx context.Context) {
	defer s.drain()

	s.conn.SetReadLimit(constants.ServerConfig.MaxMessageBytes)

	// Unblock the read loop when the server shuts down.
	stop := context.AfterFunc(ctx, func() { s.conn.Close() })
	defer stop()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Warn("Unparseable client message",
				zap.Error(err),
				zap.String("data", util.TruncateString(string(raw), 200)),
			)
			continue
		}

		switch msg.Type {
		case MsgTranslate:
			s.startTranslation(ctx, msg)
		case MsgCancel:
			s.cancelInflight()
		default:
			s.logger.Warn("Unknown message type", zap.String("type", msg.Type))
		}
	}
}

func (s *session) startTranslation(ctx context.Context, msg ClientMessage) {
	s.cancelInflight()

	reqCtx, cancel := context.WithCancel(ctx)

	s.requestMu.Lock()
	s.cancel = cancel
	s.requestMu.Unlock()

	req := domain.TranslationRequest{
		OriginalText: msg.OriginalText,
		Scenario:     domain.ParseScenario(msg.Scenario),
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()

		result, err := s.translator.Translate(reqCtx, req, func(preview string) {
			// A superseded request must not interleave its previews with
			// the replacement's.
			if reqCtx.Err() == nil {
				s.send(previewMessage(preview))
			}
		})
		if err != nil {
			if reqCtx.Err() != nil {
				// Superseded or closed; the client is not waiting for this
				// error anymore.
				return
			}
			s.logger.Warn("Translation failed", zap.Error(err))
			s.send(errorMessage(err))
			return
		}

		s.send(resultMessage(result))

		if s.history != nil {
			if err := s.history.Record(ctx, result, req.Scenario); err != nil {
				s.logger.Warn("History write failed", zap.Error(err))
			}
		}
	}()
}

func (s *session) cancelInflight() {
	s.requestMu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.requestMu.Unlock()
}

func (s *session) send(msg ServerMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(constants.ServerConfig.WriteTimeout))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Warn("WebSocket write failed", zap.Error(err))
	}
}

func (s *session) drain() {
	s.cancelInflight()
	s.inflight.Wait()
	s.conn.Close()
}
