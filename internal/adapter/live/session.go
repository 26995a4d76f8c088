package live

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"user-directory/internal/navigation"
	"user-directory/internal/view"
	"user-directory/pkg/logger"
	"user-directory/pkg/security"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
)

// Source provides the data both views load.
type Source interface {
	view.ListSource
	view.DetailSource
}

// Session is one websocket connection driving a single navigation stack. It
// owns at most one active controller at a time.
type Session struct {
	id   string
	conn *websocket.Conn
	src  Source
	opts view.Options
	log  *zap.Logger
	out  *outbox

	ctx    context.Context
	cancel context.CancelFunc

	gen atomic.Uint64 // bumped on every route change

	mu     sync.Mutex
	closed bool
	route  navigation.Route
	list   *view.ListController
	detail *view.DetailController
	leave  func() // tears down the active controller
}

// NewSession wraps an accepted connection.
func NewSession(conn *websocket.Conn, src Source, opts view.Options, log *zap.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:   id,
		conn: conn,
		src:  src,
		opts: opts,
		log:  log.With(zap.String(string(logger.SessionIDKey), id)),
		out:  newOutbox(sendBufSize),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Run serves the session starting at startPath and blocks until the
// connection closes or ctx ends.
func (s *Session) Run(ctx context.Context, startPath string) error {
	s.ctx, s.cancel = context.WithCancel(logger.ContextWithSessionID(ctx, s.id))
	defer s.shutdown()

	s.conn.SetReadLimit(maxMessageSize)

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		s.writePump()
	}()

	s.log.Info("live session started", zap.String("path", startPath))
	s.Navigate(startPath)

	err := s.readPump()
	s.cancel()
	<-writeDone
	return err
}

// Close ends the session with the given status; Run returns once the read
// pump observes it.
func (s *Session) Close(code websocket.StatusCode, reason string) {
	_ = s.conn.Close(code, reason)
}

// Navigate resolves path, tears down the current controller and activates the
// one for the new route.
func (s *Session) Navigate(path string) {
	route := navigation.Resolve(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.leave != nil {
		s.leave()
		s.leave = nil
	}

	gen := s.gen.Add(1)
	s.route = route
	s.list, s.detail = nil, nil

	s.send(EventTypeNavigate, NavigatePayload{Path: route.Path})
	s.log.Debug("navigate",
		zap.String("requested", path),
		zap.String("path", route.Path),
		zap.Bool("redirected", route.Redirected),
	)

	switch route.View {
	case navigation.ViewDetail:
		dc := view.NewDetailController(s.src, s, s.opts)
		unsubscribe := dc.Subscribe(func(st view.DetailState) {
			s.sendState(gen, StatePayload{Route: route, View: route.View, Detail: &st})
		})
		s.detail = dc
		s.leave = func() {
			unsubscribe()
			dc.Close()
		}
		dc.Activate(s.ctx, route.Params)

	default:
		lc := view.NewListController(s.src, s, s.opts)
		unsubscribe := lc.Subscribe(func(st view.ListState) {
			s.sendState(gen, StatePayload{Route: route, View: route.View, List: &st})
		})
		s.list = lc
		s.leave = func() {
			unsubscribe()
			lc.Close()
		}
		lc.Activate(s.ctx)
	}
}

// readPump reads events until the connection closes.
func (s *Session) readPump() error {
	for {
		var event Event
		err := wsjson.Read(s.ctx, s.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				s.log.Info("live session closed")
				return nil
			}
			s.log.Warn("live session read error", zap.Error(err))
			return err
		}

		s.handleEvent(&event)
	}
}

// writePump writes queued events and keeps the connection alive.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.out.notify:
			for _, evt := range s.out.drain() {
				ctx, cancel := context.WithTimeout(s.ctx, writeWait)
				err := wsjson.Write(ctx, s.conn, evt)
				cancel()
				if err != nil {
					s.log.Debug("live session write error", zap.Error(err))
					s.cancel()
					return
				}
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(s.ctx, writeWait)
			err := s.conn.Ping(ctx)
			cancel()
			if err != nil {
				s.log.Debug("live session ping error", zap.Error(err))
				s.cancel()
				return
			}

		case <-s.ctx.Done():
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (s *Session) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeNavigate:
		var p NavigatePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			s.sendError(ErrCodeInvalidPayload, "invalid navigate payload")
			return
		}
		s.Navigate(p.Path)

	case EventTypeSearch:
		var p SearchPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			s.sendError(ErrCodeInvalidPayload, "invalid search payload")
			return
		}
		if err := security.ValidateSearchTerm(p.Value); err != nil {
			s.sendError(ErrCodeInvalidSearch, err.Error())
			return
		}
		if lc := s.activeList(); lc != nil {
			lc.SetSearch(p.Value)
			return
		}
		s.sendError(ErrCodeWrongView, "search requires the list view")

	case EventTypeClearSearch:
		if lc := s.activeList(); lc != nil {
			lc.ClearSearch()
			return
		}
		s.sendError(ErrCodeWrongView, "clear_search requires the list view")

	case EventTypeSelect:
		var p SelectPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			s.sendError(ErrCodeInvalidPayload, "invalid select payload")
			return
		}
		if lc := s.activeList(); lc != nil {
			lc.SelectUser(p.ID)
			return
		}
		s.sendError(ErrCodeWrongView, "select requires the list view")

	case EventTypeBack:
		if dc := s.activeDetail(); dc != nil {
			dc.BackToList()
			return
		}
		s.sendError(ErrCodeWrongView, "back requires the detail view")

	case EventTypeRetry:
		lc, dc := s.active()
		switch {
		case lc != nil:
			lc.Retry()
		case dc != nil:
			dc.Retry()
		}

	case EventTypePing:
		s.send(EventTypePong, nil)

	default:
		s.sendError(ErrCodeUnknownEvent, "unknown event type: "+event.Type)
	}
}

func (s *Session) active() (*view.ListController, *view.DetailController) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list, s.detail
}

func (s *Session) activeList() *view.ListController {
	lc, _ := s.active()
	return lc
}

func (s *Session) activeDetail() *view.DetailController {
	_, dc := s.active()
	return dc
}

// sendState queues a state event unless the route it belongs to was left.
func (s *Session) sendState(gen uint64, payload StatePayload) {
	if s.gen.Load() != gen {
		return
	}
	evt, err := NewEvent(EventTypeState, payload)
	if err != nil {
		s.log.Error("failed to encode state", zap.Error(err))
		return
	}
	s.out.pushState(evt)
}

func (s *Session) send(eventType string, payload any) {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		s.log.Error("failed to encode event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if !s.out.push(evt) {
		s.log.Warn("live session send buffer full, dropping event", zap.String("type", eventType))
	}
}

func (s *Session) sendError(code, message string) {
	s.send(EventTypeError, ErrorPayload{Code: code, Message: message})
}

func (s *Session) shutdown() {
	s.mu.Lock()
	s.closed = true
	leave := s.leave
	s.leave = nil
	s.list, s.detail = nil, nil
	s.mu.Unlock()

	if leave != nil {
		leave()
	}
	s.cancel()
	_ = s.conn.Close(websocket.StatusNormalClosure, "")
}
