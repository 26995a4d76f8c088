package live

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"user-directory/internal/navigation"
	"user-directory/internal/view"
)

// Hub accepts live sessions and tracks them for shutdown.
type Hub struct {
	src  Source
	opts view.Options
	log  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewHub creates a Hub serving views backed by src.
func NewHub(src Source, opts view.Options, log *zap.Logger) *Hub {
	return &Hub{
		src:      src,
		opts:     opts,
		log:      log.Named("live"),
		sessions: make(map[string]*Session),
	}
}

// ServeHTTP upgrades the request and runs a session until it ends. The start
// path is taken from ?path=, defaulting to the user list.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startPath := r.URL.Query().Get("path")
	if startPath == "" {
		startPath = navigation.ListPath
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow any origin (dev mode)
	})
	if err != nil {
		h.log.Warn("websocket accept failed", zap.Error(err))
		return
	}

	sess := NewSession(conn, h.src, h.opts, h.log)
	if !h.register(sess) {
		sess.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.unregister(sess)

	if err := sess.Run(r.Context(), startPath); err != nil {
		h.log.Debug("live session ended with error", zap.String("session_id", sess.ID()), zap.Error(err))
	}
}

// Handle adapts the hub to gin.
func (h *Hub) Handle(c *gin.Context) {
	h.ServeHTTP(c.Writer, c.Request)
}

// Count returns the number of connected sessions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close disconnects every session and refuses new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close(websocket.StatusGoingAway, "server shutting down")
	}
	h.log.Info("live sessions closed", zap.Int("count", len(sessions)))
	return nil
}

func (h *Hub) register(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.sessions[s.ID()] = s
	h.log.Debug("session connected", zap.String("session_id", s.ID()), zap.Int("total", len(h.sessions)))
	return true
}

func (h *Hub) unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s.ID())
	h.log.Debug("session disconnected", zap.String("session_id", s.ID()), zap.Int("total", len(h.sessions)))
}
