package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-directory/internal/adapter/diagnostics"
	"user-directory/internal/navigation"
	"user-directory/internal/usecase/user"
	"user-directory/internal/view"
	apperrors "user-directory/pkg/errors"
	"user-directory/pkg/logger"
	"user-directory/pkg/security"
)

// MaxRecentLimit caps the limit accepted by the diagnostics endpoint
const MaxRecentLimit = 500

// RecentLister lists recorded upstream failures, newest first
type RecentLister interface {
	Recent(ctx context.Context, limit int) ([]diagnostics.Entry, error)
}

// ViewHandler serves view snapshots and the JSON pass-through API
type ViewHandler struct {
	uc     user.Usecase
	opts   view.Options
	recent RecentLister
	log    *zap.Logger
}

// NewViewHandler creates a new ViewHandler instance. recent may be nil when
// the diagnostics store is disabled.
func NewViewHandler(uc user.Usecase, opts view.Options, recent RecentLister, log *zap.Logger) *ViewHandler {
	return &ViewHandler{
		uc:     uc,
		opts:   opts,
		recent: recent,
		log:    log,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ListView handles GET /users
func (h *ViewHandler) ListView(c *gin.Context) {
	search := c.Query("search")
	if err := security.ValidateSearchTerm(search); err != nil {
		h.handleError(c, err)
		return
	}

	ctx := c.Request.Context()
	lc := view.NewListController(h.uc, nil, h.opts)
	defer lc.Close()

	lc.Activate(ctx)
	if search != "" {
		lc.ApplySearch(search)
	}

	state, err := lc.WaitSettled(ctx)
	if err != nil {
		h.abandoned(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// DetailView handles GET /users/:id
func (h *ViewHandler) DetailView(c *gin.Context) {
	ctx := c.Request.Context()
	dc := view.NewDetailController(h.uc, nil, h.opts)
	defer dc.Close()

	dc.Activate(ctx, navigation.Params{"id": c.Param("id")})

	state, err := dc.WaitSettled(ctx)
	if err != nil {
		h.abandoned(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// ListUsers handles GET /api/users
func (h *ViewHandler) ListUsers(c *gin.Context) {
	users, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /api/users/:id
func (h *ViewHandler) GetUser(c *gin.Context) {
	idStr := c.Param("id")
	id, ok := view.ParseUserID(idStr)
	if !ok {
		logger.WithContext(c.Request.Context(), h.log).Warn("Invalid user ID", zap.String("id", idStr))
		h.handleError(c, apperrors.ErrInvalidUserID)
		return
	}

	u, err := h.uc.GetUser(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// RecentErrors handles GET /debug/errors
func (h *ViewHandler) RecentErrors(c *gin.Context) {
	if h.recent == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "diagnostics store is disabled",
		})
		return
	}

	limit := diagnostics.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > MaxRecentLimit {
			h.handleError(c, apperrors.NewValidationError("limit must be between 1 and "+strconv.Itoa(MaxRecentLimit)))
			return
		}
		limit = n
	}

	entries, err := h.recent.Recent(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"errors": entries})
}

// abandoned answers a snapshot request whose context ended before the view settled
func (h *ViewHandler) abandoned(c *gin.Context, err error) {
	logger.WithContext(c.Request.Context(), h.log).Warn("view did not settle", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusGatewayTimeout, ErrorResponse{
		Error:   "timeout",
		Message: apperrors.MsgUnexpected,
	})
}

// handleError maps errors to HTTP status codes
func (h *ViewHandler) handleError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	kind := apperrors.KindOf(err)

	l := logger.WithContext(c.Request.Context(), h.log)
	if status >= http.StatusInternalServerError {
		l.Error("request failed", zap.String("kind", string(kind)), zap.Error(err))
	} else {
		l.Warn("request rejected", zap.String("kind", string(kind)), zap.Error(err))
	}

	c.JSON(status, ErrorResponse{
		Error:   string(kind),
		Message: apperrors.Message(err),
	})
}
