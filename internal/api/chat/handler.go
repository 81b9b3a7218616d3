package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openscribe/draftpad/internal/api/middleware"
	"github.com/openscribe/draftpad/internal/domain"
	"github.com/openscribe/draftpad/internal/service"
	"github.com/openscribe/draftpad/internal/upstream"
	"go.uber.org/zap"
)

// relayBufSize bounds server memory per in-flight relay; the generated
// text itself is unbounded.
const relayBufSize = 8192

// Handler relays chat requests to the upstream service, forwarding the
// token stream back to the caller verbatim.
type Handler struct {
	relayService *service.RelayService
	logger       *zap.Logger
}

// NewHandler creates a new chat handler
func NewHandler(relayService *service.RelayService, logger *zap.Logger) *Handler {
	return &Handler{relayService: relayService, logger: logger}
}

// RegisterRoutes registers chat routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.Relay)
}

// Relay opens the upstream stream and pipes it through unmodified.
// If the upstream call fails before any bytes flow, the caller gets a
// single JSON error response, never a half-open stream. Once streaming
// has started the body is forwarded chunk by chunk with a flush after
// each write; termination is signaled by connection close alone.
func (h *Handler) Relay(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body, err := h.relayService.Open(c.Request.Context(), &req)
	if err != nil {
		h.writeUpstreamError(c, err)
		return
	}
	defer body.Close()

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		h.logger.Error("response writer does not support streaming")
		return
	}

	buf := make([]byte, relayBufSize)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := c.Writer.Write(buf[:n]); werr != nil {
				// Client went away; upstream body is closed by the defer.
				h.logger.Debug("relay client disconnected", zap.Error(werr))
				return
			}
			flusher.Flush()
		}
		if rerr != nil {
			var interrupted *upstream.StreamInterruptedError
			if errors.As(rerr, &interrupted) {
				// Mid-stream failure: the status line is long gone, so the
				// only honest signal left is closing the connection early.
				h.logger.Warn("upstream stream interrupted", zap.Error(rerr))
			}
			return
		}
	}
}

func (h *Handler) writeUpstreamError(c *gin.Context, err error) {
	var rejected *upstream.RejectedError
	switch {
	case errors.As(err, &rejected):
		h.logger.Warn("upstream rejected request",
			zap.Int("status", rejected.Status),
			zap.String("user_id", middleware.UserID(c)),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, upstream.ErrUnreachable):
		h.logger.Warn("upstream unreachable", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.logger.Error("relay failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
