package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"esg-brsr/internal/queue"
)

// StatusHandler expone el estado de procesamiento para la capa de monitoreo.
type StatusHandler struct {
	logger *zap.Logger
	status queue.StatusStore
}

func NewStatusHandler(logger *zap.Logger, status queue.StatusStore) *StatusHandler {
	return &StatusHandler{logger: logger, status: status}
}

// Health maneja GET /health.
func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetDocumentStatus maneja GET /api/v1/documents/status?document=KEY.
// La clave va en query string porque contiene "/".
func (h *StatusHandler) GetDocumentStatus(c *gin.Context) {
	documentKey := strings.TrimSpace(c.Query("document"))
	if documentKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document query parameter is required"})
		return
	}

	status, err := h.status.Get(c.Request.Context(), documentKey)
	if errors.Is(err, queue.ErrStatusNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "document status not found"})
		return
	}
	if err != nil {
		h.logger.Warn("status lookup failed", zap.String("document_key", documentKey), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status lookup failed"})
		return
	}

	c.JSON(http.StatusOK, status)
}
