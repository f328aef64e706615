package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/collabboard/board-api/internal/service"
	"github.com/collabboard/board-api/pkg/respond"
)

const recentLogLimit = 20

type LogHandler struct {
	audit  *service.AuditRecorder
	logger *zap.Logger
}

func NewLogHandler(audit *service.AuditRecorder, logger *zap.Logger) *LogHandler {
	return &LogHandler{audit: audit, logger: logger}
}

func (h *LogHandler) Recent(w http.ResponseWriter, r *http.Request) {
	logs, err := h.audit.Recent(r.Context(), recentLogLimit)
	if err != nil {
		h.logger.Error("failed to load logs", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "Server error")
		return
	}
	respond.JSON(w, r, http.StatusOK, logs)
}
