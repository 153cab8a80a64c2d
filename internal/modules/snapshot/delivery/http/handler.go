package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	snapshotService "ramplog.app/backend/internal/modules/snapshot/service"
	"ramplog.app/backend/pkg/response"
)

type SnapshotHandler struct {
	service snapshotService.SnapshotService
}

func NewSnapshotHandler(service snapshotService.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{service: service}
}

func (h *SnapshotHandler) GetSnapshot(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	previous := parseETag(c.GetHeader("If-None-Match"))

	snapshot, notModified, err := h.service.Build(c.Request.Context(), userID, previous)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if notModified {
		c.Header("ETag", formatETag(previous))
		c.Status(http.StatusNotModified)
		return
	}

	if snapshot.Token != "" {
		c.Header("ETag", formatETag(snapshot.Token))
	}
	c.JSON(http.StatusOK, snapshot)
}

func parseETag(header string) string {
	header = strings.TrimSpace(header)
	header = strings.TrimPrefix(header, "W/")
	return strings.Trim(header, `"`)
}

func formatETag(token string) string {
	return `"` + token + `"`
}
