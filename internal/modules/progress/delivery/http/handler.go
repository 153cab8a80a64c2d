package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	progressService "ramplog.app/backend/internal/modules/progress/service"
	"ramplog.app/backend/pkg/response"
	"ramplog.app/backend/pkg/validator"
)

type ProgressHandler struct {
	service progressService.ProgressService
}

func NewProgressHandler(service progressService.ProgressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=started mastered"`
}

func (h *ProgressHandler) SetStatus(c *gin.Context) {
	trickID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trick id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.SetStatus(c.Request.Context(), userID, trickID, req.Status); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "progress updated"})
}

func (h *ProgressHandler) MyProgress(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	progress, err := h.service.ByUser(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": progress})
}
