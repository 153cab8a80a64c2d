package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	viewService "ramplog.app/backend/internal/modules/view/service"
	"ramplog.app/backend/pkg/response"
)

type ViewHandler struct {
	service viewService.ViewService
}

func NewViewHandler(service viewService.ViewService) *ViewHandler {
	return &ViewHandler{service: service}
}

func (h *ViewHandler) TrackTrickView(c *gin.Context) {
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

	if err := h.service.IncrementView(c.Request.Context(), trickID, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "view tracked"})
}
