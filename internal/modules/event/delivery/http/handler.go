package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"ramplog.app/backend/internal/entity"
	eventService "ramplog.app/backend/internal/modules/event/service"
	"ramplog.app/backend/pkg/response"
	"ramplog.app/backend/pkg/validator"
)

type EventHandler struct {
	service eventService.EventService
}

func NewEventHandler(service eventService.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.service.List(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": events})
}

func (h *EventHandler) Join(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Join(c.Request.Context(), userID, eventID); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "joined event"})
}

func (h *EventHandler) Leave(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Leave(c.Request.Context(), userID, eventID); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left event"})
}

type eventRequest struct {
	ParkID   *uuid.UUID `json:"park_id"`
	Title    string     `json:"title" binding:"required,min=3,max=255"`
	StartsAt time.Time  `json:"starts_at" binding:"required"`
}

func (h *EventHandler) UpsertEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	event := entity.Event{
		ParkID:   req.ParkID,
		Title:    req.Title,
		StartsAt: req.StartsAt,
	}
	if idStr := c.Param("id"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}
		event.ID = id
	}

	if err := h.service.Save(c.Request.Context(), &event); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), eventID); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event deleted"})
}
