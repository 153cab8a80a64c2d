package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	feedService "ramplog.app/backend/internal/modules/feed/service"
	"ramplog.app/backend/pkg/response"
)

type FeedHandler struct {
	service feedService.FeedService
}

func NewFeedHandler(service feedService.FeedService) *FeedHandler {
	return &FeedHandler{service: service}
}

func (h *FeedHandler) GetFeed(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	feed, err := h.service.BuildFeed(c.Request.Context(), userID, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}
