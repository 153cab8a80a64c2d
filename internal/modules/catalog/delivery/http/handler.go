package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"ramplog.app/backend/internal/entity"
	catalogDto "ramplog.app/backend/internal/modules/catalog/dto"
	catalogService "ramplog.app/backend/internal/modules/catalog/service"
	searchService "ramplog.app/backend/internal/modules/search/service"
	"ramplog.app/backend/pkg/response"
	"ramplog.app/backend/pkg/validator"
)

type CatalogHandler struct {
	service catalogService.CatalogService
	search  searchService.SearchService
}

func NewCatalogHandler(service catalogService.CatalogService, search searchService.SearchService) *CatalogHandler {
	return &CatalogHandler{service: service, search: search}
}

func (h *CatalogHandler) GetTricks(c *gin.Context) {
	tricks, err := h.service.Tricks(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tricks})
}

func (h *CatalogHandler) GetArticles(c *gin.Context) {
	articles, err := h.service.Articles(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": articles})
}

func (h *CatalogHandler) GetProducts(c *gin.Context) {
	products, err := h.service.Products(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products})
}

func (h *CatalogHandler) GetParks(c *gin.Context) {
	parks, err := h.service.Parks(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": parks})
}

func (h *CatalogHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search unavailable"})
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	result, err := h.search.Search(query, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Admin endpoints. Every write invalidates the catalog cache prefix via
// the service, so a following snapshot sees fresh rows.

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *CatalogHandler) UpsertTrick(c *gin.Context) {
	var req catalogDto.TrickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	trick := entity.Trick{
		Name:        req.Name,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Description: req.Description,
	}
	if idStr := c.Param("id"); idStr != "" {
		id, ok := pathID(c)
		if !ok {
			return
		}
		trick.ID = id
	}

	if err := h.service.SaveTrick(c.Request.Context(), &trick); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, trick)
}

func (h *CatalogHandler) DeleteTrick(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteTrick(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "trick deleted"})
}

func (h *CatalogHandler) UpsertArticle(c *gin.Context) {
	var req catalogDto.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	article := entity.Article{
		Title: req.Title,
		Slug:  req.Slug,
		Body:  req.Body,
	}
	if idStr := c.Param("id"); idStr != "" {
		id, ok := pathID(c)
		if !ok {
			return
		}
		article.ID = id
	}

	if err := h.service.SaveArticle(c.Request.Context(), &article); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *CatalogHandler) DeleteArticle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteArticle(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "article deleted"})
}

func (h *CatalogHandler) UpsertProduct(c *gin.Context) {
	var req catalogDto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	product := entity.Product{
		Name:       req.Name,
		Brand:      req.Brand,
		PriceCents: req.PriceCents,
		URL:        req.URL,
	}
	if idStr := c.Param("id"); idStr != "" {
		id, ok := pathID(c)
		if !ok {
			return
		}
		product.ID = id
	}

	if err := h.service.SaveProduct(c.Request.Context(), &product); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

func (h *CatalogHandler) UpsertPark(c *gin.Context) {
	var req catalogDto.ParkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	park := entity.Park{
		Name:      req.Name,
		City:      req.City,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if idStr := c.Param("id"); idStr != "" {
		id, ok := pathID(c)
		if !ok {
			return
		}
		park.ID = id
	}

	if err := h.service.SavePark(c.Request.Context(), &park); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, park)
}

func (h *CatalogHandler) DeletePark(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeletePark(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "park deleted"})
}
