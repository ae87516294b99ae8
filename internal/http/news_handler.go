package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"merapaper/internal/service"
)

// NewsHandler holds dependencies for the news endpoints.
type NewsHandler struct {
	logger   *zap.Logger
	newsServ *service.NewsService
}

func NewNewsHandler(logger *zap.Logger, newsServ *service.NewsService) *NewsHandler {
	return &NewsHandler{logger: logger, newsServ: newsServ}
}

// Latest handles GET /news/latest with the default facets.
func (h *NewsHandler) Latest(c *gin.Context) {
	articles, err := h.newsServ.FetchByFacets(c.Request.Context(), "", "", 0)
	if err != nil {
		h.logger.Error("fetch latest news failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch news"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// Filtered handles GET /news/filtered?category=&country=&max=.
func (h *NewsHandler) Filtered(c *gin.Context) {
	limit := 0
	if raw := c.Query("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max must be a positive integer"})
			return
		}
		limit = n
	}

	articles, err := h.newsServ.FetchByFacets(c.Request.Context(), c.Query("category"), c.Query("country"), limit)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("fetch filtered news failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch news"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// Personalized handles GET /news/personalized/:userId using stored preferences.
func (h *NewsHandler) Personalized(c *gin.Context) {
	userID := c.Param("userId")
	articles, err := h.newsServ.FetchForUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("fetch personalized news failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch news"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}
