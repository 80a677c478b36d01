package feedback

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"coursehub/internal/auth"
	"coursehub/internal/catalog"
)

type Handler struct {
	Repo    *Repo
	Catalog *catalog.Store
}

func NewHandler(repo *Repo, store *catalog.Store) *Handler {
	return &Handler{Repo: repo, Catalog: store}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/topics/:id/feedback", h.listByTopic)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/feedback", h.create)
	rg.DELETE("/feedback/:id", h.delete)
}

type createReq struct {
	TopicID string `json:"topic_id"`
	Rating  int    `json:"rating"`
	Text    string `json:"text"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	topicID := strings.TrimSpace(req.TopicID)
	if topicID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic_id required"})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}
	if _, ok := h.Catalog.Load().Topic(topicID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return
	}

	fb, err := h.Repo.Create(c.Request.Context(), claims.UserID, topicID, req.Rating, strings.TrimSpace(req.Text))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, fb)
}

func (h *Handler) listByTopic(c *gin.Context) {
	topicID := strings.TrimSpace(c.Param("id"))
	if _, ok := h.Catalog.Load().Topic(topicID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, err := h.Repo.ListByTopic(c.Request.Context(), topicID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	stats, err := h.Repo.TopicStats(c.Request.Context(), topicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"limit":  limit,
		"offset": offset,
		"stats":  stats,
		"items":  items,
	})
}

func (h *Handler) delete(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), id, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
