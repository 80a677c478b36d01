package progress

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"coursehub/internal/auth"
	"coursehub/internal/catalog"
	"coursehub/internal/sync"
	"coursehub/pkg/models"
)

type Handler struct {
	Repo    *Repo
	Catalog *catalog.Store
	Hub     *sync.Hub
}

func NewHandler(repo *Repo, store *catalog.Store, hub *sync.Hub) *Handler {
	return &Handler{Repo: repo, Catalog: store, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/progress", h.list)
	rg.POST("/progress", h.complete)
	rg.DELETE("/progress/:topic_id", h.uncomplete)
	rg.GET("/progress/summary", h.summary)
	rg.GET("/progress/next", h.next)
}

type completeReq struct {
	TopicID string `json:"topic_id"`
}

func (h *Handler) complete(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req completeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	topicID := strings.TrimSpace(req.TopicID)
	if topicID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic_id required"})
		return
	}

	entry, ok := h.Catalog.Load().Topic(topicID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return
	}

	rec := models.ProgressEntry{
		UserID:      claims.UserID,
		TopicID:     entry.ID,
		CourseKey:   entry.CourseKey,
		CompletedAt: time.Now().UTC(),
	}

	created, err := h.Repo.MarkCompleted(c.Request.Context(), rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	if created && h.Hub != nil {
		go h.Hub.Broadcast(sync.Event{
			Type:      sync.EventProgressCompleted,
			UserID:    claims.UserID,
			TopicID:   entry.ID,
			CourseKey: entry.CourseKey,
			At:        rec.CompletedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"entry":   rec,
		"created": created,
		"next":    h.Catalog.Load().Navigation(entry.ID).Refs().Next,
	})
}

func (h *Handler) uncomplete(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ok, err := h.Repo.Unmark(c.Request.Context(), claims.UserID, strings.TrimSpace(c.Param("topic_id")))
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

func (h *Handler) list(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	courseKey := strings.TrimSpace(c.Query("course"))
	limit := parseInt(c.Query("limit"), 100)
	offset := parseInt(c.Query("offset"), 0)

	items, total, err := h.Repo.List(c.Request.Context(), claims.UserID, courseKey, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) summary(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	done, err := h.Repo.CompletedSet(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": Summarize(h.Catalog.Load(), done)})
}

func (h *Handler) next(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	done, err := h.Repo.CompletedSet(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "next failed"})
		return
	}

	entry, ok := NextUncompleted(h.Catalog.Load(), done, strings.TrimSpace(c.Query("course")))
	if !ok {
		// everything done
		c.JSON(http.StatusOK, gin.H{"topic": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topic": entry.Ref()})
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
