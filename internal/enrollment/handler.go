package enrollment

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

const (
	StatusEnrolled  = "enrolled"
	StatusCompleted = "completed"
	StatusPaused    = "paused"
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
	rg.GET("/enrollments", h.list)
	rg.POST("/enrollments", h.addOrUpdate)
	rg.PUT("/enrollments/:course", h.addOrUpdate)
	rg.DELETE("/enrollments/:course", h.remove)
	rg.GET("/enrollments/:course", h.getOne)
	rg.GET("/enrollments/:course/resume", h.resume)
}

type upsertReq struct {
	CourseKey      string `json:"course_key"` // required for POST; must match :course on PUT if set
	Status         string `json:"status"`
	CurrentTopicID string `json:"current_topic_id"`
}

// addOrUpdate serves both POST /enrollments and PUT /enrollments/:course.
// Fields left out of the body keep their stored values; a new enrollment
// starts as enrolled at the first topic of the course.
func (h *Handler) addOrUpdate(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req upsertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	courseKey := strings.TrimSpace(req.CourseKey)
	if param := strings.TrimSpace(c.Param("course")); param != "" {
		if courseKey != "" && courseKey != param {
			c.JSON(http.StatusBadRequest, gin.H{"error": "course_key does not match the url"})
			return
		}
		courseKey = param
	}
	if courseKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course_key required"})
		return
	}

	status := ""
	if strings.TrimSpace(req.Status) != "" {
		if status = normalizeStatus(req.Status); status == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "status must be one of: enrolled, completed, paused",
			})
			return
		}
	}

	cat := h.Catalog.Load()
	if _, ok := cat.Course(courseKey); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	topicID := strings.TrimSpace(req.CurrentTopicID)
	if topicID != "" {
		entry, ok := cat.Topic(topicID)
		if !ok || entry.CourseKey != courseKey {
			c.JSON(http.StatusBadRequest, gin.H{"error": "current_topic_id is not a topic of this course"})
			return
		}
	}

	existing, err := h.Repo.Get(c.Request.Context(), claims.UserID, courseKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	switch {
	case existing != nil:
		if status == "" {
			status = existing.Status
		}
		if topicID == "" {
			topicID = existing.CurrentTopicID
		}
	default:
		if status == "" {
			status = StatusEnrolled
		}
		if first := cat.CourseEntries(courseKey, ""); topicID == "" && len(first) > 0 {
			topicID = first[0].ID
		}
	}

	item := models.Enrollment{
		UserID:         claims.UserID,
		CourseKey:      courseKey,
		Status:         status,
		CurrentTopicID: topicID,
	}
	if err := h.Repo.Upsert(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	saved, err := h.Repo.Get(c.Request.Context(), claims.UserID, courseKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}
	if saved == nil {
		item.UpdatedAt = time.Now().UTC()
		saved = &item
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(sync.Event{
			Type:      sync.EventEnrollmentUpdate,
			UserID:    claims.UserID,
			CourseKey: courseKey,
			TopicID:   saved.CurrentTopicID,
			Status:    saved.Status,
			At:        time.Now().UTC(),
		})
	}

	c.JSON(http.StatusOK, saved)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status := strings.TrimSpace(c.Query("status"))
	if status != "" {
		status = normalizeStatus(status)
		if status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, total, err := h.Repo.List(c.Request.Context(), claims.UserID, status, limit, offset)
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

func (h *Handler) remove(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	courseKey := strings.TrimSpace(c.Param("course"))
	ok, err := h.Repo.Delete(c.Request.Context(), claims.UserID, courseKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Broadcast(sync.Event{
			Type:      sync.EventEnrollmentDelete,
			UserID:    claims.UserID,
			CourseKey: courseKey,
			At:        time.Now().UTC(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) getOne(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	it, err := h.Repo.Get(c.Request.Context(), claims.UserID, strings.TrimSpace(c.Param("course")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if it == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, it)
}

// resume returns the enrollment's current topic with its navigation. A
// current topic that vanished in a content reload falls back to the first
// topic of the course.
func (h *Handler) resume(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	it, err := h.Repo.Get(c.Request.Context(), claims.UserID, strings.TrimSpace(c.Param("course")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if it == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not enrolled"})
		return
	}

	cat := h.Catalog.Load()
	entry, ok := cat.Topic(it.CurrentTopicID)
	if !ok || entry.CourseKey != it.CourseKey {
		first := cat.CourseEntries(it.CourseKey, "")
		if len(first) == 0 {
			c.JSON(http.StatusOK, gin.H{"enrollment": it, "topic": nil, "prev": nil, "next": nil})
			return
		}
		entry = first[0]
	}

	nav := cat.Navigation(entry.ID).Refs()
	c.JSON(http.StatusOK, gin.H{
		"enrollment": it,
		"topic":      entry,
		"prev":       nav.Prev,
		"next":       nav.Next,
	})
}

func normalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enrolled", "active", "in_progress", "in progress":
		return StatusEnrolled
	case "completed", "done":
		return StatusCompleted
	case "paused", "on_hold", "on hold":
		return StatusPaused
	default:
		return ""
	}
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
