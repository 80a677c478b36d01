package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"coursehub/pkg/models"
)

type Handler struct {
	Store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/courses", h.listCourses)          // GET /courses
	rg.GET("/courses/:course", h.getCourse)    // GET /courses/:course
	rg.GET("/topics", h.listTopics)            // GET /topics
	rg.GET("/topics/:id", h.getTopic)          // GET /topics/:id
	rg.GET("/topics/:id/nav", h.getNav)        // GET /topics/:id/nav
	rg.GET("/topics/:id/page", h.getTopicPage) // GET /topics/:id/page
}

func (h *Handler) listCourses(c *gin.Context) {
	cat := h.Store.Load()
	c.JSON(http.StatusOK, gin.H{
		"total": len(cat.Courses()),
		"items": cat.Courses(),
	})
}

type sectionView struct {
	Key    string            `json:"key"`
	Title  string            `json:"title"`
	Topics []models.TopicRef `json:"topics"`
}

func (h *Handler) getCourse(c *gin.Context) {
	cat := h.Store.Load()
	key := strings.TrimSpace(c.Param("course"))

	course, ok := cat.Course(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	// refs come from the flattened catalog so positions line up with /topics
	sections := make([]sectionView, 0, len(course.Sections))
	for _, s := range course.Sections {
		entries := cat.CourseEntries(course.Key, s.Key)
		refs := make([]models.TopicRef, 0, len(entries))
		for _, e := range entries {
			refs = append(refs, e.Ref())
		}
		sections = append(sections, sectionView{Key: s.Key, Title: s.Title, Topics: refs})
	}

	c.JSON(http.StatusOK, gin.H{
		"key":      course.Key,
		"title":    course.Title,
		"icon":     course.Icon,
		"color":    course.Color,
		"sections": sections,
	})
}

func (h *Handler) listTopics(c *gin.Context) {
	cat := h.Store.Load()
	courseKey := strings.TrimSpace(c.Query("course"))
	sectionKey := strings.TrimSpace(c.Query("section"))

	limit := parseInt(c.Query("limit"), 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset := parseInt(c.Query("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	entries := cat.Entries()
	if courseKey != "" || sectionKey != "" {
		entries = cat.CourseEntries(courseKey, sectionKey)
	}

	total := len(entries)
	items := make([]models.TopicRef, 0, limit)
	for i := offset; i < total && len(items) < limit; i++ {
		items = append(items, entries[i].Ref())
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) getTopic(c *gin.Context) {
	entry, ok := h.Store.Load().Topic(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// getNav never 404s: a stale link just renders without navigation.
func (h *Handler) getNav(c *gin.Context) {
	nav := h.Store.Load().Navigation(c.Param("id"))
	c.JSON(http.StatusOK, nav.Refs())
}

func (h *Handler) getTopicPage(c *gin.Context) {
	cat := h.Store.Load()
	id := c.Param("id")

	entry, ok := cat.Topic(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	nav := cat.Navigation(id).Refs()

	c.JSON(http.StatusOK, gin.H{
		"topic": entry,
		"prev":  nav.Prev,
		"next":  nav.Next,
	})
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
