package discuss

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"coursehub/internal/catalog"
	"coursehub/pkg/utils"
)

const maxMessageLen = 2000

type incomingMessage struct {
	Text string `json:"text"`
}

type Handler struct {
	Hub     *Hub
	Catalog *catalog.Store

	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, store *catalog.Store, allowedOrigins []string) *Handler {
	return &Handler{
		Hub:     hub,
		Catalog: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     utils.CheckOrigin(allowedOrigins),
		},
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/history", h.history) // GET /discuss/history?topic=
	rg.GET("/ws", h.ws)           // GET /discuss/ws?topic=&user=
}

// topicParam resolves ?topic= against the catalog, writing the error response itself.
func (h *Handler) topicParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Query("topic"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required"})
		return "", false
	}
	if _, ok := h.Catalog.Load().Topic(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return "", false
	}
	return id, true
}

func (h *Handler) history(c *gin.Context) {
	id, ok := h.topicParam(c)
	if !ok {
		return
	}
	items := h.Hub.History(id)
	if items == nil {
		items = []Message{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) ws(c *gin.Context) {
	id, ok := h.topicParam(c)
	if !ok {
		return
	}

	user := strings.TrimSpace(c.Query("user"))
	if user == "" {
		user = "anon"
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	h.Hub.Join(id, ws, user)

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			break
		}

		// accept {"text": "..."} or a bare text frame
		text := strings.TrimSpace(string(payload))
		var incoming incomingMessage
		if err := json.Unmarshal(payload, &incoming); err == nil {
			text = strings.TrimSpace(incoming.Text)
		}
		if text == "" {
			continue
		}
		text = truncate(text, maxMessageLen)

		h.Hub.Broadcast(Message{
			Type:    TypeMessage,
			TopicID: id,
			User:    h.Hub.User(id, ws),
			Text:    text,
		})
	}

	h.Hub.Leave(id, ws)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
