package sync

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"coursehub/pkg/utils"
)

// WSHandler streams hub events to a websocket client. The initial filter
// comes from ?user= and ?course=; a text frame holding a JSON Filter
// replaces it.
func WSHandler(hub *Hub, allowedOrigins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     utils.CheckOrigin(allowedOrigins),
	}

	return func(c *gin.Context) {
		f := Filter{
			UserID:    strings.TrimSpace(c.Query("user")),
			CourseKey: strings.TrimSpace(c.Query("course")),
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		id := hub.subscribe(TransportWS, f, func(b []byte) error {
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			return ws.WriteMessage(websocket.TextMessage, bytes.TrimSuffix(b, []byte("\n")))
		}, ws.Close)
		log.Printf("[ws] client %d connected user=%q course=%q", id, f.UserID, f.CourseKey)

		for {
			_, msg, err := ws.ReadMessage()
			if err != nil {
				break
			}
			var next Filter
			if err := json.Unmarshal(msg, &next); err != nil {
				continue
			}
			hub.SetFilter(id, next)
		}

		hub.Unsubscribe(id)
		log.Printf("[ws] client %d disconnected", id)
	}
}
