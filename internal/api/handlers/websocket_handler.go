// internal/api/handlers/websocket_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"container-yard-api-server/internal/logger"
	"container-yard-api-server/internal/socket"
)

// Maximum wait for a ping from the client before the connection is dropped.
const pongWait = 60 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler streams yard movements to the dashboard. It sits behind
// middleware.Authenticate, which accepts the token as ?token=.
type WebSocketHandler struct {
	Hub *socket.Hub
}

func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	connID := uuid.NewString()
	log := logger.Log.WithFields(logrus.Fields{"conn": connID, "user": userID})
	h.Hub.Register(connID, userID, conn)
	log.Info("websocket connected")
	defer func() {
		h.Hub.Unregister(connID)
		_ = conn.Close()
		log.Info("websocket disconnected")
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	// Client pings keep the connection alive.
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).Warn("unexpected websocket close")
			}
			return
		}
	}
}
