// server/internal/api/handlers/websocket_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"sppg-kitchen-api-server/internal/auth"
	"sppg-kitchen-api-server/internal/socket"
)

// Longest silence tolerated from a client before the connection is dropped.
const pongWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub    *socket.Hub
	Issuer *auth.Issuer
	Log    *zap.Logger
}

// ServeWs upgrades an authenticated request (?token=) to the change feed.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}
	claims, err := h.Issuer.ParseJWT(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	h.Hub.Register(connID, claims.UserID, conn)
	defer func() {
		h.Hub.Unregister(connID)
		conn.Close()
	}()

	// Clients ping; each ping extends the deadline.
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Log.Debug("unexpected close", zap.String("user", claims.Username), zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
