package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"doacao-platform/internal/middleware"
	"doacao-platform/internal/session"
	ws "doacao-platform/internal/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub       *ws.Hub
	Session   *session.Manager
	JwtSecret string
	Log       *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, s *session.Manager, jwtSecret string, log *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{Hub: hub, Session: s, JwtSecret: jwtSecret, Log: log}
}

// ServeWs subscribes the current session user to local notifications.
// Browsers cannot set headers on a websocket handshake, so the token travels
// as ?token=.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	userID, err := middleware.ParseToken(h.JwtSecret, c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	if user, ok := h.Session.CurrentUser(); !ok || user.ID != userID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired, please log in again."})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	client := &ws.Client{
		Hub:    h.Hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		UserID: userID,
	}

	if !h.Hub.Join(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
		conn.Close()
		return
	}

	go h.writePump(client)
	go h.readPump(client)
}

// writePump forwards hub frames and keeps the peer alive with pings.
func (h *WebSocketHandler) writePump(client *ws.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub dropped us
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.Log.Debug("write failed", zap.String("user_id", client.UserID), zap.Error(err))
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for pongs and the close frame; clients never send
// anything we act on.
func (h *WebSocketHandler) readPump(client *ws.Client) {
	defer func() {
		client.Hub.Leave(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Log.Debug("websocket closed", zap.String("user_id", client.UserID), zap.Error(err))
			}
			return
		}
	}
}
