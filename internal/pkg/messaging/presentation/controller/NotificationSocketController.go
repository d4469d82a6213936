package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"backchat/internal/infrastructure/realtime"
	messaging "backchat/internal/pkg/messaging/application/domain"
)

// NotificationSocketController upgrades staff connections onto the
// notification hub so new-message notifications reach them without polling.
type NotificationSocketController struct {
	hub *realtime.Hub
	log *zap.Logger
}

func NewNotificationSocketController(hub *realtime.Hub, log *zap.Logger) *NotificationSocketController {
	return &NotificationSocketController{hub: hub, log: log}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the gateway in front of this service.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *NotificationSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := actorParams(c)
		if err != nil {
			respondError(c, err)
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		conn := h.hub.Attach(actor.String(), ws)
		h.log.Debug("notification socket attached", zap.String("actor", actor.String()))

		// The read loop only exists to observe the close; clients never send.
		go h.readUntilClose(conn, ws, actor)
	}
}

func (h *NotificationSocketController) readUntilClose(conn *realtime.Connection, ws *websocket.Conn, actor messaging.ActorRef) {
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			h.hub.Detach(conn)
			h.log.Debug("notification socket detached", zap.String("actor", actor.String()))
			return
		}
	}
}
