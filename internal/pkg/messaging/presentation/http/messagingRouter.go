package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cacheport "backchat/internal/infrastructure/cache/port"
	qport "backchat/internal/infrastructure/queue/port"
	"backchat/internal/infrastructure/realtime"
	"backchat/internal/pkg/messaging/presentation/controller"
)

// RegisterRoutes registers messaging endpoints under the given router group.
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, cache cacheport.Cache, queue qport.Client, hub *realtime.Hub, log *zap.Logger) {
	listCtl := controller.NewListConversationsController(pool, cache, log)
	getMsgCtl := controller.NewGetMessagesController(pool, cache, log)
	sendCtl := controller.NewSendMessageController(pool, cache, queue, log)
	sendPrivateCtl := controller.NewSendPrivateMessageController(pool, cache, queue, log)
	createGroupCtl := controller.NewCreateGroupConversationController(pool, cache, log)
	markReadCtl := controller.NewMarkReadController(pool, cache, log)
	addPartsCtl := controller.NewAddParticipantsController(pool, cache, log)
	socketCtl := controller.NewNotificationSocketController(hub, log)

	g.GET("/conversations", listCtl.Handle())
	g.GET("/conversations/:conversationId/messages", getMsgCtl.Handle())
	g.POST("/conversations/:conversationId/messages", sendCtl.Handle())
	g.POST("/conversations/private/:counterparty/messages", sendPrivateCtl.Handle())
	g.POST("/conversations/group", createGroupCtl.Handle())
	g.POST("/conversations/:conversationId/read", markReadCtl.Handle())
	g.POST("/conversations/:conversationId/participants", addPartsCtl.Handle())

	g.GET("/notifications/ws", socketCtl.Handle())
}
