package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cacheport "backchat/internal/infrastructure/cache/port"
	qport "backchat/internal/infrastructure/queue/port"
	dirAdapter "backchat/internal/pkg/directory/adapter"
	appcache "backchat/internal/pkg/messaging/application/cache"
	messaging "backchat/internal/pkg/messaging/application/domain"
	"backchat/internal/pkg/messaging/application/task"
	"backchat/internal/pkg/messaging/application/usecase"
	repoAdapter "backchat/internal/pkg/messaging/persistence/repository/adapter"
)

// SendPrivateMessageController handles sending by counterparty token,
// resolving or creating the private conversation on the way.
type SendPrivateMessageController struct {
	UC *usecase.SendPrivateMessageUseCase
}

func NewSendPrivateMessageController(pool *pgxpool.Pool, cache cacheport.Cache, queue qport.Client, log *zap.Logger) *SendPrivateMessageController {
	conversations := repoAdapter.NewPgConversationRepository(pool)
	dir := dirAdapter.NewPgDirectory(pool)
	inv := appcache.NewInvalidator(cache, log)

	resolve := usecase.NewGetOrCreatePrivateConversationUseCase(conversations, dir, inv)
	send := usecase.NewSendMessageUseCase(
		conversations,
		repoAdapter.NewPgMessageRepository(pool),
		dir,
		task.NewQueueNotifier(queue),
		inv,
		log,
	)
	return &SendPrivateMessageController{UC: usecase.NewSendPrivateMessageUseCase(resolve, send)}
}

type sendPrivateMessageRequest struct {
	SenderID    string                 `json:"sender_id" binding:"required"`
	SenderType  string                 `json:"sender_type" binding:"required"`
	Content     string                 `json:"content"`
	Attachments []messaging.Attachment `json:"attachments"`
}

func (h *SendPrivateMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		counterparty := c.Param("counterparty")
		if counterparty == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "counterparty is required", "code": "bad_request"})
			return
		}

		var req sendPrivateMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
			return
		}
		kind, err := messaging.ParseActorKind(req.SenderType)
		if err != nil {
			respondError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.SendPrivateMessageInput{
			Actor:        messaging.ActorRef{Kind: kind, ID: req.SenderID},
			Counterparty: counterparty,
			Content:      req.Content,
			Attachments:  req.Attachments,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"conversation_id": out.ConversationID,
			"message":         out.Message,
		})
	}
}
