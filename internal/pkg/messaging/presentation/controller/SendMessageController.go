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

// SendMessageController handles sending into an existing conversation.
type SendMessageController struct {
	UC *usecase.SendMessageUseCase
}

func NewSendMessageController(pool *pgxpool.Pool, cache cacheport.Cache, queue qport.Client, log *zap.Logger) *SendMessageController {
	uc := usecase.NewSendMessageUseCase(
		repoAdapter.NewPgConversationRepository(pool),
		repoAdapter.NewPgMessageRepository(pool),
		dirAdapter.NewPgDirectory(pool),
		task.NewQueueNotifier(queue),
		appcache.NewInvalidator(cache, log),
		log,
	)
	return &SendMessageController{UC: uc}
}

// sendMessageRequest is the DTO for the HTTP request body.
type sendMessageRequest struct {
	SenderID    string                 `json:"sender_id" binding:"required"`
	SenderType  string                 `json:"sender_type" binding:"required"`
	Content     string                 `json:"content"`
	Attachments []messaging.Attachment `json:"attachments"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required", "code": "bad_request"})
			return
		}

		var req sendMessageRequest
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

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: conversationID,
			Sender:         messaging.ActorRef{Kind: kind, ID: req.SenderID},
			Content:        req.Content,
			Attachments:    req.Attachments,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, msg)
	}
}
