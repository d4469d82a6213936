package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cacheport "backchat/internal/infrastructure/cache/port"
	appcache "backchat/internal/pkg/messaging/application/cache"
	messaging "backchat/internal/pkg/messaging/application/domain"
	"backchat/internal/pkg/messaging/application/usecase"
	repoAdapter "backchat/internal/pkg/messaging/persistence/repository/adapter"
)

// MarkReadController handles the mark-conversation-as-read endpoint.
type MarkReadController struct {
	UC *usecase.MarkConversationReadUseCase
}

func NewMarkReadController(pool *pgxpool.Pool, cache cacheport.Cache, log *zap.Logger) *MarkReadController {
	uc := usecase.NewMarkConversationReadUseCase(
		repoAdapter.NewPgConversationRepository(pool),
		repoAdapter.NewPgMessageRepository(pool),
		appcache.NewInvalidator(cache, log),
	)
	return &MarkReadController{UC: uc}
}

type markReadRequest struct {
	ActorID   string `json:"actor_id" binding:"required"`
	ActorType string `json:"actor_type" binding:"required"`
}

func (h *MarkReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required", "code": "bad_request"})
			return
		}

		var req markReadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
			return
		}
		kind, err := messaging.ParseActorKind(req.ActorType)
		if err != nil {
			respondError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		err = h.UC.Execute(ctx, usecase.MarkConversationReadInput{
			ConversationID: conversationID,
			Actor:          messaging.ActorRef{Kind: kind, ID: req.ActorID},
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "read"})
	}
}
