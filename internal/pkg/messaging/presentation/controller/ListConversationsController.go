package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cacheport "backchat/internal/infrastructure/cache/port"
	dirAdapter "backchat/internal/pkg/directory/adapter"
	appcache "backchat/internal/pkg/messaging/application/cache"
	"backchat/internal/pkg/messaging/application/usecase"
	repoAdapter "backchat/internal/pkg/messaging/persistence/repository/adapter"
)

// ListConversationsController handles the conversation listing endpoint
// (one controller per endpoint).
type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(pool *pgxpool.Pool, cache cacheport.Cache, log *zap.Logger) *ListConversationsController {
	conversations := repoAdapter.NewPgConversationRepository(pool)
	messages := repoAdapter.NewPgMessageRepository(pool)
	uc := usecase.NewListConversationsUseCase(
		conversations,
		messages,
		dirAdapter.NewPgDirectory(pool),
		usecase.NewUnreadCountUseCase(messages),
		appcache.NewViewStore(cache, log),
		log,
	)
	return &ListConversationsController{UC: uc}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := actorParams(c)
		if err != nil {
			respondError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		views, err := h.UC.Execute(ctx, usecase.ListConversationsInput{Actor: actor})
		if err != nil {
			respondError(c, err)
			return
		}
		if views == nil {
			views = []usecase.ConversationView{}
		}

		c.JSON(http.StatusOK, gin.H{
			"conversations": views,
			"count":         len(views),
		})
	}
}
