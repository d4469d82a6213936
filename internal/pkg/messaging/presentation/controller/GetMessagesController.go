package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cacheport "backchat/internal/infrastructure/cache/port"
	appcache "backchat/internal/pkg/messaging/application/cache"
	"backchat/internal/pkg/messaging/application/usecase"
	repoAdapter "backchat/internal/pkg/messaging/persistence/repository/adapter"
)

// GetMessagesController handles fetching a conversation's message page.
type GetMessagesController struct {
	UC *usecase.GetMessagesUseCase
}

func NewGetMessagesController(pool *pgxpool.Pool, cache cacheport.Cache, log *zap.Logger) *GetMessagesController {
	uc := usecase.NewGetMessagesUseCase(
		repoAdapter.NewPgConversationRepository(pool),
		repoAdapter.NewPgMessageRepository(pool),
		appcache.NewViewStore(cache, log),
	)
	return &GetMessagesController{UC: uc}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required", "code": "bad_request"})
			return
		}
		actor, err := actorParams(c)
		if err != nil {
			respondError(c, err)
			return
		}

		limit, offset := 0, 0
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, usecase.GetMessagesInput{
			ConversationID: conversationID,
			Requester:      actor,
			Limit:          limit,
			Offset:         offset,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		if msgs == nil {
			msgs = []usecase.MessageView{}
		}

		c.JSON(http.StatusOK, gin.H{
			"messages": msgs,
			"count":    len(msgs),
		})
	}
}
