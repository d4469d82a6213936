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

// AddParticipantsController handles growing a group conversation's roster.
type AddParticipantsController struct {
	UC *usecase.AddParticipantsUseCase
}

func NewAddParticipantsController(pool *pgxpool.Pool, cache cacheport.Cache, log *zap.Logger) *AddParticipantsController {
	uc := usecase.NewAddParticipantsUseCase(
		repoAdapter.NewPgConversationRepository(pool),
		appcache.NewInvalidator(cache, log),
	)
	return &AddParticipantsController{UC: uc}
}

type addParticipantsRequest struct {
	ActorID   string `json:"actor_id" binding:"required"`
	ActorType string `json:"actor_type" binding:"required"`
	Members   []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"members" binding:"required"`
}

func (h *AddParticipantsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required", "code": "bad_request"})
			return
		}

		var req addParticipantsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
			return
		}
		kind, err := messaging.ParseActorKind(req.ActorType)
		if err != nil {
			respondError(c, err)
			return
		}

		members := make([]messaging.ActorRef, 0, len(req.Members))
		for _, m := range req.Members {
			memberKind, err := messaging.ParseActorKind(m.Type)
			if err != nil {
				respondError(c, err)
				return
			}
			members = append(members, messaging.ActorRef{Kind: memberKind, ID: m.ID})
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		err = h.UC.Execute(ctx, usecase.AddParticipantsInput{
			ConversationID: conversationID,
			Actor:          messaging.ActorRef{Kind: kind, ID: req.ActorID},
			Members:        members,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "added"})
	}
}
