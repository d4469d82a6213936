package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cacheport "backchat/internal/infrastructure/cache/port"
	appcache "backchat/internal/pkg/messaging/application/cache"
	"backchat/internal/pkg/messaging/application/usecase"
	repoAdapter "backchat/internal/pkg/messaging/persistence/repository/adapter"
)

// CreateGroupConversationController handles the group creation endpoint.
type CreateGroupConversationController struct {
	UC *usecase.CreateGroupConversationUseCase
}

func NewCreateGroupConversationController(pool *pgxpool.Pool, cache cacheport.Cache, log *zap.Logger) *CreateGroupConversationController {
	uc := usecase.NewCreateGroupConversationUseCase(
		repoAdapter.NewPgConversationRepository(pool),
		appcache.NewInvalidator(cache, log),
	)
	return &CreateGroupConversationController{UC: uc}
}

type createGroupRequest struct {
	Name      string   `json:"name" binding:"required"`
	CreatorID string   `json:"creator_id" binding:"required"`
	MemberIDs []string `json:"member_ids"`
}

func (h *CreateGroupConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.CreateGroupConversationInput{
			Name:      req.Name,
			CreatorID: req.CreatorID,
			MemberIDs: req.MemberIDs,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":         conv.ID,
			"name":       conv.Name,
			"type":       conv.Type,
			"created_at": conv.CreatedAt,
		})
	}
}
