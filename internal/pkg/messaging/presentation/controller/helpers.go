package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	messaging "backchat/internal/pkg/messaging/application/domain"
	"backchat/internal/pkg/messaging/application/usecase"
)

// requestTimeout bounds each handler's downstream work.
const requestTimeout = 5 * time.Second

// actorParams reads the acting identity from query parameters. Identity
// resolution/authentication lives outside this core; handlers trust the
// caller-supplied pair the same way the rest of the back office does.
func actorParams(c *gin.Context) (messaging.ActorRef, error) {
	kind, err := messaging.ParseActorKind(c.Query("actor_type"))
	if err != nil {
		return messaging.ActorRef{}, err
	}
	id := c.Query("actor_id")
	if id == "" {
		return messaging.ActorRef{}, errors.New("actor_id is required")
	}
	return messaging.ActorRef{Kind: kind, ID: id}, nil
}

// respondError maps domain errors to stable HTTP codes per the error taxonomy.
func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	code := "bad_request"
	switch {
	case errors.Is(err, messaging.ErrConversationNotFound),
		errors.Is(err, messaging.ErrActorNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, messaging.ErrNotParticipant):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, messaging.ErrInvalidParticipant):
		status, code = http.StatusUnprocessableEntity, "invalid_participant"
	case errors.Is(err, messaging.ErrConflict),
		errors.Is(err, messaging.ErrPrivateRoster):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, messaging.ErrTypeMismatch):
		status, code = http.StatusBadRequest, "type_mismatch"
	case errors.Is(err, messaging.ErrEmptyMessage):
		status, code = http.StatusBadRequest, "empty_message"
	case errors.Is(err, usecase.ErrPersistence):
		status, code = http.StatusInternalServerError, "store_unavailable"
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
