package task

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	qport "backchat/internal/infrastructure/queue/port"
	"backchat/internal/infrastructure/realtime"
	"backchat/internal/pkg/messaging/application/usecase"
)

// NotifyTaskType is the queue task name for fanning a new-message
// notification out to the other participants.
const NotifyTaskType = "messaging:notify"

// notifyQueue isolates notification traffic from other background work.
const notifyQueue = "messaging"

// QueueNotifier implements usecase.Notifier by enqueuing the notification for
// background delivery, keeping the send path non-blocking.
type QueueNotifier struct {
	client qport.Client
}

func NewQueueNotifier(client qport.Client) *QueueNotifier {
	return &QueueNotifier{client: client}
}

var _ usecase.Notifier = (*QueueNotifier)(nil)

func (n *QueueNotifier) Notify(ctx context.Context, notification usecase.MessageNotification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	_, err = n.client.Enqueue(ctx,
		qport.Task{Type: NotifyTaskType, Payload: payload},
		qport.EnqueueOption{Queue: notifyQueue, MaxRetry: 5},
	)
	return err
}

// RegisterNotifyTask binds the delivery handler: each recipient with a live
// websocket session gets the payload pushed; everyone else simply sees the
// unread count on their next poll. Delivery problems never propagate.
func RegisterNotifyTask(srv qport.Server, hub *realtime.Hub, logger *zap.Logger) {
	srv.Register(NotifyTaskType, func(ctx context.Context, t qport.Task) error {
		var n usecase.MessageNotification
		if err := json.Unmarshal(t.Payload, &n); err != nil {
			// Malformed payloads will never parse; retrying is pointless.
			logger.Warn("notify task payload malformed", zap.Error(err))
			return nil
		}

		payload, err := json.Marshal(map[string]string{
			"conversationId": n.ConversationID,
			"messageId":      n.MessageID,
			"senderName":     n.SenderName,
			"preview":        n.Preview,
		})
		if err != nil {
			return err
		}

		delivered := 0
		for _, recipient := range n.Recipients {
			if hub.Push(recipient, payload) {
				delivered++
			}
		}
		logger.Debug("notification fan-out",
			zap.String("conversationId", n.ConversationID),
			zap.String("messageId", n.MessageID),
			zap.Int("recipients", len(n.Recipients)),
			zap.Int("delivered", delivered))
		return nil
	})
}
