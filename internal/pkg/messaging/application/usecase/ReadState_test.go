package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	messaging "backchat/internal/pkg/messaging/application/domain"
	"backchat/internal/pkg/messaging/application/usecase"
)

func (e *env) unreadFor(t *testing.T, conversationID string, actor messaging.ActorRef) int {
	t.Helper()
	ctx := context.Background()
	conv, err := e.convs.GetByID(ctx, conversationID)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	p, err := e.convs.GetParticipant(ctx, conversationID, actor)
	if err != nil || p == nil {
		t.Fatalf("get participant %v: %v", actor, err)
	}
	n, err := e.unread.Execute(ctx, *conv, *p)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	return n
}

func TestPrivateUnreadMonotonicity(t *testing.T) {
	t.Parallel()
	e := newEnv()
	ctx := context.Background()

	out, err := e.sendPrivate.Execute(ctx, usecase.SendPrivateMessageInput{
		Actor: employee8, Counterparty: "7", Content: "msg 1",
	})
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	convID := out.ConversationID

	for i := 0; i < 2; i++ {
		if _, err := e.send.Execute(ctx, usecase.SendMessageInput{
			ConversationID: convID, Sender: employee8, Content: "more",
		}); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	if got := e.unreadFor(t, convID, employee7); got != 3 {
		t.Errorf("unread before read: got %d, want 3", got)
	}

	if err := e.markRead.Execute(ctx, usecase.MarkConversationReadInput{ConversationID: convID, Actor: employee7}); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if got := e.unreadFor(t, convID, employee7); got != 0 {
		t.Errorf("unread after read: got %d, want 0", got)
	}

	// Only new messages count; already-read ones stay read.
	if _, err := e.send.Execute(ctx, usecase.SendMessageInput{
		ConversationID: convID, Sender: employee8, Content: "msg 4",
	}); err != nil {
		t.Fatalf("send after read: %v", err)
	}
	if got := e.unreadFor(t, convID, employee7); got != 1 {
		t.Errorf("unread after new message: got %d, want 1", got)
	}
}

func TestGroupUnreadUsesWatermark(t *testing.T) {
	t.Parallel()
	e := newEnv()
	ctx := context.Background()
	conv := e.mustCreateGroup(t, "Kitchen", "7", "8")

	for i := 0; i < 2; i++ {
		if _, err := e.send.Execute(ctx, usecase.SendMessageInput{
			ConversationID: conv.ID, Sender: employee8, Content: "prep list",
		}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	// Own messages never count as unread.
	if _, err := e.send.Execute(ctx, usecase.SendMessageInput{
		ConversationID: conv.ID, Sender: employee7, Content: "on it",
	}); err != nil {
		t.Fatalf("send: %v", err)
	}

	if got := e.unreadFor(t, conv.ID, employee7); got != 2 {
		t.Errorf("unread: got %d, want 2", got)
	}

	if err := e.markRead.Execute(ctx, usecase.MarkConversationReadInput{ConversationID: conv.ID, Actor: employee7}); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if got := e.unreadFor(t, conv.ID, employee7); got != 0 {
		t.Errorf("unread after read: got %d, want 0", got)
	}

	// The watermark comparison is strict; give the clock room before sending.
	time.Sleep(2 * time.Millisecond)
	if _, err := e.send.Execute(ctx, usecase.SendMessageInput{
		ConversationID: conv.ID, Sender: employee8, Content: "new item",
	}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := e.unreadFor(t, conv.ID, employee7); got != 1 {
		t.Errorf("unread after watermark: got %d, want 1", got)
	}
}

func TestMarkReadRequiresMembership(t *testing.T) {
	t.Parallel()
	e := newEnv()
	conv := e.mustCreateGroup(t, "Kitchen", "7")

	err := e.markRead.Execute(context.Background(), usecase.MarkConversationReadInput{
		ConversationID: conv.ID,
		Actor:          employee8,
	})
	if !errors.Is(err, messaging.ErrActorNotFound) {
		t.Errorf("got %v, want ErrActorNotFound", err)
	}
}

// The full first-contact flow: employee 7 opens a thread with "the" admin,
// each side sends and reads, and both unread counts stay independent.
func TestPrivateConversationScenario(t *testing.T) {
	t.Parallel()
	e := newEnv()
	ctx := context.Background()

	out, err := e.sendPrivate.Execute(ctx, usecase.SendPrivateMessageInput{
		Actor: employee7, Counterparty: messaging.SentinelAdmin, Content: "hello",
	})
	if err != nil {
		t.Fatalf("send-private: %v", err)
	}
	convID := out.ConversationID

	conv, err := e.convs.GetByID(ctx, convID)
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if conv.Type != messaging.ConversationTypePrivate {
		t.Errorf("type: got %q, want private", conv.Type)
	}
	parts, _ := e.convs.ListParticipants(ctx, convID)
	if len(parts) != 2 {
		t.Fatalf("participants: got %d, want 2", len(parts))
	}

	if got := e.unreadFor(t, convID, admin1); got != 1 {
		t.Errorf("admin unread after hello: got %d, want 1", got)
	}
	if got := e.unreadFor(t, convID, employee7); got != 0 {
		t.Errorf("employee unread after own hello: got %d, want 0", got)
	}

	if _, err := e.send.Execute(ctx, usecase.SendMessageInput{
		ConversationID: convID, Sender: admin1, Content: "hi",
	}); err != nil {
		t.Fatalf("reply: %v", err)
	}
	if got := e.unreadFor(t, convID, employee7); got != 1 {
		t.Errorf("employee unread after reply: got %d, want 1", got)
	}

	if err := e.markRead.Execute(ctx, usecase.MarkConversationReadInput{ConversationID: convID, Actor: employee7}); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if got := e.unreadFor(t, convID, employee7); got != 0 {
		t.Errorf("employee unread after read: got %d, want 0", got)
	}
	// The employee reading their view never touches the admin's count.
	if got := e.unreadFor(t, convID, admin1); got != 1 {
		t.Errorf("admin unread after employee read: got %d, want 1", got)
	}
}
