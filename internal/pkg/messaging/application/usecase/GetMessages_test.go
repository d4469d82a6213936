package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	messaging "backchat/internal/pkg/messaging/application/domain"
	"backchat/internal/pkg/messaging/application/usecase"
)

func TestGetMessagesNewestFirstWithPaging(t *testing.T) {
	t.Parallel()
	e := newEnv()
	ctx := context.Background()
	conv := e.mustCreateGroup(t, "Kitchen", "7", "8")

	for i := 1; i <= 5; i++ {
		if _, err := e.send.Execute(ctx, usecase.SendMessageInput{
			ConversationID: conv.ID, Sender: employee7, Content: fmt.Sprintf("msg %d", i),
		}); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	page, err := e.getMsgs.Execute(ctx, usecase.GetMessagesInput{
		ConversationID: conv.ID, Requester: employee8, Limit: 2,
	})
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page size: got %d, want 2", len(page))
	}
	if page[0].Content != "msg 5" || page[1].Content != "msg 4" {
		t.Errorf("ordering: got %q then %q, want msg 5 then msg 4", page[0].Content, page[1].Content)
	}

	next, err := e.getMsgs.Execute(ctx, usecase.GetMessagesInput{
		ConversationID: conv.ID, Requester: employee8, Limit: 2, Offset: 2,
	})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(next) != 2 || next[0].Content != "msg 3" {
		t.Errorf("second page: got %+v, want msg 3 first", next)
	}
}

func TestGetMessagesRequiresMembership(t *testing.T) {
	t.Parallel()
	e := newEnv()
	conv := e.mustCreateGroup(t, "Kitchen", "7")

	_, err := e.getMsgs.Execute(context.Background(), usecase.GetMessagesInput{
		ConversationID: conv.ID, Requester: employee8,
	})
	if !errors.Is(err, messaging.ErrNotParticipant) {
		t.Errorf("got %v, want ErrNotParticipant", err)
	}
}

func TestGetMessagesUnknownConversation(t *testing.T) {
	t.Parallel()
	e := newEnv()

	_, err := e.getMsgs.Execute(context.Background(), usecase.GetMessagesInput{
		ConversationID: "missing", Requester: employee7,
	})
	if !errors.Is(err, messaging.ErrConversationNotFound) {
		t.Errorf("got %v, want ErrConversationNotFound", err)
	}
}

func TestGetMessagesPrivateCarriesReadState(t *testing.T) {
	t.Parallel()
	e := newEnv()
	ctx := context.Background()

	out, err := e.sendPrivate.Execute(ctx, usecase.SendPrivateMessageInput{
		Actor: employee8, Counterparty: "7", Content: "did you clock in?",
	})
	if err != nil {
		t.Fatalf("send private: %v", err)
	}

	msgs, err := e.getMsgs.Execute(ctx, usecase.GetMessagesInput{
		ConversationID: out.ConversationID, Requester: employee7,
	})
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].IsRead == nil || *msgs[0].IsRead {
		t.Errorf("fresh private message must report isRead=false, got %+v", msgs[0].IsRead)
	}

	if err := e.markRead.Execute(ctx, usecase.MarkConversationReadInput{ConversationID: out.ConversationID, Actor: employee7}); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	msgs, err = e.getMsgs.Execute(ctx, usecase.GetMessagesInput{
		ConversationID: out.ConversationID, Requester: employee7,
	})
	if err != nil {
		t.Fatalf("get after read: %v", err)
	}
	if msgs[0].IsRead == nil || !*msgs[0].IsRead {
		t.Errorf("message must report isRead=true after mark-read")
	}
	if msgs[0].ReadAt == nil {
		t.Errorf("readAt must be recorded after mark-read")
	}
}

func TestGetMessagesDefaultPageReflectsNewSends(t *testing.T) {
	t.Parallel()
	e := newEnv()
	ctx := context.Background()
	conv := e.mustCreateGroup(t, "Kitchen", "7")

	if _, err := e.send.Execute(ctx, usecase.SendMessageInput{
		ConversationID: conv.ID, Sender: employee7, Content: "first",
	}); err != nil {
		t.Fatalf("send: %v", err)
	}

	// Warm the default-page cache, then send again; the eviction on send must
	// keep the next read coherent despite the list TTL.
	if _, err := e.getMsgs.Execute(ctx, usecase.GetMessagesInput{ConversationID: conv.ID, Requester: employee7}); err != nil {
		t.Fatalf("warm-up read: %v", err)
	}
	if _, err := e.send.Execute(ctx, usecase.SendMessageInput{
		ConversationID: conv.ID, Sender: employee7, Content: "second",
	}); err != nil {
		t.Fatalf("send: %v", err)
	}

	msgs, err := e.getMsgs.Execute(ctx, usecase.GetMessagesInput{ConversationID: conv.ID, Requester: employee7})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("post-send page: got %d messages, want 2", len(msgs))
	}
	if msgs[0].Content != "second" {
		t.Errorf("post-send page head: got %q, want second", msgs[0].Content)
	}
}
