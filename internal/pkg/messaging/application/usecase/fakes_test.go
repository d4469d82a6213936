package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	cacheAdapter "backchat/internal/infrastructure/cache/adapter"
	directory "backchat/internal/pkg/directory/port"
	appcache "backchat/internal/pkg/messaging/application/cache"
	messaging "backchat/internal/pkg/messaging/application/domain"
	"backchat/internal/pkg/messaging/application/usecase"
	repository "backchat/internal/pkg/messaging/persistence/repository/port"
)

// fakeConversationRepo is an in-memory ConversationRepository honoring the
// same contracts as the pgx adapter, including the pair-key unique index.
type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]messaging.Conversation
	participants  map[string][]messaging.Participant
	hiddenPairs   map[string]bool // pair keys hidden from the next lookup, to simulate the create race
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		conversations: make(map[string]messaging.Conversation),
		participants:  make(map[string][]messaging.Participant),
		hiddenPairs:   make(map[string]bool),
	}
}

var _ repository.ConversationRepository = (*fakeConversationRepo)(nil)

func (r *fakeConversationRepo) CreateWithParticipants(ctx context.Context, c messaging.Conversation, participants []messaging.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.PairKey != nil {
		for _, existing := range r.conversations {
			if existing.PairKey != nil && *existing.PairKey == *c.PairKey {
				return messaging.ErrConflict
			}
		}
	}
	r.conversations[c.ID] = c
	r.participants[c.ID] = append([]messaging.Participant(nil), participants...)
	return nil
}

func (r *fakeConversationRepo) GetByID(ctx context.Context, id string) (*messaging.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok {
		return nil, messaging.ErrConversationNotFound
	}
	return &c, nil
}

func (r *fakeConversationRepo) FindPrivateByPairKey(ctx context.Context, pairKey string) (*messaging.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hiddenPairs[pairKey] {
		delete(r.hiddenPairs, pairKey)
		return nil, nil
	}
	for _, c := range r.conversations {
		if c.PairKey != nil && *c.PairKey == pairKey {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeConversationRepo) ListForActor(ctx context.Context, ref messaging.ActorRef) ([]messaging.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []messaging.Conversation
	for id, c := range r.conversations {
		for _, p := range r.participants[id] {
			if p.Ref.Equal(ref) {
				out = append(out, c)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeConversationRepo) ListParticipants(ctx context.Context, conversationID string) ([]messaging.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]messaging.Participant(nil), r.participants[conversationID]...), nil
}

func (r *fakeConversationRepo) GetParticipant(ctx context.Context, conversationID string, ref messaging.ActorRef) (*messaging.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants[conversationID] {
		if p.Ref.Equal(ref) {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *fakeConversationRepo) AddParticipants(ctx context.Context, conversationID string, participants []messaging.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, add := range participants {
		dup := false
		for _, p := range r.participants[conversationID] {
			if p.Ref.Equal(add.Ref) {
				dup = true
				break
			}
		}
		if !dup {
			r.participants[conversationID] = append(r.participants[conversationID], add)
		}
	}
	return nil
}

func (r *fakeConversationRepo) SetLastReadAt(ctx context.Context, conversationID string, ref messaging.ActorRef, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	parts := r.participants[conversationID]
	for i := range parts {
		if parts[i].Ref.Equal(ref) {
			t := at
			parts[i].LastReadAt = &t
			return nil
		}
	}
	return messaging.ErrActorNotFound
}

func (r *fakeConversationRepo) touch(conversationID string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conversations[conversationID]; ok {
		c.UpdatedAt = at
		r.conversations[conversationID] = c
	}
}

// fakeMessageRepo keeps the two tables as separate slices, like the store.
// Insert timestamps are forced strictly increasing so ordering and watermark
// comparisons are deterministic.
type fakeMessageRepo struct {
	mu      sync.Mutex
	convs   *fakeConversationRepo
	group   map[string][]messaging.GroupMessage
	private map[string][]messaging.PrivateMessage
	last    time.Time
}

func newFakeMessageRepo(convs *fakeConversationRepo) *fakeMessageRepo {
	return &fakeMessageRepo{
		convs:   convs,
		group:   make(map[string][]messaging.GroupMessage),
		private: make(map[string][]messaging.PrivateMessage),
	}
}

var _ repository.MessageRepository = (*fakeMessageRepo)(nil)

func (r *fakeMessageRepo) nextTime(at time.Time) time.Time {
	if !at.After(r.last) {
		at = r.last.Add(time.Millisecond)
	}
	r.last = at
	return at
}

func (r *fakeMessageRepo) InsertGroup(ctx context.Context, m messaging.GroupMessage) (string, error) {
	r.mu.Lock()
	m.CreatedAt = r.nextTime(m.CreatedAt)
	r.group[m.ConversationID] = append(r.group[m.ConversationID], m)
	r.mu.Unlock()
	r.convs.touch(m.ConversationID, m.CreatedAt)
	return m.ID, nil
}

func (r *fakeMessageRepo) InsertPrivate(ctx context.Context, m messaging.PrivateMessage) (string, error) {
	r.mu.Lock()
	m.CreatedAt = r.nextTime(m.CreatedAt)
	r.private[m.ConversationID] = append(r.private[m.ConversationID], m)
	r.mu.Unlock()
	r.convs.touch(m.ConversationID, m.CreatedAt)
	return m.ID, nil
}

func (r *fakeMessageRepo) ListGroup(ctx context.Context, conversationID string, limit, offset int) ([]messaging.GroupMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := append([]messaging.GroupMessage(nil), r.group[conversationID]...)
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.After(msgs[j].CreatedAt) })
	return pageGroup(msgs, limit, offset), nil
}

func (r *fakeMessageRepo) ListPrivate(ctx context.Context, conversationID string, limit, offset int) ([]messaging.PrivateMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := append([]messaging.PrivateMessage(nil), r.private[conversationID]...)
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.After(msgs[j].CreatedAt) })
	return pagePrivate(msgs, limit, offset), nil
}

func (r *fakeMessageRepo) LatestGroup(ctx context.Context, conversationID string) (*messaging.GroupMessage, error) {
	msgs, _ := r.ListGroup(ctx, conversationID, 1, 0)
	if len(msgs) == 0 {
		return nil, nil
	}
	return &msgs[0], nil
}

func (r *fakeMessageRepo) LatestPrivate(ctx context.Context, conversationID string) (*messaging.PrivateMessage, error) {
	msgs, _ := r.ListPrivate(ctx, conversationID, 1, 0)
	if len(msgs) == 0 {
		return nil, nil
	}
	return &msgs[0], nil
}

func (r *fakeMessageRepo) CountGroupUnread(ctx context.Context, conversationID string, reader messaging.ActorRef, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.group[conversationID] {
		if !m.Sender.Equal(reader) && m.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeMessageRepo) CountPrivateUnread(ctx context.Context, conversationID string, reader messaging.ActorRef) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.private[conversationID] {
		if !m.IsRead && !m.Sender.Equal(reader) {
			n++
		}
	}
	return n, nil
}

func (r *fakeMessageRepo) MarkPrivateRead(ctx context.Context, conversationID string, reader messaging.ActorRef, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	msgs := r.private[conversationID]
	for i := range msgs {
		if !msgs[i].IsRead && !msgs[i].Sender.Equal(reader) {
			msgs[i].IsRead = true
			t := at
			msgs[i].ReadAt = &t
			updated++
		}
	}
	return updated, nil
}

func pageGroup(msgs []messaging.GroupMessage, limit, offset int) []messaging.GroupMessage {
	if offset >= len(msgs) {
		return nil
	}
	msgs = msgs[offset:]
	if limit > 0 && limit < len(msgs) {
		msgs = msgs[:limit]
	}
	return msgs
}

func pagePrivate(msgs []messaging.PrivateMessage, limit, offset int) []messaging.PrivateMessage {
	if offset >= len(msgs) {
		return nil
	}
	msgs = msgs[offset:]
	if limit > 0 && limit < len(msgs) {
		msgs = msgs[:limit]
	}
	return msgs
}

// fakeDirectory resolves actors from fixed maps.
type fakeDirectory struct {
	employees    map[string]directory.Profile
	defaultAdmin string
}

var _ directory.Directory = (*fakeDirectory)(nil)

func (d *fakeDirectory) ResolveActor(ctx context.Context, ref messaging.ActorRef) (directory.Profile, error) {
	if ref.Kind == messaging.ActorKindAdmin {
		return directory.Profile{DisplayName: "Management"}, nil
	}
	p, ok := d.employees[ref.ID]
	if !ok {
		return directory.Profile{}, messaging.ErrActorNotFound
	}
	return p, nil
}

func (d *fakeDirectory) FindDefaultAdmin(ctx context.Context) (string, error) {
	if d.defaultAdmin == "" {
		return "", messaging.ErrActorNotFound
	}
	return d.defaultAdmin, nil
}

func (d *fakeDirectory) EmployeeExists(ctx context.Context, id string) (bool, error) {
	_, ok := d.employees[id]
	return ok, nil
}

// fakeNotifier records dispatched notifications and can simulate failures.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []usecase.MessageNotification
	err  error
}

var _ usecase.Notifier = (*fakeNotifier)(nil)

func (n *fakeNotifier) Notify(ctx context.Context, notification usecase.MessageNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// env wires the full usecase stack over the fakes plus a real in-memory cache,
// so cache coherence is exercised the same way production wiring does.
type env struct {
	convs    *fakeConversationRepo
	msgs     *fakeMessageRepo
	dir      *fakeDirectory
	notifier *fakeNotifier
	cache    *cacheAdapter.MemoryCache

	resolve     *usecase.GetOrCreatePrivateConversationUseCase
	send        *usecase.SendMessageUseCase
	sendPrivate *usecase.SendPrivateMessageUseCase
	createGroup *usecase.CreateGroupConversationUseCase
	addParts    *usecase.AddParticipantsUseCase
	getMsgs     *usecase.GetMessagesUseCase
	list        *usecase.ListConversationsUseCase
	markRead    *usecase.MarkConversationReadUseCase
	unread      *usecase.UnreadCountUseCase
}

func newEnv() *env {
	log := zap.NewNop()
	convs := newFakeConversationRepo()
	msgs := newFakeMessageRepo(convs)
	dir := &fakeDirectory{
		employees: map[string]directory.Profile{
			"7": {DisplayName: "Ada Alvarez", ProfileImageRef: "profiles/7.jpg"},
			"8": {DisplayName: "Ben Okafor"},
		},
		defaultAdmin: "1",
	}
	notifier := &fakeNotifier{}
	memCache := cacheAdapter.NewMemoryAdapter()
	views := appcache.NewViewStore(memCache, log)
	inv := appcache.NewInvalidator(memCache, log)
	unread := usecase.NewUnreadCountUseCase(msgs)

	e := &env{
		convs:       convs,
		msgs:        msgs,
		dir:         dir,
		notifier:    notifier,
		cache:       memCache,
		resolve:     usecase.NewGetOrCreatePrivateConversationUseCase(convs, dir, inv),
		send:        usecase.NewSendMessageUseCase(convs, msgs, dir, notifier, inv, log),
		createGroup: usecase.NewCreateGroupConversationUseCase(convs, inv),
		addParts:    usecase.NewAddParticipantsUseCase(convs, inv),
		getMsgs:     usecase.NewGetMessagesUseCase(convs, msgs, views),
		list:        usecase.NewListConversationsUseCase(convs, msgs, dir, unread, views, log),
		markRead:    usecase.NewMarkConversationReadUseCase(convs, msgs, inv),
		unread:      unread,
	}
	e.sendPrivate = usecase.NewSendPrivateMessageUseCase(e.resolve, e.send)
	return e
}

var (
	employee7 = messaging.ActorRef{Kind: messaging.ActorKindEmployee, ID: "7"}
	employee8 = messaging.ActorRef{Kind: messaging.ActorKindEmployee, ID: "8"}
	admin1    = messaging.ActorRef{Kind: messaging.ActorKindAdmin, ID: "1"}
)
