package service

import (
	"context"
	"sync"

	"github.com/waveline/backstage/internal/entity"
	"gorm.io/gorm"
)

// In-memory repository fakes implementing the repository interfaces. The
// conversation fake enforces the signature uniqueness constraint the MySQL
// index provides, so race behavior can be exercised deterministically.

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[int64]*entity.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[int64]*entity.Account)}
}

func (r *fakeAccountRepo) Create(ctx context.Context, account *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.Id] = account
	return nil
}

func (r *fakeAccountRepo) GetById(ctx context.Context, id int64) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[id], nil
}

func (r *fakeAccountRepo) GetByUsername(ctx context.Context, username string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, nil
}

type fakeArtistRepo struct {
	mu       sync.Mutex
	profiles map[int64]*entity.ArtistProfile
}

func newFakeArtistRepo() *fakeArtistRepo {
	return &fakeArtistRepo{profiles: make(map[int64]*entity.ArtistProfile)}
}

func (r *fakeArtistRepo) Create(ctx context.Context, profile *entity.ArtistProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.OwnerAccountId == profile.OwnerAccountId {
			return gorm.ErrDuplicatedKey
		}
	}
	r.profiles[profile.Id] = profile
	return nil
}

func (r *fakeArtistRepo) GetById(ctx context.Context, id int64) (*entity.ArtistProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profiles[id], nil
}

func (r *fakeArtistRepo) GetByOwner(ctx context.Context, ownerAccountId int64) (*entity.ArtistProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.OwnerAccountId == ownerAccountId {
			return p, nil
		}
	}
	return nil, nil
}

type fakeConversationRepo struct {
	mu     sync.Mutex
	nextId int64
	convs  map[int64]*entity.Conversation

	// onCreate runs before the uniqueness check, letting tests simulate a
	// concurrent create winning the race.
	onCreate func()
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{convs: make(map[int64]*entity.Conversation)}
}

func (r *fakeConversationRepo) sameSignature(a, b *entity.Conversation) bool {
	return a.AccountLowId == b.AccountLowId &&
		a.AccountHighId == b.AccountHighId &&
		a.InitiatorKind == b.InitiatorKind &&
		a.InitiatorAccountId == b.InitiatorAccountId &&
		a.InitiatorArtistId == b.InitiatorArtistId &&
		a.TargetArtistId == b.TargetArtistId
}

func (r *fakeConversationRepo) Create(ctx context.Context, conv *entity.Conversation) error {
	if r.onCreate != nil {
		hook := r.onCreate
		r.onCreate = nil
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.convs {
		if r.sameSignature(existing, conv) {
			return gorm.ErrDuplicatedKey
		}
	}
	return r.insertLocked(conv)
}

// inject stores a conversation without the uniqueness check, simulating
// corrupted data for integrity tests.
func (r *fakeConversationRepo) inject(conv *entity.Conversation) *entity.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.insertLocked(conv)
	return conv
}

func (r *fakeConversationRepo) insertLocked(conv *entity.Conversation) error {
	r.nextId++
	conv.Id = r.nextId
	now := entity.NowUnixMilli()
	if conv.CreatedAt == 0 {
		conv.CreatedAt = now
	}
	if conv.UpdatedAt == 0 {
		conv.UpdatedAt = now
	}
	copied := *conv
	r.convs[conv.Id] = &copied
	return nil
}

func (r *fakeConversationRepo) GetById(ctx context.Context, id int64) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[id]
	if !ok {
		return nil, nil
	}
	copied := *conv
	return &copied, nil
}

func (r *fakeConversationRepo) ListByPair(ctx context.Context, lowId, highId int64) ([]*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Conversation
	for id := int64(1); id <= r.nextId; id++ {
		conv, ok := r.convs[id]
		if !ok {
			continue
		}
		if conv.AccountLowId == lowId && conv.AccountHighId == highId {
			copied := *conv
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeConversationRepo) ListForAccount(ctx context.Context, accountId int64) ([]*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Conversation
	for id := int64(1); id <= r.nextId; id++ {
		conv, ok := r.convs[id]
		if !ok {
			continue
		}
		if conv.HasParticipant(accountId) {
			copied := *conv
			result = append(result, &copied)
		}
	}
	// updated_at descending
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].UpdatedAt > result[i].UpdatedAt {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

func (r *fakeConversationRepo) MarkAccepted(ctx context.Context, conversationId int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[conversationId]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if !conv.IsAccepted {
		conv.IsAccepted = true
		conv.UpdatedAt = entity.NowUnixMilli()
	}
	return nil
}

type fakeMessageRepo struct {
	mu     sync.Mutex
	nextId int64
	msgs   map[int64]*entity.Message
	convs  *fakeConversationRepo
}

func newFakeMessageRepo(convs *fakeConversationRepo) *fakeMessageRepo {
	return &fakeMessageRepo{msgs: make(map[int64]*entity.Message), convs: convs}
}

func (r *fakeMessageRepo) Append(ctx context.Context, msg *entity.Message, accept bool) error {
	r.mu.Lock()
	r.nextId++
	msg.Id = r.nextId
	now := entity.NowUnixMilli()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	copied := *msg
	r.msgs[msg.Id] = &copied
	r.mu.Unlock()

	r.convs.mu.Lock()
	defer r.convs.mu.Unlock()
	conv, ok := r.convs.convs[msg.ConversationId]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	conv.LatestMessageId = msg.Id
	conv.UpdatedAt = now
	if accept {
		conv.IsAccepted = true
	}
	return nil
}

func (r *fakeMessageRepo) GetByClientMsgId(ctx context.Context, senderAccountId int64, clientMsgId string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m.SenderAccountId == senderAccountId && m.ClientMsgId == clientMsgId {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeMessageRepo) GetByIds(ctx context.Context, ids []int64) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Message
	for _, id := range ids {
		if m, ok := r.msgs[id]; ok {
			copied := *m
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeMessageRepo) ListByConversation(ctx context.Context, conversationId, beforeId int64, limit int) ([]*entity.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Message
	for id := r.nextId; id >= 1 && len(result) < limit; id-- {
		m, ok := r.msgs[id]
		if !ok || m.ConversationId != conversationId {
			continue
		}
		if beforeId > 0 && m.Id >= beforeId {
			continue
		}
		copied := *m
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, conversationId, viewerAccountId int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected int64
	for _, m := range r.msgs {
		if m.ConversationId == conversationId && m.SenderAccountId != viewerAccountId && !m.IsRead {
			m.IsRead = true
			affected++
		}
	}
	return affected, nil
}

func (r *fakeMessageRepo) CountUnread(ctx context.Context, conversationId, viewerAccountId int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.msgs {
		if m.ConversationId == conversationId && m.SenderAccountId != viewerAccountId && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) CountUnreadByConversations(ctx context.Context, conversationIds []int64, viewerAccountId int64) (map[int64]int64, error) {
	result := make(map[int64]int64)
	for _, id := range conversationIds {
		count, _ := r.CountUnread(ctx, id, viewerAccountId)
		if count > 0 {
			result[id] = count
		}
	}
	return result, nil
}

func (r *fakeMessageRepo) CountUnreadTotal(ctx context.Context, viewerAccountId int64) (int64, error) {
	convs, err := r.convs.ListForAccount(ctx, viewerAccountId)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, conv := range convs {
		count, _ := r.CountUnread(ctx, conv.Id, viewerAccountId)
		total += count
	}
	return total, nil
}

type fakeBadgeCache struct {
	mu            sync.Mutex
	counts        map[int64]int64
	invalidations map[int64]int
}

func newFakeBadgeCache() *fakeBadgeCache {
	return &fakeBadgeCache{
		counts:        make(map[int64]int64),
		invalidations: make(map[int64]int),
	}
}

func (c *fakeBadgeCache) Get(ctx context.Context, accountId int64) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	count, ok := c.counts[accountId]
	return count, ok, nil
}

func (c *fakeBadgeCache) Set(ctx context.Context, accountId int64, count int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[accountId] = count
	return nil
}

func (c *fakeBadgeCache) Invalidate(ctx context.Context, accountId int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, accountId)
	c.invalidations[accountId]++
	return nil
}
