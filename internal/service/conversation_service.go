package service

import (
	"context"
	"errors"

	"github.com/waveline/backstage/internal/entity"
	"github.com/waveline/backstage/internal/repository"
	"github.com/waveline/backstage/pkg/constant"
	"github.com/waveline/backstage/pkg/errcode"
	"github.com/waveline/backstage/pkg/logger"
	"gorm.io/gorm"
)

// ConversationService owns conversation resolution and the per-viewer
// conversation/unread views
type ConversationService struct {
	convRepo    repository.ConversationRepository
	msgRepo     repository.MessageRepository
	artistRepo  repository.ArtistRepository
	accountRepo repository.AccountRepository
	badge       repository.UnreadBadgeCache
}

// NewConversationService creates a new ConversationService
func NewConversationService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	artistRepo repository.ArtistRepository,
	accountRepo repository.AccountRepository,
	badge repository.UnreadBadgeCache,
) *ConversationService {
	return &ConversationService{
		convRepo:    convRepo,
		msgRepo:     msgRepo,
		artistRepo:  artistRepo,
		accountRepo: accountRepo,
		badge:       badge,
	}
}

// ConversationSignature is the (initiator identity, target artist) pair that
// distinguishes conversations between the same two accounts
type ConversationSignature struct {
	Initiator      entity.IdentityRef
	TargetArtistId int64
}

// ResolutionResult is the outcome of resolving an actor/target pairing.
// Conversation is non-nil when an existing thread matched; otherwise
// Signature carries the canonical parameters a create must use.
type ResolutionResult struct {
	Conversation *entity.Conversation
	Signature    ConversationSignature
}

// matchConversation reports whether an existing conversation between the
// actor's account and the target owner's account carries the thread for the
// actor contacting the target artist. The two initiator directions are not
// symmetric: the thread's recipient-facing identity was fixed by whichever
// side spoke first, and must be re-derived from the other side's perspective
// when that side resolves later.
func matchConversation(conv *entity.Conversation, actor entity.IdentityRef, target *entity.ArtistProfile) bool {
	initiator := conv.InitiatorIdentity()

	if initiator.AccountId == actor.AccountId {
		// Actor opened this thread: exact signature match.
		return initiator.Equal(actor) && conv.TargetArtistId == target.Id
	}

	if initiator.AccountId == target.OwnerAccountId {
		if initiator.Kind == constant.IdentityKindArtist {
			// The other side spoke first as their artist persona. The stored
			// target names the actor's persona, or nothing when the actor was
			// addressed as a plain person.
			if actor.IsPerson() {
				return conv.TargetArtistId == constant.NoTargetArtist
			}
			return conv.TargetArtistId == actor.ArtistProfileId
		}
		// The other side spoke first as a person.
		return actor.IsPerson() && conv.TargetArtistId == target.Id
	}

	return false
}

// Resolve finds the existing conversation for (actor identity, target
// artist), or returns the canonical signature a new conversation must be
// created with.
func (s *ConversationService) Resolve(ctx context.Context, actor entity.IdentityRef, targetArtistId int64) (*ResolutionResult, error) {
	if !actor.Valid() {
		return nil, errcode.ErrInvalidParam
	}

	// An ARTIST identity must actually be owned by the acting account.
	if actor.IsArtist() {
		profile, err := s.artistRepo.GetById(ctx, actor.ArtistProfileId)
		if err != nil {
			logger.CtxError(ctx, "get actor artist profile failed: %v", err)
			return nil, errcode.ErrInternalServer
		}
		if profile == nil {
			return nil, errcode.ErrNoArtistProfile
		}
		if profile.OwnerAccountId != actor.AccountId {
			return nil, errcode.ErrIdentityInvalid
		}
	}

	target, err := s.artistRepo.GetById(ctx, targetArtistId)
	if err != nil {
		logger.CtxError(ctx, "get target artist profile failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if target == nil {
		return nil, errcode.ErrArtistNotFound
	}
	if target.OwnerAccountId == actor.AccountId {
		return nil, errcode.ErrSelfTarget
	}

	lowId, highId := entity.NormalizePair(actor.AccountId, target.OwnerAccountId)
	candidates, err := s.convRepo.ListByPair(ctx, lowId, highId)
	if err != nil {
		logger.CtxError(ctx, "list conversations for pair failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	var matched *entity.Conversation
	for _, conv := range candidates {
		if !matchConversation(conv, actor, target) {
			continue
		}
		if matched != nil {
			// The signature unique index forbids this; report it loudly and
			// keep the first (lowest id) match deterministically.
			logger.CtxError(ctx, "%v: conversation_id=%d and conversation_id=%d, actor_account_id=%d, target_artist_id=%d",
				errcode.ErrIntegrity, matched.Id, conv.Id, actor.AccountId, targetArtistId)
			continue
		}
		matched = conv
	}

	result := &ResolutionResult{
		Conversation: matched,
		Signature: ConversationSignature{
			Initiator:      actor,
			TargetArtistId: targetArtistId,
		},
	}
	return result, nil
}

// ResolveOrOpen resolves the conversation for (actor, target artist),
// creating it with the canonical signature when none exists. Idempotent:
// calling it twice with the same inputs yields the same conversation.
func (s *ConversationService) ResolveOrOpen(ctx context.Context, actor entity.IdentityRef, targetArtistId int64) (*entity.Conversation, error) {
	res, err := s.Resolve(ctx, actor, targetArtistId)
	if err != nil {
		return nil, err
	}
	if res.Conversation != nil {
		return res.Conversation, nil
	}

	target, err := s.artistRepo.GetById(ctx, targetArtistId)
	if err != nil || target == nil {
		// Resolve just verified the target; a disappearing profile is a
		// store-level failure.
		logger.CtxError(ctx, "target artist vanished during open: artist_id=%d, err=%v", targetArtistId, err)
		return nil, errcode.ErrInternalServer
	}

	lowId, highId := entity.NormalizePair(actor.AccountId, target.OwnerAccountId)
	conv := &entity.Conversation{
		AccountLowId:       lowId,
		AccountHighId:      highId,
		InitiatorKind:      res.Signature.Initiator.Kind,
		InitiatorAccountId: res.Signature.Initiator.AccountId,
		InitiatorArtistId:  res.Signature.Initiator.ArtistProfileId,
		TargetArtistId:     res.Signature.TargetArtistId,
	}

	if err := s.convRepo.Create(ctx, conv); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a create race; the winner's conversation resolves now.
			logger.CtxInfo(ctx, "conversation create conflict, re-resolving: actor_account_id=%d, target_artist_id=%d",
				actor.AccountId, targetArtistId)
			res, err := s.Resolve(ctx, actor, targetArtistId)
			if err != nil {
				return nil, err
			}
			if res.Conversation == nil {
				logger.CtxError(ctx, "conflict on create but re-resolve found nothing: actor_account_id=%d, target_artist_id=%d",
					actor.AccountId, targetArtistId)
				return nil, errcode.ErrIntegrity
			}
			return res.Conversation, nil
		}
		logger.CtxError(ctx, "create conversation failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	logger.CtxInfo(ctx, "conversation opened: conversation_id=%d, initiator_account_id=%d, initiator_kind=%d, target_artist_id=%d",
		conv.Id, actor.AccountId, actor.Kind, targetArtistId)
	return conv, nil
}

// matchPersonConversation is the mirror of matchConversation for an artist
// addressing a plain person. An actor-initiated thread stores no target
// artist; a thread the person opened first stores the actor's persona as its
// target.
func matchPersonConversation(conv *entity.Conversation, actor entity.IdentityRef, targetAccountId int64) bool {
	initiator := conv.InitiatorIdentity()

	if initiator.AccountId == actor.AccountId {
		return initiator.Equal(actor) && conv.TargetArtistId == constant.NoTargetArtist
	}

	if initiator.AccountId == targetAccountId {
		return initiator.Kind == constant.IdentityKindPerson && conv.TargetArtistId == actor.ArtistProfileId
	}

	return false
}

// ResolveToPerson finds the existing conversation for an artist persona
// addressing an account as a plain person, or returns the canonical signature
// (no target artist) a new conversation must be created with. Only an ARTIST
// identity addresses plain persons; a person contacting a person has no
// persona context to thread under.
func (s *ConversationService) ResolveToPerson(ctx context.Context, actor entity.IdentityRef, targetAccountId int64) (*ResolutionResult, error) {
	if !actor.Valid() || targetAccountId <= 0 {
		return nil, errcode.ErrInvalidParam
	}
	if !actor.IsArtist() {
		return nil, errcode.ErrIdentityInvalid
	}
	if targetAccountId == actor.AccountId {
		return nil, errcode.ErrSelfTarget
	}

	profile, err := s.artistRepo.GetById(ctx, actor.ArtistProfileId)
	if err != nil {
		logger.CtxError(ctx, "get actor artist profile failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if profile == nil {
		return nil, errcode.ErrNoArtistProfile
	}
	if profile.OwnerAccountId != actor.AccountId {
		return nil, errcode.ErrIdentityInvalid
	}

	target, err := s.accountRepo.GetById(ctx, targetAccountId)
	if err != nil {
		logger.CtxError(ctx, "get target account failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if target == nil {
		return nil, errcode.ErrAccountNotFound
	}

	lowId, highId := entity.NormalizePair(actor.AccountId, targetAccountId)
	candidates, err := s.convRepo.ListByPair(ctx, lowId, highId)
	if err != nil {
		logger.CtxError(ctx, "list conversations for pair failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	var matched *entity.Conversation
	for _, conv := range candidates {
		if !matchPersonConversation(conv, actor, targetAccountId) {
			continue
		}
		if matched != nil {
			logger.CtxError(ctx, "%v: conversation_id=%d and conversation_id=%d, actor_account_id=%d, target_account_id=%d",
				errcode.ErrIntegrity, matched.Id, conv.Id, actor.AccountId, targetAccountId)
			continue
		}
		matched = conv
	}

	return &ResolutionResult{
		Conversation: matched,
		Signature: ConversationSignature{
			Initiator:      actor,
			TargetArtistId: constant.NoTargetArtist,
		},
	}, nil
}

// ResolveOrOpenToPerson resolves the conversation for an artist persona
// addressing a plain person, creating it when none exists
func (s *ConversationService) ResolveOrOpenToPerson(ctx context.Context, actor entity.IdentityRef, targetAccountId int64) (*entity.Conversation, error) {
	res, err := s.ResolveToPerson(ctx, actor, targetAccountId)
	if err != nil {
		return nil, err
	}
	if res.Conversation != nil {
		return res.Conversation, nil
	}

	lowId, highId := entity.NormalizePair(actor.AccountId, targetAccountId)
	conv := &entity.Conversation{
		AccountLowId:       lowId,
		AccountHighId:      highId,
		InitiatorKind:      res.Signature.Initiator.Kind,
		InitiatorAccountId: res.Signature.Initiator.AccountId,
		InitiatorArtistId:  res.Signature.Initiator.ArtistProfileId,
		TargetArtistId:     res.Signature.TargetArtistId,
	}

	if err := s.convRepo.Create(ctx, conv); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.CtxInfo(ctx, "conversation create conflict, re-resolving: actor_account_id=%d, target_account_id=%d",
				actor.AccountId, targetAccountId)
			res, err := s.ResolveToPerson(ctx, actor, targetAccountId)
			if err != nil {
				return nil, err
			}
			if res.Conversation == nil {
				logger.CtxError(ctx, "conflict on create but re-resolve found nothing: actor_account_id=%d, target_account_id=%d",
					actor.AccountId, targetAccountId)
				return nil, errcode.ErrIntegrity
			}
			return res.Conversation, nil
		}
		logger.CtxError(ctx, "create conversation failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	logger.CtxInfo(ctx, "conversation opened: conversation_id=%d, initiator_account_id=%d, initiator_artist_id=%d, target_account_id=%d",
		conv.Id, actor.AccountId, actor.ArtistProfileId, targetAccountId)
	return conv, nil
}

// GetConversation gets one conversation from the viewer's perspective
func (s *ConversationService) GetConversation(ctx context.Context, viewerAccountId, conversationId int64) (*entity.ConversationInfo, error) {
	conv, err := s.convRepo.GetById(ctx, conversationId)
	if err != nil {
		logger.CtxError(ctx, "get conversation failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if conv == nil {
		return nil, errcode.ErrConvNotFound
	}
	if !conv.HasParticipant(viewerAccountId) {
		return nil, errcode.ErrNoPermission
	}

	unread, err := s.msgRepo.CountUnread(ctx, conv.Id, viewerAccountId)
	if err != nil {
		logger.CtxError(ctx, "count unread failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	latest, err := s.latestMessageInfo(ctx, conv)
	if err != nil {
		return nil, err
	}

	return conv.ToConversationInfo(viewerAccountId, unread, latest), nil
}

// ListConversations lists the viewer's conversations, most recently updated
// first, with per-conversation unread counts and latest messages
func (s *ConversationService) ListConversations(ctx context.Context, viewerAccountId int64) ([]*entity.ConversationInfo, error) {
	convs, err := s.convRepo.ListForAccount(ctx, viewerAccountId)
	if err != nil {
		logger.CtxError(ctx, "list conversations failed: account_id=%d, error=%v", viewerAccountId, err)
		return nil, errcode.ErrInternalServer
	}

	convIds := make([]int64, 0, len(convs))
	latestIds := make([]int64, 0, len(convs))
	for _, conv := range convs {
		convIds = append(convIds, conv.Id)
		if conv.LatestMessageId > 0 {
			latestIds = append(latestIds, conv.LatestMessageId)
		}
	}

	unreadByConv, err := s.msgRepo.CountUnreadByConversations(ctx, convIds, viewerAccountId)
	if err != nil {
		logger.CtxError(ctx, "count unread by conversations failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	latestMsgs, err := s.msgRepo.GetByIds(ctx, latestIds)
	if err != nil {
		logger.CtxError(ctx, "get latest messages failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	latestById := make(map[int64]*entity.Message, len(latestMsgs))
	for _, msg := range latestMsgs {
		latestById[msg.Id] = msg
	}

	result := make([]*entity.ConversationInfo, 0, len(convs))
	for _, conv := range convs {
		var latest *entity.MessageInfo
		if msg, ok := latestById[conv.LatestMessageId]; ok {
			latest = msg.ToMessageInfo()
		}
		result = append(result, conv.ToConversationInfo(viewerAccountId, unreadByConv[conv.Id], latest))
	}

	return result, nil
}

// MarkRead marks every message in the conversation that the viewer did not
// send as read, and resets the viewer's badge projection
func (s *ConversationService) MarkRead(ctx context.Context, viewerAccountId, conversationId int64) error {
	conv, err := s.convRepo.GetById(ctx, conversationId)
	if err != nil {
		logger.CtxError(ctx, "get conversation failed: %v", err)
		return errcode.ErrInternalServer
	}
	if conv == nil {
		return errcode.ErrConvNotFound
	}
	if !conv.HasParticipant(viewerAccountId) {
		return errcode.ErrNoPermission
	}

	affected, err := s.msgRepo.MarkRead(ctx, conversationId, viewerAccountId)
	if err != nil {
		logger.CtxError(ctx, "mark read failed: %v", err)
		return errcode.ErrInternalServer
	}

	if err := s.badge.Invalidate(ctx, viewerAccountId); err != nil {
		logger.CtxWarn(ctx, "invalidate badge failed: account_id=%d, error=%v", viewerAccountId, err)
	}

	logger.CtxDebug(ctx, "conversation marked read: conversation_id=%d, viewer_account_id=%d, messages=%d",
		conversationId, viewerAccountId, affected)
	return nil
}

// UnreadBadgeCount returns the viewer's aggregate unread count across all
// conversations, served from the badge projection when warm
func (s *ConversationService) UnreadBadgeCount(ctx context.Context, viewerAccountId int64) (int64, error) {
	count, hit, err := s.badge.Get(ctx, viewerAccountId)
	if err != nil {
		logger.CtxWarn(ctx, "badge cache get failed: account_id=%d, error=%v", viewerAccountId, err)
	} else if hit {
		return count, nil
	}

	count, err = s.msgRepo.CountUnreadTotal(ctx, viewerAccountId)
	if err != nil {
		logger.CtxError(ctx, "count unread total failed: %v", err)
		return 0, errcode.ErrInternalServer
	}

	if err := s.badge.Set(ctx, viewerAccountId, count); err != nil {
		logger.CtxWarn(ctx, "badge cache set failed: account_id=%d, error=%v", viewerAccountId, err)
	}

	return count, nil
}

func (s *ConversationService) latestMessageInfo(ctx context.Context, conv *entity.Conversation) (*entity.MessageInfo, error) {
	if conv.LatestMessageId == 0 {
		return nil, nil
	}
	msgs, err := s.msgRepo.GetByIds(ctx, []int64{conv.LatestMessageId})
	if err != nil {
		logger.CtxError(ctx, "get latest message failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[0].ToMessageInfo(), nil
}
