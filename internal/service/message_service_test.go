package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waveline/backstage/internal/entity"
	"github.com/waveline/backstage/pkg/constant"
	"github.com/waveline/backstage/pkg/errcode"
)

func openFanThread(t *testing.T, env *testEnv) *entity.Conversation {
	t.Helper()
	conv, err := env.convSvc.ResolveOrOpen(context.Background(), entity.PersonIdentity(3), 10)
	require.NoError(t, err)
	return conv
}

func TestSendContentValidation(t *testing.T) {
	env := newPopulatedEnv()
	ctx := context.Background()
	conv := openFanThread(t, env)

	tests := []struct {
		name          string
		msgType       int32
		text          string
		attachmentRef string
		wantErr       error
	}{
		{"text message", constant.MsgTypeText, "hi", "", nil},
		{"text without body", constant.MsgTypeText, "", "", errcode.ErrEmptyMessage},
		{"text ignores attachment rule", constant.MsgTypeText, "hi again", "ref://x", nil},
		{"audio with attachment", constant.MsgTypeAudio, "", "ref://demo.mp3", nil},
		{"audio without attachment", constant.MsgTypeAudio, "", "", errcode.ErrAttachmentRequired},
		{"voice without attachment", constant.MsgTypeVoice, "", "", errcode.ErrAttachmentRequired},
		{"track share without attachment", constant.MsgTypeTrackShare, "", "", errcode.ErrAttachmentRequired},
		{"track share with attachment", constant.MsgTypeTrackShare, "", "ref://track/9", nil},
		{"unknown type", 42, "hi", "ref://x", errcode.ErrInvalidParam},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.msgSvc.Send(ctx, entity.PersonIdentity(3), &SendMessageRequest{
				ConversationId: conv.Id,
				ClientMsgId:    fmt.Sprintf("validate-%d", i),
				MsgType:        tt.msgType,
				Text:           tt.text,
				AttachmentRef:  tt.attachmentRef,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSendRequiresClientMsgId(t *testing.T) {
	env := newPopulatedEnv()
	conv := openFanThread(t, env)

	_, err := env.msgSvc.Send(context.Background(), entity.PersonIdentity(3), &SendMessageRequest{
		ConversationId: conv.Id,
		MsgType:        constant.MsgTypeText,
		Text:           "hi",
	})
	assert.ErrorIs(t, err, errcode.ErrInvalidParam)
}

func TestSendIdempotentByClientMsgId(t *testing.T) {
	env := newPopulatedEnv()
	ctx := context.Background()
	conv := openFanThread(t, env)

	req := &SendMessageRequest{
		ConversationId: conv.Id,
		ClientMsgId:    "retry-me",
		MsgType:        constant.MsgTypeText,
		Text:           "only once",
	}

	first, err := env.msgSvc.Send(ctx, entity.PersonIdentity(3), req)
	require.NoError(t, err)

	second, err := env.msgSvc.Send(ctx, entity.PersonIdentity(3), req)
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)

	history, err := env.msgSvc.History(ctx, 3, conv.Id, 0, 50)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSendNonParticipantRejected(t *testing.T) {
	env := newPopulatedEnv()
	conv := openFanThread(t, env)

	_, err := env.msgSvc.Send(context.Background(), entity.PersonIdentity(1), &SendMessageRequest{
		ConversationId: conv.Id,
		ClientMsgId:    "intruder",
		MsgType:        constant.MsgTypeText,
		Text:           "let me in",
	})
	assert.ErrorIs(t, err, errcode.ErrNoPermission)
}

func TestSendUnknownConversation(t *testing.T) {
	env := newPopulatedEnv()

	_, err := env.msgSvc.Send(context.Background(), entity.PersonIdentity(3), &SendMessageRequest{
		ConversationId: 9999,
		ClientMsgId:    "nowhere",
		MsgType:        constant.MsgTypeText,
		Text:           "hello?",
	})
	assert.ErrorIs(t, err, errcode.ErrConvNotFound)
}

func TestSendUpdatesLatestMessage(t *testing.T) {
	env := newPopulatedEnv()
	ctx := context.Background()
	conv := openFanThread(t, env)

	msg, err := env.msgSvc.Send(ctx, entity.PersonIdentity(3), &SendMessageRequest{
		ConversationId: conv.Id,
		ClientMsgId:    "latest-1",
		MsgType:        constant.MsgTypeText,
		Text:           "first",
	})
	require.NoError(t, err)

	stored, err := env.convs.GetById(ctx, conv.Id)
	require.NoError(t, err)
	assert.Equal(t, msg.Id, stored.LatestMessageId)

	msg2, err := env.msgSvc.Send(ctx, entity.PersonIdentity(2), &SendMessageRequest{
		ConversationId: conv.Id,
		ClientMsgId:    "latest-2",
		MsgType:        constant.MsgTypeTrackShare,
		AttachmentRef:  "ref://track/12",
	})
	require.NoError(t, err)

	stored, err = env.convs.GetById(ctx, conv.Id)
	require.NoError(t, err)
	assert.Equal(t, msg2.Id, stored.LatestMessageId)
}

func TestUnreadNeverCountsOwnMessages(t *testing.T) {
	env := newPopulatedEnv()
	ctx := context.Background()
	conv := openFanThread(t, env)

	before, err := env.convSvc.UnreadBadgeCount(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), before)

	_, err = env.msgSvc.Send(ctx, entity.PersonIdentity(3), &SendMessageRequest{
		ConversationId: conv.Id,
		ClientMsgId:    "own-1",
		MsgType:        constant.MsgTypeText,
		Text:           "my own words",
	})
	require.NoError(t, err)

	// The sender's own badge stays flat; the recipient's grows.
	after, err := env.convSvc.UnreadBadgeCount(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), after)

	recipient, err := env.convSvc.UnreadBadgeCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), recipient)
}

func TestMarkReadResetsUnread(t *testing.T) {
	env := newPopulatedEnv()
	ctx := context.Background()
	conv := openFanThread(t, env)

	for i := 0; i < 3; i++ {
		_, err := env.msgSvc.Send(ctx, entity.PersonIdentity(3), &SendMessageRequest{
			ConversationId: conv.Id,
			ClientMsgId:    fmt.Sprintf("burst-%d", i),
			MsgType:        constant.MsgTypeText,
			Text:           "ping",
		})
		require.NoError(t, err)
	}

	count, err := env.convSvc.UnreadBadgeCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, env.convSvc.MarkRead(ctx, 2, conv.Id))

	count, err = env.convSvc.UnreadBadgeCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Marking read from outside the thread is rejected.
	assert.ErrorIs(t, env.convSvc.MarkRead(ctx, 1, conv.Id), errcode.ErrNoPermission)
}

func TestUnreadBadgeProjectionInvalidation(t *testing.T) {
	env := newPopulatedEnv()
	ctx := context.Background()
	conv := openFanThread(t, env)

	// First read warms the projection.
	count, err := env.convSvc.UnreadBadgeCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	_, warm, err := env.badge.Get(ctx, 2)
	require.NoError(t, err)
	assert.True(t, warm)

	// A new message drops the recipient's cached badge so the next read
	// recomputes instead of serving the stale zero.
	_, err = env.msgSvc.Send(ctx, entity.PersonIdentity(3), &SendMessageRequest{
		ConversationId: conv.Id,
		ClientMsgId:    "stale-buster",
		MsgType:        constant.MsgTypeText,
		Text:           "new",
	})
	require.NoError(t, err)

	_, warm, err = env.badge.Get(ctx, 2)
	require.NoError(t, err)
	assert.False(t, warm)

	count, err = env.convSvc.UnreadBadgeCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Marking read invalidates the viewer's own projection.
	require.NoError(t, env.convSvc.MarkRead(ctx, 2, conv.Id))
	_, warm, err = env.badge.Get(ctx, 2)
	require.NoError(t, err)
	assert.False(t, warm)
}

func TestHistoryNewestFirstWithPaging(t *testing.T) {
	env := newPopulatedEnv()
	ctx := context.Background()
	conv := openFanThread(t, env)

	var ids []int64
	for i := 0; i < 5; i++ {
		msg, err := env.msgSvc.Send(ctx, entity.PersonIdentity(3), &SendMessageRequest{
			ConversationId: conv.Id,
			ClientMsgId:    fmt.Sprintf("page-%d", i),
			MsgType:        constant.MsgTypeText,
			Text:           fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
		ids = append(ids, msg.Id)
	}

	page, err := env.msgSvc.History(ctx, 2, conv.Id, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[4], page[0].Id)
	assert.Equal(t, ids[3], page[1].Id)

	older, err := env.msgSvc.History(ctx, 2, conv.Id, page[1].Id, 10)
	require.NoError(t, err)
	require.Len(t, older, 3)
	assert.Equal(t, ids[2], older[0].Id)
	assert.Equal(t, ids[0], older[2].Id)

	_, err = env.msgSvc.History(ctx, 1, conv.Id, 0, 10)
	assert.ErrorIs(t, err, errcode.ErrNoPermission)
}

func TestSenderIdentityPreserved(t *testing.T) {
	env := newPopulatedEnv()
	ctx := context.Background()

	conv, err := env.convSvc.ResolveOrOpen(ctx, entity.ArtistIdentity(5, 1), 10)
	require.NoError(t, err)

	msg, err := env.msgSvc.Send(ctx, entity.ArtistIdentity(5, 1), &SendMessageRequest{
		ConversationId: conv.Id,
		ClientMsgId:    "persona-1",
		MsgType:        constant.MsgTypeText,
		Text:           "from the band account",
	})
	require.NoError(t, err)

	assert.True(t, msg.SenderIdentity().Equal(entity.ArtistIdentity(5, 1)))
}
