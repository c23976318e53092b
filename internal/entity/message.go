package entity

import "github.com/waveline/backstage/pkg/constant"

// Message represents a message in a conversation
type Message struct {
	Id              int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ConversationId  int64  `json:"conversation_id" gorm:"column:conversation_id;index"`
	ClientMsgId     string `json:"client_msg_id" gorm:"column:client_msg_id"`
	SenderKind      int32  `json:"sender_kind" gorm:"column:sender_kind"`
	SenderAccountId int64  `json:"sender_account_id" gorm:"column:sender_account_id"`
	SenderArtistId  int64  `json:"sender_artist_id" gorm:"column:sender_artist_id"`
	MsgType         int32  `json:"msg_type" gorm:"column:msg_type"`
	Text            string `json:"text" gorm:"column:text"`
	AttachmentRef   string `json:"attachment_ref" gorm:"column:attachment_ref"`
	IsRead          bool   `json:"is_read" gorm:"column:is_read"`
	SendAt          int64  `json:"send_at" gorm:"column:send_at"`
	CreatedAt       int64  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       int64  `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}

// SenderIdentity returns the identity the message was sent as
func (m *Message) SenderIdentity() IdentityRef {
	if m.SenderKind == constant.IdentityKindArtist {
		return ArtistIdentity(m.SenderArtistId, m.SenderAccountId)
	}
	return PersonIdentity(m.SenderAccountId)
}

// SetSenderIdentity stores the sender identity on the message
func (m *Message) SetSenderIdentity(sender IdentityRef) {
	m.SenderKind = sender.Kind
	m.SenderAccountId = sender.AccountId
	m.SenderArtistId = sender.ArtistProfileId
}

// MessageInfo represents message info for API response
type MessageInfo struct {
	Id             int64       `json:"id"`
	ConversationId int64       `json:"conversation_id"`
	ClientMsgId    string      `json:"client_msg_id"`
	SenderIdentity IdentityRef `json:"sender_identity"`
	MsgType        int32       `json:"msg_type"`
	Text           string      `json:"text,omitempty"`
	AttachmentRef  string      `json:"attachment_ref,omitempty"`
	IsRead         bool        `json:"is_read"`
	SendAt         int64       `json:"send_at"`
}

// ToMessageInfo converts Message to MessageInfo
func (m *Message) ToMessageInfo() *MessageInfo {
	return &MessageInfo{
		Id:             m.Id,
		ConversationId: m.ConversationId,
		ClientMsgId:    m.ClientMsgId,
		SenderIdentity: m.SenderIdentity(),
		MsgType:        m.MsgType,
		Text:           m.Text,
		AttachmentRef:  m.AttachmentRef,
		IsRead:         m.IsRead,
		SendAt:         m.SendAt,
	}
}
