package syncer

import (
	"context"

	"go.uber.org/zap"

	"mentor_sync/internal/dao/local"
	"mentor_sync/internal/dao/remote"
	"mentor_sync/internal/model"
	"mentor_sync/pkg/constants"
	"mentor_sync/pkg/errorx"
)

// ConversationSchema 会话：标识即参与者推导出的会话 ID，按最近活动倒序
var ConversationSchema = Schema[model.Conversation]{
	Collection: constants.CollectionConversations,
	ID:         func(c model.Conversation) string { return c.ID },
	SetID:      func(c *model.Conversation, id string) { c.ID = id },
	ReadKey:    func(c model.Conversation) string { return c.ID },
	Owners:     func(c model.Conversation) []string { return c.ParticipantIDs },
	Less: func(a, b model.Conversation) bool {
		if !a.LastMessageAt.Equal(b.LastMessageAt) {
			return a.LastMessageAt.After(b.LastMessageAt)
		}
		return a.ID < b.ID
	},
}

// MessageSchema 消息：按会话读取，创建时间正序，远端写入由服务端分配标识
var MessageSchema = Schema[model.Message]{
	Collection: constants.CollectionMessages,
	ID:         func(m model.Message) string { return m.ID },
	SetID:      func(m *model.Message, id string) { m.ID = id },
	ReadKey:    func(m model.Message) string { return m.ConversationID },
	Owners:     func(m model.Message) []string { return []string{m.SenderID, m.RecipientID} },
	Less: func(a, b model.Message) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	},
	ServerAssignedID: true,
}

// ChatStore 会话与消息
type ChatStore struct {
	conversations *Repo[model.Conversation]
	messages      *Repo[model.Message]
}

// NewChatStore 创建会话与消息仓库
func NewChatStore(store local.Store, client remote.Client, opts ...Option) *ChatStore {
	return &ChatStore{
		conversations: NewRepo(ConversationSchema, store, client, opts...),
		messages:      NewRepo(MessageSchema, store, client, opts...),
	}
}

// OpenConversation 获取或创建两人之间的会话，参数顺序无关
func (s *ChatStore) OpenConversation(ctx context.Context, a, b model.Participant) (model.Conversation, error) {
	id := model.ConversationID(a.ID, b.ID)
	conv, err := s.conversations.CreateOrGet(ctx, id, model.NewConversation(a, b, s.conversations.Now()))
	if err != nil {
		return conv, err
	}
	conv.Normalize()
	return conv, nil
}

// SendMessage 写入一条消息并更新会话投影（最后一条消息、未读数）
// 本地两次写入对调用方是原子的：会话写入失败时回滚消息集合
// 返回的消息 ID 在远端写入成功时为服务端分配的标识
func (s *ChatStore) SendMessage(ctx context.Context, sender, recipient model.Participant, content string) (model.Message, error) {
	now := s.messages.Now()
	convID := model.ConversationID(sender.ID, recipient.ID)
	msg := model.Message{
		ID:             s.messages.NewID(),
		ConversationID: convID,
		SenderID:       sender.ID,
		SenderName:     sender.Name,
		RecipientID:    recipient.ID,
		Content:        content,
		CreatedAt:      now,
	}

	conv, err := s.commitLocal(msg, sender, recipient)
	if err != nil {
		return model.Message{}, err
	}

	msg.ID = s.messages.Mirror(ctx, msg)
	s.conversations.Mirror(ctx, conv)
	return msg, nil
}

// commitLocal 先写消息再写会话；会话写入失败时恢复消息集合原始载荷
func (s *ChatStore) commitLocal(msg model.Message, sender, recipient model.Participant) (model.Conversation, error) {
	msgColl := s.messages.Collection()
	before, err := msgColl.Raw()
	if err != nil {
		return model.Conversation{}, err
	}
	msgs, err := msgColl.Load()
	if err != nil {
		return model.Conversation{}, err
	}
	convs, err := s.conversations.LoadLocal()
	if err != nil {
		return model.Conversation{}, err
	}

	msgs[msg.ID] = msg
	if err := msgColl.Save(msgs); err != nil {
		return model.Conversation{}, err
	}

	conv, ok := convs[msg.ConversationID]
	if !ok {
		conv = model.NewConversation(sender, recipient, msg.CreatedAt)
	}
	conv.Normalize()
	conv.LastMessage = msg.Content
	conv.LastMessageAt = msg.CreatedAt
	conv.UpdatedAt = msg.CreatedAt
	conv.UnreadCount[recipient.ID]++
	conv.UnreadCount[sender.ID] = 0
	convs[conv.ID] = conv

	if err := s.conversations.SaveLocal(convs); err != nil {
		if rbErr := msgColl.Restore(before); rbErr != nil {
			zap.L().Error("rollback messages failed",
				zap.String("conversation", conv.ID),
				zap.Error(rbErr),
			)
		}
		return model.Conversation{}, errorx.Wrapf(err, errorx.CodeLocalStorage, "更新会话 %s 失败，消息已回滚", conv.ID)
	}
	return conv, nil
}

// Messages 会话内全部消息，按创建时间正序
func (s *ChatStore) Messages(ctx context.Context, conversationID string) ([]model.Message, error) {
	return s.messages.Read(ctx, conversationID)
}

// Conversations 用户参与的全部会话，按最近活动倒序
func (s *ChatStore) Conversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	convs, err := s.conversations.ListFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range convs {
		convs[i].Normalize()
	}
	return convs, nil
}

// MarkRead 清零读者的未读数并把发给读者的消息标记为已读
// 只镜像会话投影；消息的已读标记只保存在本地
func (s *ChatStore) MarkRead(ctx context.Context, conversationID, readerID string) error {
	convs, err := s.conversations.LoadLocal()
	if err != nil {
		return err
	}
	conv, ok := convs[conversationID]
	if !ok || !conv.Has(readerID) {
		return nil
	}
	conv.Normalize()
	conv.UnreadCount[readerID] = 0
	convs[conversationID] = conv
	if err := s.conversations.SaveLocal(convs); err != nil {
		return err
	}

	msgs, err := s.messages.LoadLocal()
	if err != nil {
		return err
	}
	changed := false
	for id, m := range msgs {
		if m.ConversationID == conversationID && m.RecipientID == readerID && !m.Read {
			m.Read = true
			msgs[id] = m
			changed = true
		}
	}
	if changed {
		if err := s.messages.SaveLocal(msgs); err != nil {
			return err
		}
	}

	s.conversations.Mirror(ctx, conv)
	return nil
}
