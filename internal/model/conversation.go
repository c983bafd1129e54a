// Package model 定义同步层的实体模型
// 本文件定义会话模型：两位参与者之间唯一的一条对话
package model

import (
	"sort"
	"strings"
	"time"
)

// Conversation 会话
// 标识由两位参与者 ID 排序后拼接得到，与发起方向无关
type Conversation struct {
	ID string `json:"id"`

	// ParticipantIDs 两位参与者，按字典序排列
	ParticipantIDs []string `json:"participantIds"`

	// ParticipantNames 参与者 ID -> 显示名
	ParticipantNames map[string]string `json:"participantNames"`

	// LastMessage / LastMessageAt 冗余的最后一条消息，用于会话列表展示与排序
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`

	// UnreadCount 参与者 ID -> 未读数，始终恰好包含两位参与者，且不为负
	UnreadCount map[string]int `json:"unreadCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Participant 会话参与者
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ConversationID 由两位参与者推导会话标识，与参数顺序无关
func ConversationID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// NewConversation 用两位参与者构造一条空会话
func NewConversation(a, b Participant, now time.Time) Conversation {
	ids := []string{a.ID, b.ID}
	sort.Strings(ids)
	c := Conversation{
		ID:             ConversationID(a.ID, b.ID),
		ParticipantIDs: ids,
		ParticipantNames: map[string]string{
			a.ID: a.Name,
			b.ID: b.Name,
		},
		LastMessageAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	c.Normalize()
	return c
}

// Normalize 修正未读计数：只保留两位参与者，缺失补零，负数归零
func (c *Conversation) Normalize() {
	unread := make(map[string]int, len(c.ParticipantIDs))
	for _, id := range c.ParticipantIDs {
		n := c.UnreadCount[id]
		if n < 0 {
			n = 0
		}
		unread[id] = n
	}
	c.UnreadCount = unread
	if c.ParticipantNames == nil {
		c.ParticipantNames = make(map[string]string)
	}
}

// Has 判断用户是否为会话参与者
func (c *Conversation) Has(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Other 返回另一位参与者，userID 不属于会话时返回空串
func (c *Conversation) Other(userID string) string {
	if !c.Has(userID) {
		return ""
	}
	for _, id := range c.ParticipantIDs {
		if id != userID {
			return id
		}
	}
	return userID
}
