package model

import "time"

// Message 聊天消息
// 离线写入时 ID 为本地生成的 uuid，远端写入成功后调用方拿到服务端分配的 ID
// 创建后除 Read 外不可变
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName"`
	RecipientID    string    `json:"recipientId"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}
