package model

import "time"

// Invitation 接受申请后为导师签发的邀请
type Invitation struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	IssuerID  string    `json:"issuerId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired 邀请是否已过期
func (i Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// InboxEntry 投递到收件人邀请箱的一条记录
type InboxEntry struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipientId"`
	IssuerID    string    `json:"issuerId"`
	Code        string    `json:"code"`
	DeliveredAt time.Time `json:"deliveredAt"`
}
