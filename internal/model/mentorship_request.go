package model

import "time"

// RequestStatus 导师申请状态
// pending 为初始状态，accepted / declined 为终态
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// Terminal 是否为终态
func (s RequestStatus) Terminal() bool {
	return s == RequestAccepted || s == RequestDeclined
}

// MentorshipRequest 学员向导师发起的申请
// RespondedAt 当且仅当状态离开 pending 时设置一次
type MentorshipRequest struct {
	ID            string        `json:"id"`
	RequesterID   string        `json:"requesterId"`
	RequesterName string        `json:"requesterName"`
	MentorID      string        `json:"mentorId"`
	MentorName    string        `json:"mentorName"`
	Note          string        `json:"note,omitempty"`
	Status        RequestStatus `json:"status"`
	ResponseNote  string        `json:"responseNote,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	RespondedAt   *time.Time    `json:"respondedAt,omitempty"`

	// InvitationCode 接受后异步签发的邀请码，终态后唯一允许追加的字段
	InvitationCode string `json:"invitationCode,omitempty"`
}
