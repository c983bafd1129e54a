package model

import "time"

// MeetingStatus 会面状态
type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "scheduled"
	MeetingCompleted MeetingStatus = "completed"
	MeetingCancelled MeetingStatus = "cancelled"
)

// Meeting 导师与学员之间的一次会面
type Meeting struct {
	ID        string        `json:"id"`
	MentorID  string        `json:"mentorId"`
	MenteeID  string        `json:"menteeId"`
	Title     string        `json:"title"`
	StartAt   time.Time     `json:"startAt"`
	EndAt     time.Time     `json:"endAt"`
	Status    MeetingStatus `json:"status"`
	Note      string        `json:"note,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
