package model

import "time"

// Role 用户在撮合中的角色
type Role string

const (
	RoleMentor Role = "mentor"
	RoleMentee Role = "mentee"
)

// Profile 用户资料，按用户 ID 唯一
type Profile struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Role        Role      `json:"role"`
	Bio         string    `json:"bio,omitempty"`
	Expertise   []string  `json:"expertise,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
