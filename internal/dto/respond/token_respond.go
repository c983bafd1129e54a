package respond

import "time"

// DeviceTokenRespond 设备令牌响应
type DeviceTokenRespond struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
