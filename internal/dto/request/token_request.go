package request

// DeviceTokenRequest 设备换取令牌请求
// 使用位置: handler.AuthHandler.IssueToken
type DeviceTokenRequest struct {
	DeviceID string `json:"deviceId" binding:"required,max=128"`
	APIKey   string `json:"apiKey" binding:"required"`
}
