package constants

// 本地集合名（同时是远端集合名）
const (
	CollectionConversations      = "conversations"
	CollectionMessages           = "messages"
	CollectionProfiles           = "profiles"
	CollectionMeetings           = "meetings"
	CollectionMentorshipRequests = "mentorshipRequests"
	CollectionInvitations        = "invitations"
	CollectionInvitationInbox    = "invitationInbox"
)

// 非集合的本地键空间
const (
	RateGuardKeyPrefix = "rateGuard:" // 限流记录，后接被限流的键
	SessionKey         = "session"    // 当前设备的会话记录
)

const (
	CHANNEL_SIZE        = 100 // 后台任务通道大小
	WORKER_NUM          = 4   // 后台任务协程数
	REDIS_TIMEOUT       = 1   // redis 文档缓存过期时间 (分钟)
	INVITATION_CODE_LEN = 8   // 邀请码长度
)
