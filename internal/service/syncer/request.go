package syncer

import (
	"context"
	"time"

	"mentor_sync/internal/dao/local"
	"mentor_sync/internal/dao/remote"
	"mentor_sync/internal/model"
	"mentor_sync/pkg/constants"
)

// RequestSchema 导师申请归属申请人与导师，按创建时间倒序
var RequestSchema = Schema[model.MentorshipRequest]{
	Collection: constants.CollectionMentorshipRequests,
	ID:         func(r model.MentorshipRequest) string { return r.ID },
	SetID:      func(r *model.MentorshipRequest, id string) { r.ID = id },
	ReadKey:    func(r model.MentorshipRequest) string { return r.ID },
	Owners:     func(r model.MentorshipRequest) []string { return []string{r.RequesterID, r.MentorID} },
	Less: func(a, b model.MentorshipRequest) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	},
}

// RequestStore 导师申请的存取；状态迁移由 request.Manager 负责
type RequestStore struct {
	repo *Repo[model.MentorshipRequest]
}

func NewRequestStore(store local.Store, client remote.Client, opts ...Option) *RequestStore {
	return &RequestStore{repo: NewRepo(RequestSchema, store, client, opts...)}
}

// Create 新建 pending 状态的申请，note 应已清洗
func (s *RequestStore) Create(ctx context.Context, r model.MentorshipRequest) (model.MentorshipRequest, error) {
	if r.ID == "" {
		r.ID = s.repo.NewID()
	}
	r.Status = model.RequestPending
	r.CreatedAt = s.repo.Now()
	r.RespondedAt = nil
	r.ResponseNote = ""
	r.InvitationCode = ""
	if _, err := s.repo.Write(ctx, r); err != nil {
		return model.MentorshipRequest{}, err
	}
	return r, nil
}

// ListFor 用户发出或收到的全部申请
func (s *RequestStore) ListFor(ctx context.Context, userID string) ([]model.MentorshipRequest, error) {
	return s.repo.ListFor(ctx, userID)
}

// LoadLocal 本地完整视图
func (s *RequestStore) LoadLocal() (map[string]model.MentorshipRequest, error) {
	return s.repo.LoadLocal()
}

// SaveLocal 整体写回本地
func (s *RequestStore) SaveLocal(items map[string]model.MentorshipRequest) error {
	return s.repo.SaveLocal(items)
}

// Mirror 尽力镜像单条申请
func (s *RequestStore) Mirror(ctx context.Context, r model.MentorshipRequest) {
	s.repo.Mirror(ctx, r)
}

// Now 引擎时钟
func (s *RequestStore) Now() time.Time {
	return s.repo.Now()
}
