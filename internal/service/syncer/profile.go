package syncer

import (
	"context"

	"mentor_sync/internal/dao/local"
	"mentor_sync/internal/dao/remote"
	"mentor_sync/internal/model"
	"mentor_sync/pkg/constants"
)

// ProfileSchema 资料按用户 ID 存取
var ProfileSchema = Schema[model.Profile]{
	Collection: constants.CollectionProfiles,
	ID:         func(p model.Profile) string { return p.UserID },
	SetID:      func(p *model.Profile, id string) { p.UserID = id },
	ReadKey:    func(p model.Profile) string { return p.UserID },
	Owners:     func(p model.Profile) []string { return []string{p.UserID} },
	Less:       func(a, b model.Profile) bool { return a.UserID < b.UserID },
}

// ProfileStore 用户资料
type ProfileStore struct {
	repo *Repo[model.Profile]
}

func NewProfileStore(store local.Store, client remote.Client, opts ...Option) *ProfileStore {
	return &ProfileStore{repo: NewRepo(ProfileSchema, store, client, opts...)}
}

// GetOrCreate 首次登录时用 seed 建档，之后返回已有资料
func (s *ProfileStore) GetOrCreate(ctx context.Context, userID string, seed model.Profile) (model.Profile, error) {
	now := s.repo.Now()
	seed.UserID = userID
	if seed.CreatedAt.IsZero() {
		seed.CreatedAt = now
	}
	seed.UpdatedAt = now
	return s.repo.CreateOrGet(ctx, userID, seed)
}

// Save 覆盖保存资料（最后写入者胜）
func (s *ProfileStore) Save(ctx context.Context, p model.Profile) (model.Profile, error) {
	now := s.repo.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if _, err := s.repo.Write(ctx, p); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// Get 读取资料，不存在时 ok 为 false
func (s *ProfileStore) Get(ctx context.Context, userID string) (model.Profile, bool, error) {
	return s.repo.Get(ctx, userID)
}
