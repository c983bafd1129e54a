package syncer

import (
	"context"

	"mentor_sync/internal/dao/local"
	"mentor_sync/internal/dao/remote"
	"mentor_sync/internal/model"
	"mentor_sync/pkg/constants"
)

// MeetingSchema 会面归属导师与学员，按开始时间正序
var MeetingSchema = Schema[model.Meeting]{
	Collection: constants.CollectionMeetings,
	ID:         func(m model.Meeting) string { return m.ID },
	SetID:      func(m *model.Meeting, id string) { m.ID = id },
	ReadKey:    func(m model.Meeting) string { return m.ID },
	Owners:     func(m model.Meeting) []string { return []string{m.MentorID, m.MenteeID} },
	Less: func(a, b model.Meeting) bool {
		if !a.StartAt.Equal(b.StartAt) {
			return a.StartAt.Before(b.StartAt)
		}
		return a.ID < b.ID
	},
}

// MeetingStore 会面安排
type MeetingStore struct {
	repo *Repo[model.Meeting]
}

func NewMeetingStore(store local.Store, client remote.Client, opts ...Option) *MeetingStore {
	return &MeetingStore{repo: NewRepo(MeetingSchema, store, client, opts...)}
}

// Schedule 新建会面，状态为 scheduled
// 返回时已落本地，调用方可以据此安排提醒
func (s *MeetingStore) Schedule(ctx context.Context, m model.Meeting) (model.Meeting, error) {
	now := s.repo.Now()
	if m.ID == "" {
		m.ID = s.repo.NewID()
	}
	m.Status = model.MeetingScheduled
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.repo.Write(ctx, m); err != nil {
		return model.Meeting{}, err
	}
	return m, nil
}

// UpdateStatus 修改会面状态，会面不存在时 ok 为 false
func (s *MeetingStore) UpdateStatus(ctx context.Context, id string, status model.MeetingStatus, note string) (model.Meeting, bool, error) {
	items, err := s.repo.LoadLocal()
	if err != nil {
		return model.Meeting{}, false, err
	}
	m, ok := items[id]
	if !ok {
		return model.Meeting{}, false, nil
	}
	m.Status = status
	if note != "" {
		m.Note = note
	}
	m.UpdatedAt = s.repo.Now()
	items[id] = m
	if err := s.repo.SaveLocal(items); err != nil {
		return model.Meeting{}, false, err
	}
	s.repo.Mirror(ctx, m)
	return m, true, nil
}

// ListFor 用户作为导师或学员参与的全部会面
func (s *MeetingStore) ListFor(ctx context.Context, userID string) ([]model.Meeting, error) {
	return s.repo.ListFor(ctx, userID)
}
