// Package invitation 签发邀请码并投递到收件人的邀请箱
package invitation

import (
	"context"
	"time"

	"mentor_sync/internal/config"
	"mentor_sync/internal/dao/local"
	"mentor_sync/internal/dao/remote"
	"mentor_sync/internal/model"
	"mentor_sync/internal/service/syncer"
	"mentor_sync/pkg/constants"
	"mentor_sync/pkg/errorx"
	"mentor_sync/pkg/util/random"
)

// InvitationSchema 邀请按邀请码读取，归属签发人
var InvitationSchema = syncer.Schema[model.Invitation]{
	Collection: constants.CollectionInvitations,
	ID:         func(i model.Invitation) string { return i.ID },
	SetID:      func(i *model.Invitation, id string) { i.ID = id },
	ReadKey:    func(i model.Invitation) string { return i.Code },
	Owners:     func(i model.Invitation) []string { return []string{i.IssuerID} },
	Less: func(a, b model.Invitation) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	},
}

// InboxSchema 邀请箱按收件人读取，新投递的在前
var InboxSchema = syncer.Schema[model.InboxEntry]{
	Collection: constants.CollectionInvitationInbox,
	ID:         func(e model.InboxEntry) string { return e.ID },
	SetID:      func(e *model.InboxEntry, id string) { e.ID = id },
	ReadKey:    func(e model.InboxEntry) string { return e.RecipientID },
	Owners:     func(e model.InboxEntry) []string { return []string{e.RecipientID, e.IssuerID} },
	Less: func(a, b model.InboxEntry) bool {
		if !a.DeliveredAt.Equal(b.DeliveredAt) {
			return a.DeliveredAt.After(b.DeliveredAt)
		}
		return a.ID < b.ID
	},
}

// Service 邀请签发与投递
type Service struct {
	invitations *syncer.Repo[model.Invitation]
	inbox       *syncer.Repo[model.InboxEntry]
	ttl         time.Duration
}

// NewService 创建邀请服务，有效期取自 requestConfig
func NewService(store local.Store, client remote.Client, cfg config.RequestConfig, opts ...syncer.Option) *Service {
	ttl := cfg.InvitationTTL()
	if ttl <= 0 {
		ttl = time.Duration(config.DefaultInvitationTTLHours) * time.Hour
	}
	return &Service{
		invitations: syncer.NewRepo(InvitationSchema, store, client, opts...),
		inbox:       syncer.NewRepo(InboxSchema, store, client, opts...),
		ttl:         ttl,
	}
}

// Issue 为签发人生成一张新邀请
func (s *Service) Issue(ctx context.Context, issuerID string) (model.Invitation, error) {
	if issuerID == "" {
		return model.Invitation{}, errorx.Newf(errorx.CodeInvalidParam, "签发人不能为空")
	}
	code, err := random.GetRandomCode(constants.INVITATION_CODE_LEN)
	if err != nil {
		return model.Invitation{}, errorx.Wrap(err, errorx.CodeServerBusy, "生成邀请码失败")
	}
	now := s.invitations.Now()
	inv := model.Invitation{
		ID:        s.invitations.NewID(),
		Code:      code,
		IssuerID:  issuerID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if _, err := s.invitations.Write(ctx, inv); err != nil {
		return model.Invitation{}, err
	}
	return inv, nil
}

// Deliver 把邀请码投递到收件人邀请箱
func (s *Service) Deliver(ctx context.Context, recipientID, code, issuerID string) error {
	if recipientID == "" || code == "" {
		return errorx.Newf(errorx.CodeInvalidParam, "收件人和邀请码不能为空")
	}
	entry := model.InboxEntry{
		ID:          s.inbox.NewID(),
		RecipientID: recipientID,
		IssuerID:    issuerID,
		Code:        code,
		DeliveredAt: s.inbox.Now(),
	}
	_, err := s.inbox.Write(ctx, entry)
	return err
}

// Inbox 收件人的全部邀请
func (s *Service) Inbox(ctx context.Context, recipientID string) ([]model.InboxEntry, error) {
	return s.inbox.Read(ctx, recipientID)
}

// Lookup 按邀请码查找未过期的邀请
func (s *Service) Lookup(ctx context.Context, code string) (model.Invitation, bool, error) {
	invs, err := s.invitations.Read(ctx, code)
	if err != nil {
		return model.Invitation{}, false, err
	}
	now := s.invitations.Now()
	for _, inv := range invs {
		if !inv.Expired(now) {
			return inv, true, nil
		}
	}
	return model.Invitation{}, false, nil
}
