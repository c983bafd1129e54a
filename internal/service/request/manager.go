// Package request 管理导师申请的状态迁移
// pending -> accepted | declined，两个终态都不可逆
package request

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"mentor_sync/internal/config"
	"mentor_sync/internal/infrastructure/worker"
	"mentor_sync/internal/model"
	"mentor_sync/internal/service/syncer"
	"mentor_sync/pkg/constants"
	"mentor_sync/pkg/errorx"
	"mentor_sync/pkg/util/sanitize"
)

// Decision 导师对申请的处理结果
type Decision string

const (
	Accept  Decision = "accept"
	Decline Decision = "decline"
)

func (d Decision) target() (model.RequestStatus, bool) {
	switch d {
	case Accept:
		return model.RequestAccepted, true
	case Decline:
		return model.RequestDeclined, true
	}
	return "", false
}

// CanTransition 只允许 pending 迁移到终态
func CanTransition(from, to model.RequestStatus) bool {
	return from == model.RequestPending && to.Terminal()
}

// Invitations 接受申请后的邀请签发与投递
type Invitations interface {
	Issue(ctx context.Context, issuerID string) (model.Invitation, error)
	Deliver(ctx context.Context, recipientID, code, issuerID string) error
}

// Outcome Respond 的结果
type Outcome struct {
	Request model.MentorshipRequest
	// Found 申请是否存在；不存在不算错误，调用方照常继续
	Found bool
	// Transitioned 本次调用是否完成了状态迁移
	Transitioned bool
	// SideEffect 邀请副作用的独立结果通道，只收到一个值后关闭；没有副作用时直接关闭
	SideEffect <-chan error
}

// Manager 申请状态机
// 申请集合的读-改-写都在 mu 下完成，后台挂邀请码的任务与 Respond 互斥
type Manager struct {
	requests      *syncer.RequestStore
	invitations   Invitations
	pool          *worker.Pool
	ownsPool      bool
	maxNoteLength int

	mu sync.Mutex
}

// NewManager 创建状态机；pool 为 nil 时使用自带的小协程池，由 Close 释放
func NewManager(requests *syncer.RequestStore, invitations Invitations, pool *worker.Pool, cfg config.RequestConfig) *Manager {
	ownsPool := pool == nil
	if ownsPool {
		pool = worker.NewPool(1, constants.CHANNEL_SIZE)
	}
	maxNote := cfg.MaxNoteLength
	if maxNote <= 0 {
		maxNote = config.DefaultMaxNoteLength
	}
	return &Manager{
		requests:      requests,
		invitations:   invitations,
		pool:          pool,
		ownsPool:      ownsPool,
		maxNoteLength: maxNote,
	}
}

// Close 释放自带的协程池；外部传入的池由其所有者关闭
func (m *Manager) Close() {
	if m.ownsPool {
		m.pool.Close()
	}
}

// Create 学员发起申请，备注先清洗
func (m *Manager) Create(ctx context.Context, req model.MentorshipRequest) (model.MentorshipRequest, error) {
	req.Note = sanitize.Note(req.Note, m.maxNoteLength)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests.Create(ctx, req)
}

// Respond 导师处理申请
//  1. 从本地视图定位申请；不存在时什么都不做（Found=false，不返回错误）
//  2. 迁移到终态，写入清洗后的回复与 RespondedAt，整个集合一次写回本地
//  3. 接受时在后台签发并投递邀请；副作用失败只记日志并从 SideEffect 返回，不回滚已提交的状态
//
// 只有本地存储故障会作为错误返回
func (m *Manager) Respond(ctx context.Context, requestID string, decision Decision, note string) (Outcome, error) {
	target, ok := decision.target()
	if !ok {
		return Outcome{SideEffect: closed()}, errorx.Newf(errorx.CodeInvalidParam, "未知的处理结果: %s", decision)
	}

	out, err := m.transition(requestID, target, note)
	if err != nil || !out.Transitioned {
		return out, err
	}
	req := out.Request
	m.requests.Mirror(ctx, req)

	if target == model.RequestAccepted {
		out.SideEffect = m.issueInvitation(context.WithoutCancel(ctx), req)
	}
	return out, nil
}

// transition 在 mu 下完成第 1、2 步
func (m *Manager) transition(requestID string, target model.RequestStatus, note string) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items, err := m.requests.LoadLocal()
	if err != nil {
		return Outcome{SideEffect: closed()}, err
	}
	req, found := items[requestID]
	if !found {
		zap.L().Info("respond to unknown mentorship request", zap.String("request", requestID))
		return Outcome{SideEffect: closed()}, nil
	}
	if !CanTransition(req.Status, target) {
		return Outcome{Request: req, Found: true, SideEffect: closed()}, nil
	}

	now := m.requests.Now()
	req.Status = target
	req.ResponseNote = sanitize.Note(note, m.maxNoteLength)
	req.RespondedAt = &now
	items[requestID] = req
	if err := m.requests.SaveLocal(items); err != nil {
		return Outcome{SideEffect: closed()}, err
	}
	return Outcome{Request: req, Found: true, Transitioned: true, SideEffect: closed()}, nil
}

// issueInvitation 在协程池中为导师签发邀请并投递到其邀请箱，成功后把邀请码挂到申请上
func (m *Manager) issueInvitation(ctx context.Context, req model.MentorshipRequest) <-chan error {
	return m.pool.Go(func() error {
		inv, err := m.invitations.Issue(ctx, req.MentorID)
		if err != nil {
			return sideEffectFault("issue", req.ID, err)
		}
		if err := m.invitations.Deliver(ctx, req.MentorID, inv.Code, req.MentorID); err != nil {
			return sideEffectFault("deliver", req.ID, err)
		}
		if err := m.attachInvitation(ctx, req.ID, inv.Code); err != nil {
			return sideEffectFault("attach", req.ID, err)
		}
		return nil
	})
}

// attachInvitation 终态申请唯一允许的追加写入
func (m *Manager) attachInvitation(ctx context.Context, requestID, code string) error {
	req, attached, err := m.patchInvitationCode(requestID, code)
	if err != nil || !attached {
		return err
	}
	m.requests.Mirror(ctx, req)
	return nil
}

// patchInvitationCode 重新读取集合，只补写邀请码
func (m *Manager) patchInvitationCode(requestID, code string) (model.MentorshipRequest, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items, err := m.requests.LoadLocal()
	if err != nil {
		return model.MentorshipRequest{}, false, err
	}
	req, ok := items[requestID]
	if !ok || req.InvitationCode != "" {
		return req, false, nil
	}
	req.InvitationCode = code
	items[requestID] = req
	if err := m.requests.SaveLocal(items); err != nil {
		return req, false, err
	}
	return req, true, nil
}

func sideEffectFault(step, requestID string, err error) error {
	zap.L().Error("invitation side effect failed",
		zap.String("step", step),
		zap.String("request", requestID),
		zap.Error(err),
	)
	return errorx.Wrapf(err, errorx.CodeSideEffect, "邀请%s失败", step)
}

func closed() <-chan error {
	ch := make(chan error)
	close(ch)
	return ch
}
