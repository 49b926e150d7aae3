// controllers/srv.go
package controllers

import (
	"context"

	"meeting-bot/app"
	"meeting-bot/db"
	"meeting-bot/dispatch"
	"meeting-bot/identity"
	"meeting-bot/session"

	"github.com/rs/zerolog"
)

// DispatchLocker 分发触发端点用的咨询锁视图
type DispatchLocker interface {
	TryAcquire(ctx context.Context, meetingID uint) (bool, error)
	Release(ctx context.Context, meetingID uint) error
}

type Srv struct {
	Repo       *db.Repo
	Reconciler *identity.Reconciler
	Chat       *dispatch.ChatClient
	Dispatcher *dispatch.Dispatcher
	Flow       *session.FlowStateStore
	Lock       DispatchLocker
	Log        zerolog.Logger
}

func GetSrv(a *app.App) *Srv {
	cfg := a.Config
	repo := db.NewRepo(a.DB)

	directory := identity.NewDirectory(cfg.DirectoryBaseURL, cfg.BotToken, cfg.RequestTimeout, a.Log)
	chat := dispatch.NewChatClient(cfg.APIBaseURL, cfg.BotToken, cfg.RequestTimeout, a.Log)
	email := dispatch.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPwd, cfg.SMTPSender, a.EmailTemplate, a.Log)
	sms := dispatch.NewStubSMSSender(a.Log)

	return &Srv{
		Repo:       repo,
		Reconciler: identity.NewReconciler(repo, directory, a.Log),
		Chat:       chat,
		Dispatcher: dispatch.NewDispatcher(repo, chat, email, sms, a.Log),
		Flow:       session.NewFlowStateStore(a.RDB, cfg.FlowStateTTL),
		Lock:       session.NewDispatchLock(a.RDB, cfg.DispatchLockTTL),
		Log:        a.Log,
	}
}

// RunDispatch 后台分发进程的入口：同步跑完一轮，结束后把会议锁放掉，
// 不然再次触发要等满整个锁 TTL
func (s *Srv) RunDispatch(ctx context.Context, meetingID uint) dispatch.Stats {
	stats := s.Dispatcher.Run(ctx, meetingID)
	if err := s.Lock.Release(ctx, meetingID); err != nil {
		s.Log.Warn().Err(err).Uint("meetingId", meetingID).Msg("dispatch lock release failed")
	}
	return stats
}
