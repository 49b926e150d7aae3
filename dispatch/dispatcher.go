package dispatch

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"time"

	"meeting-bot/db"
	"meeting-bot/identity"
	"meeting-bot/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Stats 一次 dispatch run 的汇总计数，只进日志
type Stats struct {
	ChatSent, ChatError   int
	EmailSent, EmailError int
	SMSSent, SMSError     int
}

// Dispatcher 三渠道通知分发
// 输出契约是 fire-and-forget：结果只能通过存储的渠道状态和日志观察
type Dispatcher struct {
	repo  *db.Repo
	chat  ChatSender
	email EmailSender
	sms   SMSSender
	log   zerolog.Logger

	// 邮件 provider 限速：两封邮件之间的固定间隔；聊天渠道不限
	EmailDelay time.Duration
}

func NewDispatcher(repo *db.Repo, chat ChatSender, email EmailSender, sms SMSSender, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		repo:  repo,
		chat:  chat,
		email: email,
		sms:   sms,
		log:   log.With().Str("component", "dispatcher").Logger(),
		EmailDelay: 500 * time.Millisecond,
	}
}

// DispatchForMeeting 触发一次分发
// background=true 时在独立 OS 进程里跑（SMTP 延迟和大名单不会卡交互路径），
// 立即返回 accepted；false 只在会议不存在或进程起不来时出现
func (d *Dispatcher) DispatchForMeeting(ctx context.Context, meetingID uint, background bool) bool {
	if _, err := d.repo.FindMeetingByID(ctx, meetingID); err != nil {
		d.log.Error().Err(err).Uint("meetingId", meetingID).Msg("dispatch refused: meeting not found")
		return false
	}

	if background {
		exe, err := os.Executable()
		if err != nil {
			d.log.Error().Err(err).Msg("dispatch refused: cannot resolve executable")
			return false
		}
		cmd := exec.Command(exe, "dispatch", "-meeting", strconv.FormatUint(uint64(meetingID), 10))
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			d.log.Error().Err(err).Uint("meetingId", meetingID).Msg("dispatch refused: cannot start process")
			return false
		}
		// 不等结束；崩了就再触发一次，幂等续跑只会补 unset 的部分
		go func() { _ = cmd.Wait() }()
		d.log.Info().Uint("meetingId", meetingID).Int("pid", cmd.Process.Pid).Msg("dispatch process started")
		return true
	}

	d.Run(ctx, meetingID)
	return true
}

// Run 同步执行一个 dispatch run；逐个被邀请人顺序处理，
// 单个人/单渠道的失败被就地吞掉记 error 状态，绝不中断整轮
func (d *Dispatcher) Run(ctx context.Context, meetingID uint) Stats {
	runLog := d.log.With().Str("runId", uuid.NewString()).Uint("meetingId", meetingID).Logger()
	var stats Stats

	meeting, err := d.repo.FindMeetingByID(ctx, meetingID)
	if err != nil {
		runLog.Error().Err(err).Msg("run aborted: meeting not found")
		return stats
	}
	regEmails, regPhones, err := d.repo.RegisteredContacts(ctx)
	if err != nil {
		runLog.Error().Err(err).Msg("run aborted: cannot load registered contacts")
		return stats
	}
	invitees, err := d.repo.InviteesForMeeting(ctx, meetingID)
	if err != nil {
		runLog.Error().Err(err).Msg("run aborted: cannot load invitees")
		return stats
	}

	pending := 0
	for _, inv := range invitees {
		if d.processInvitee(ctx, runLog, meeting, inv, regEmails, regPhones, &stats) {
			pending++
		}
	}

	runLog.Info().
		Int("pending", pending).
		Int("chatSent", stats.ChatSent).Int("chatError", stats.ChatError).
		Int("emailSent", stats.EmailSent).Int("emailError", stats.EmailError).
		Int("smsSent", stats.SMSSent).Int("smsError", stats.SMSError).
		Msg("dispatch run finished")
	return stats
}

// registered 判定：规范化 email 或 phone 命中任一已注册聊天身份
func isRegistered(inv models.Invitee, regEmails, regPhones map[string]struct{}) bool {
	if inv.Email != nil {
		if _, ok := regEmails[identity.NormalizeEmail(*inv.Email)]; ok {
			return true
		}
	}
	if inv.Phone != nil {
		if _, ok := regPhones[*inv.Phone]; ok {
			return true
		}
	}
	return false
}

// processInvitee 处理一个人的全部适用渠道；返回是否有任何渠道被尝试
func (d *Dispatcher) processInvitee(ctx context.Context, log zerolog.Logger, meeting *models.Meeting, inv models.Invitee, regEmails, regPhones map[string]struct{}, stats *Stats) bool {
	attempted := false

	if isRegistered(inv, regEmails, regPhones) {
		// 已是平台用户：只走聊天渠道
		if inv.ChatStatus != nil {
			return false
		}
		attempted = true
		status := models.StatusSent
		user, err := d.repo.FindChatUserByContact(ctx, inv.Email, inv.Phone)
		if err == nil && user != nil {
			err = d.chat.SendMeetingInvite(ctx, user, meeting)
		} else if err == nil {
			// 分类说已注册但三元组记录找不到了，按 error 落状态
			log.Warn().Uint("inviteeId", inv.ID).Msg("classified as registered but no chat user record")
			status = models.StatusError
		}
		if err != nil {
			log.Warn().Err(err).Uint("inviteeId", inv.ID).Msg("chat send failed")
			status = models.StatusError
		}
		d.writeStatus(ctx, log, inv.ID, db.ChannelChat, status)
		if status == models.StatusSent {
			stats.ChatSent++
		} else {
			stats.ChatError++
		}
		return attempted
	}

	// 未注册：email 和 sms 两个渠道相互独立，同一轮里可以都发
	if inv.Email != nil && inv.EmailStatus == nil {
		attempted = true
		status := models.StatusSent
		if err := d.email.SendMeetingInvite(ctx, inv, meeting); err != nil {
			log.Warn().Err(err).Uint("inviteeId", inv.ID).Msg("email send failed")
			status = models.StatusError
		}
		d.writeStatus(ctx, log, inv.ID, db.ChannelEmail, status)
		if status == models.StatusSent {
			stats.EmailSent++
		} else {
			stats.EmailError++
		}
		if d.EmailDelay > 0 {
			time.Sleep(d.EmailDelay)
		}
	}

	if inv.Phone != nil && inv.SMSStatus == nil {
		attempted = true
		status := models.StatusSent
		if err := d.sms.SendMeetingInvite(ctx, inv, meeting); err != nil {
			log.Warn().Err(err).Uint("inviteeId", inv.ID).Msg("sms send failed")
			status = models.StatusError
		}
		d.writeStatus(ctx, log, inv.ID, db.ChannelSMS, status)
		if status == models.StatusSent {
			stats.SMSSent++
		} else {
			stats.SMSError++
		}
	}

	return attempted
}

// writeStatus 状态写入失败也要被隔离，不能污染本轮其余的记账
func (d *Dispatcher) writeStatus(ctx context.Context, log zerolog.Logger, inviteeID uint, channel, status string) {
	if err := d.repo.SetChannelStatus(ctx, inviteeID, channel, status); err != nil {
		log.Error().Err(err).Uint("inviteeId", inviteeID).Str("channel", channel).Msg("status update failed")
	}
}
