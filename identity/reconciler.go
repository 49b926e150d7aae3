package identity

import (
	"context"
	"time"

	"meeting-bot/models"

	"github.com/rs/zerolog"
)

// State 每次交互现算的准入状态，不跨调用缓存：
// 名单和会议随时在变，重算比缓存安全
type State int

const (
	StateNoIdentity State = iota // 合并后没有可用 email
	StateDenied
	StateAdmin
	StateInvited
)

func (s State) String() string {
	switch s {
	case StateNoIdentity:
		return "no_identity"
	case StateAdmin:
		return "admin"
	case StateInvited:
		return "invited"
	}
	return "denied"
}

// Allowed admin 和 invited 放行
func (s State) Allowed() bool { return s == StateAdmin || s == StateInvited }

// Decision 一次准入判定的结果
// Reason 只进日志，用户侧只看到统一的拒绝文案
type Decision struct {
	State     State
	Email     string // 规范化后
	MeetingID uint   // 仅 StateInvited 时有效
	Fragment  Fragment
	Reason    string
}

// Store 判定需要的最小持久层视图
type Store interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
	CurrentMeeting(ctx context.Context) (*models.Meeting, error)
	InviteeEmails(ctx context.Context, meetingID uint) ([]string, error)
}

type Reconciler struct {
	store Store
	dir   *Directory
	log   zerolog.Logger
	now   func() time.Time
}

func NewReconciler(store Store, dir *Directory, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		store: store,
		dir:   dir,
		log:   log.With().Str("component", "reconciler").Logger(),
		now:   time.Now,
	}
}

// Reconcile 合并身份片段并判定准入
// email 是唯一准入键：姓名/电话相似永远不放行，email 等值才放行
func (r *Reconciler) Reconcile(ctx context.Context, ev Event) (Decision, error) {
	inline, _ := FragmentFromEvent(ev)
	var remote Fragment
	if r.dir != nil {
		if res := r.dir.Lookup(ctx, ev.SenderID); res.Found {
			remote = res.Data
		}
	}
	merged := Merge(inline, remote)

	d := Decision{State: StateNoIdentity, Fragment: merged}
	email := NormalizeEmail(merged.Email)
	if email == "" {
		d.Reason = "no email in merged identity"
		r.log.Info().Int64("senderId", ev.SenderID).Msg("denied: no email")
		return d, nil
	}
	d.Email = email

	isAdmin, err := r.store.IsAdmin(ctx, email)
	if err != nil {
		return d, err
	}
	if isAdmin {
		d.State = StateAdmin
		r.log.Info().Int64("senderId", ev.SenderID).Msg("admitted: admin")
		return d, nil
	}

	meeting, err := r.store.CurrentMeeting(ctx)
	if err != nil {
		return d, err
	}
	d.State = StateDenied
	if meeting == nil {
		d.Reason = "no current meeting"
		r.log.Info().Int64("senderId", ev.SenderID).Msg("denied: no current meeting")
		return d, nil
	}
	dt, ok := ParseMeetingDateTime(meeting.Date, meeting.Time)
	if !ok {
		// 解析不了宁可拒绝也不瞎猜
		d.Reason = "meeting datetime unparsable"
		r.log.Info().Int64("senderId", ev.SenderID).Uint("meetingId", meeting.ID).Msg("denied: bad meeting datetime")
		return d, nil
	}
	if dt.Before(r.now()) {
		d.Reason = "meeting is in the past"
		r.log.Info().Int64("senderId", ev.SenderID).Uint("meetingId", meeting.ID).Msg("denied: past meeting")
		return d, nil
	}

	emails, err := r.store.InviteeEmails(ctx, meeting.ID)
	if err != nil {
		return d, err
	}
	for _, e := range emails {
		if NormalizeEmail(e) == email {
			d.State = StateInvited
			d.MeetingID = meeting.ID
			r.log.Info().Int64("senderId", ev.SenderID).Uint("meetingId", meeting.ID).Msg("admitted: invited")
			return d, nil
		}
	}
	d.Reason = "email not on invite list"
	r.log.Info().Int64("senderId", ev.SenderID).Uint("meetingId", meeting.ID).Msg("denied: not invited")
	return d, nil
}
