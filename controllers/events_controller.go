package controllers

import (
	"context"
	"net/http"
	"strings"

	"meeting-bot/app"
	"meeting-bot/identity"
	"meeting-bot/session"

	"github.com/gin-gonic/gin"
)

// 拒绝时用户只看到这一句；具体原因只进日志
const deniedReply = "К сожалению, у вас нет доступа к текущему совещанию."

const askReply = "Вы планируете присутствовать на совещании?\n" +
	"Ответьте «да» или «нет»."

// 出席投票的 callback 值
const (
	voteYes = "vote_yes"
	voteNo  = "vote_no"
)

type EventsController struct{ s *Srv }

func GetEventsController(s *Srv) *EventsController { return &EventsController{s: s} }

// HandleEvent 入站聊天事件 webhook：每条事件都现算一遍准入
func (ec *EventsController) HandleEvent(c *gin.Context) {
	var ev identity.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if ev.SenderID == 0 || ev.GroupID == 0 || ev.WorkspaceID == 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "senderId, groupId and workspaceId are required"})
		return
	}
	ctx := c.Request.Context()

	decision, err := ec.s.Reconciler.Reconcile(ctx, ev)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}

	if !decision.State.Allowed() {
		ec.reply(ctx, ev, deniedReply)
		c.JSON(http.StatusOK, app.H{"ok": true, "admitted": false})
		return
	}

	// 任何被放行的交互都刷新聊天身份记录
	frag := decision.Fragment
	var emailPtr, phonePtr *string
	if frag.Email != "" {
		emailPtr = &frag.Email
	}
	if frag.Phone != "" {
		phonePtr = &frag.Phone
	}
	if _, err := ec.s.Repo.UpsertChatUser(ctx, ev.SenderID, ev.GroupID, ev.WorkspaceID, frag.FullName(), emailPtr, phonePtr); err != nil {
		ec.s.Log.Warn().Err(err).Int64("senderId", ev.SenderID).Msg("chat user upsert failed")
	}

	// 受邀者的每次交互都顺带同步名单里的联系方式（只补空缺）
	if decision.State == identity.StateInvited {
		if _, err := ec.s.Repo.UpdateInviteeContact(ctx, decision.MeetingID, decision.Email, frag.FullName(), frag.Phone); err != nil {
			ec.s.Log.Warn().Err(err).Int64("senderId", ev.SenderID).Msg("invitee contact sync failed")
		}
	}

	if answer, ok := voteAnswer(ev.CallbackData); ok {
		ec.handleVote(ctx, ev, decision, answer)
		ec.resetFlow(ctx, ev)
		c.JSON(http.StatusOK, app.H{"ok": true, "admitted": true})
		return
	}

	// 刚被问过出席问题的人，纯文本 да/нет 也按投票收
	if answer, ok := textAnswer(ev.Text); ok && ec.awaiting(ctx, ev) {
		ec.handleVote(ctx, ev, decision, answer)
		ec.resetFlow(ctx, ev)
		c.JSON(http.StatusOK, app.H{"ok": true, "admitted": true})
		return
	}

	ec.reply(ctx, ev, askReply)
	if err := ec.s.Flow.Set(ctx, ev.SenderID, ev.GroupID, ev.WorkspaceID, session.FlowState{AwaitingAnswer: true}); err != nil {
		ec.s.Log.Warn().Err(err).Int64("senderId", ev.SenderID).Msg("flow state save failed")
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "admitted": true})
}

func voteAnswer(callbackData string) (string, bool) {
	switch callbackData {
	case voteYes:
		return "да", true
	case voteNo:
		return "нет", true
	}
	return "", false
}

// textAnswer 宽松识别文本形式的 да/нет
func textAnswer(text string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.TrimRight(t, ".!)")
	switch t {
	case "да", "yes":
		return "да", true
	case "нет", "no":
		return "нет", true
	}
	return "", false
}

// awaiting redis 不可用时宁可错过一条文本回答也不当成投票
func (ec *EventsController) awaiting(ctx context.Context, ev identity.Event) bool {
	st, err := ec.s.Flow.Get(ctx, ev.SenderID, ev.GroupID, ev.WorkspaceID)
	if err != nil {
		ec.s.Log.Warn().Err(err).Int64("senderId", ev.SenderID).Msg("flow state load failed")
		return false
	}
	return st.AwaitingAnswer
}

func (ec *EventsController) resetFlow(ctx context.Context, ev identity.Event) {
	if err := ec.s.Flow.Reset(ctx, ev.SenderID, ev.GroupID, ev.WorkspaceID); err != nil {
		ec.s.Log.Warn().Err(err).Int64("senderId", ev.SenderID).Msg("flow state reset failed")
	}
}

// handleVote 投票动作才回填 Invitee 的联系方式并写 answer（普通消息不动名单）
func (ec *EventsController) handleVote(ctx context.Context, ev identity.Event, decision identity.Decision, answer string) {
	meetingID := decision.MeetingID
	if meetingID == 0 {
		// 管理员也可能投票：落到当前会议
		meeting, err := ec.s.Repo.CurrentMeeting(ctx)
		if err != nil || meeting == nil {
			ec.reply(ctx, ev, "Сейчас нет активного совещания.")
			return
		}
		meetingID = meeting.ID
	}

	frag := decision.Fragment
	found, err := ec.s.Repo.UpdateInviteeAnswer(ctx, meetingID, decision.Email, answer, frag.FullName(), frag.Phone)
	if err != nil {
		ec.s.Log.Error().Err(err).Int64("senderId", ev.SenderID).Msg("answer save failed")
		ec.reply(ctx, ev, "Не удалось сохранить ответ, попробуйте ещё раз.")
		return
	}
	if !found {
		ec.s.Log.Warn().Int64("senderId", ev.SenderID).Uint("meetingId", meetingID).Msg("vote from email not on invite list")
		ec.reply(ctx, ev, deniedReply)
		return
	}

	if strings.EqualFold(answer, "да") {
		ec.reply(ctx, ev, "Спасибо! Ваше участие подтверждено.")
	} else {
		ec.reply(ctx, ev, "Спасибо! Ответ записан.")
	}
}

// reply 尽力回一条；发不出去只记日志，webhook 本身照样 200
func (ec *EventsController) reply(ctx context.Context, ev identity.Event, text string) {
	if err := ec.s.Chat.SendText(ctx, ev.WorkspaceID, ev.GroupID, text); err != nil {
		ec.s.Log.Warn().Err(err).Int64("senderId", ev.SenderID).Msg("reply failed")
	}
}
