package dispatch

import (
	"context"

	"meeting-bot/models"
)

// ChatSender 站内聊天渠道：把会议邀请发到某个已注册身份的 (workspace, group)
type ChatSender interface {
	SendMeetingInvite(ctx context.Context, user *models.ChatUser, meeting *models.Meeting) error
}

// EmailSender 邮件渠道
type EmailSender interface {
	SendMeetingInvite(ctx context.Context, inv models.Invitee, meeting *models.Meeting) error
}

// SMSSender 短信渠道
type SMSSender interface {
	SendMeetingInvite(ctx context.Context, inv models.Invitee, meeting *models.Meeting) error
}
