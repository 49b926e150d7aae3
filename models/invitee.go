package models

import "time"

const InviteeTable = "invitees"

// 每个渠道独立的发送状态；nil = 尚未尝试
const (
	StatusSent  = "sent"
	StatusError = "error"
)

// Invitee 某次会议邀请名单中的一人，email 为主键语义（meeting_id+email 唯一）
// Phone 入库前已规范化为纯数字 7XXXXXXXXXX，或为 nil
type Invitee struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	MeetingID uint    `gorm:"index;not null;uniqueIndex:uniq_invitee_meeting_email" json:"meetingId"`
	FullName  string  `gorm:"size:255;not null" json:"fullName"`
	Email     *string `gorm:"size:255;uniqueIndex:uniq_invitee_meeting_email" json:"email,omitempty"`
	Phone     *string `gorm:"size:32;index" json:"phone,omitempty"`

	// 自由文本出席回复（да/нет 等），nil = 未投票
	Answer *string `gorm:"size:64" json:"answer,omitempty"`

	ChatStatus  *string `gorm:"size:16" json:"chatStatus,omitempty"`
	EmailStatus *string `gorm:"size:16" json:"emailStatus,omitempty"`
	SMSStatus   *string `gorm:"size:16" json:"smsStatus,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Invitee) TableName() string { return InviteeTable }
