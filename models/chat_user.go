package models

import "time"

const ChatUserTable = "chat_users"

// ChatUser 与机器人交互过的聊天身份，(sender_id, group_id, workspace_id) 唯一
// 字段在每次交互时刷新，非空值不会被空值覆盖
type ChatUser struct {
	ID          uint  `gorm:"primaryKey" json:"id"`
	SenderID    int64 `gorm:"not null;index;uniqueIndex:uniq_chat_user_triple" json:"senderId"`
	GroupID     int64 `gorm:"not null;uniqueIndex:uniq_chat_user_triple" json:"groupId"`
	WorkspaceID int64 `gorm:"not null;uniqueIndex:uniq_chat_user_triple" json:"workspaceId"`

	FullName string  `gorm:"size:255;not null" json:"fullName"`
	Email    *string `gorm:"size:255;index" json:"email,omitempty"`
	Phone    *string `gorm:"size:32;index" json:"phone,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ChatUser) TableName() string { return ChatUserTable }
