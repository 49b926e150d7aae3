package models

import "time"

const MeetingTable = "meetings"

// Meeting 一次性会议记录；最新创建的一条视为当前会议
// Date/Time 保留操作员输入的原始文本（DD.MM.YYYY / YYYY-MM-DD 等），解析在 identity 包
type Meeting struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Topic     string `gorm:"size:255" json:"topic"`
	Date      string `gorm:"size:32" json:"date"`
	Time      string `gorm:"size:32" json:"time"`
	Place     string `gorm:"size:255" json:"place"`
	Link      string `gorm:"size:512" json:"link"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Meeting) TableName() string { return MeetingTable }
