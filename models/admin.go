package models

import "time"

const AdminTable = "admins"

// Admin 管理员，email 命中即无条件放行（不看会议日期和名单）
type Admin struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FullName string `gorm:"size:255" json:"fullName"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Admin) TableName() string { return AdminTable }
