package db

import (
	"context"
	"errors"
	"strings"

	"meeting-bot/identity"
	"meeting-bot/models"

	"gorm.io/gorm"
)

// Chat users（注册过的聊天身份）

// UpsertChatUser 按 (sender_id, group_id, workspace_id) 三元组保存或刷新
// 已有的非空字段绝不会被空值打回去
func (r *Repo) UpsertChatUser(ctx context.Context, senderID, groupID, workspaceID int64, fullName string, email, phone *string) (*models.ChatUser, error) {
	if strings.TrimSpace(fullName) == "" {
		fullName = "—"
	}
	normEmail := normPtr(email, identity.NormalizeEmail)
	normPhone := normPtr(phone, identity.NormalizePhone)

	var u models.ChatUser
	err := r.DB.WithContext(ctx).
		Where("sender_id = ? AND group_id = ? AND workspace_id = ?", senderID, groupID, workspaceID).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		u = models.ChatUser{
			SenderID:    senderID,
			GroupID:     groupID,
			WorkspaceID: workspaceID,
			FullName:    strings.TrimSpace(fullName),
			Email:       normEmail,
			Phone:       normPhone,
		}
		if err := r.DB.WithContext(ctx).Create(&u).Error; err != nil {
			return nil, err
		}
		return &u, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if n := strings.TrimSpace(fullName); n != "" && n != "—" {
		updates["full_name"] = n
	}
	if normEmail != nil {
		updates["email"] = *normEmail
	}
	if normPhone != nil {
		updates["phone"] = *normPhone
	}
	if len(updates) > 0 {
		if err := r.DB.WithContext(ctx).Model(&u).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &u, nil
}

func (r *Repo) FindChatUserByTriple(ctx context.Context, senderID, groupID, workspaceID int64) (*models.ChatUser, error) {
	var u models.ChatUser
	err := r.DB.WithContext(ctx).
		Where("sender_id = ? AND group_id = ? AND workspace_id = ?", senderID, groupID, workspaceID).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindChatUserByContact email 或 phone 任一匹配，用于把被邀请人解析到聊天送达地址
func (r *Repo) FindChatUserByContact(ctx context.Context, email, phone *string) (*models.ChatUser, error) {
	tx := r.DB.WithContext(ctx).Model(&models.ChatUser{})
	switch {
	case email != nil && phone != nil:
		tx = tx.Where("email = ? OR phone = ?", *email, *phone)
	case email != nil:
		tx = tx.Where("email = ?", *email)
	case phone != nil:
		tx = tx.Where("phone = ?", *phone)
	default:
		return nil, nil
	}
	var u models.ChatUser
	err := tx.First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// RegisteredContacts 全部已注册身份的规范化 email/phone 集合，用于渠道分类
func (r *Repo) RegisteredContacts(ctx context.Context) (map[string]struct{}, map[string]struct{}, error) {
	var users []models.ChatUser
	if err := r.DB.WithContext(ctx).
		Where("email IS NOT NULL OR phone IS NOT NULL").
		Find(&users).Error; err != nil {
		return nil, nil, err
	}
	emails := make(map[string]struct{}, len(users))
	phones := make(map[string]struct{}, len(users))
	for _, u := range users {
		if u.Email != nil && *u.Email != "" {
			emails[identity.NormalizeEmail(*u.Email)] = struct{}{}
		}
		if u.Phone != nil && *u.Phone != "" {
			phones[*u.Phone] = struct{}{}
		}
	}
	return emails, phones, nil
}

// normPtr 规范化指针字段；规范化后为空按「没提供」处理
func normPtr(s *string, norm func(string) string) *string {
	if s == nil {
		return nil
	}
	v := norm(*s)
	if v == "" {
		return nil
	}
	return &v
}
