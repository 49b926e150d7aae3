package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meeting-bot/identity"
	"meeting-bot/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Invitees

// ImportRow 批量导入的一行原始数据（来自 "ФИО | email | телефон" 文本或 JSON）
type ImportRow struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// ImportResult 导入汇总；无效行和重复行都静默跳过，只给计数
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

func validImportRow(row ImportRow) bool {
	if strings.TrimSpace(row.FullName) == "" {
		return false
	}
	email := strings.TrimSpace(row.Email)
	phone := strings.TrimSpace(row.Phone)
	if email == "" && phone == "" {
		return false
	}
	if email != "" && !identity.ValidEmail(email) {
		return false
	}
	return true
}

// BatchImportInvitees 尽力而为的批量插入：每行单独校验、单独插入，
// (meeting_id, email) 撞唯一约束只丢那一行，整批继续
func (r *Repo) BatchImportInvitees(ctx context.Context, meetingID uint, rows []ImportRow) (ImportResult, error) {
	var res ImportResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if !validImportRow(row) {
				res.Skipped++
				continue
			}
			inv := models.Invitee{
				MeetingID: meetingID,
				FullName:  strings.TrimSpace(row.FullName),
			}
			if e := identity.NormalizeEmail(row.Email); e != "" {
				inv.Email = &e
			}
			if p := identity.NormalizePhone(row.Phone); p != "" {
				inv.Phone = &p
			}
			q := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&inv)
			if q.Error != nil {
				return q.Error
			}
			if q.RowsAffected == 1 {
				res.Added++
			} else {
				res.Skipped++
			}
		}
		return nil
	})
	return res, err
}

// CopyInviteesToMeeting 会议换届时把名单搬到新会议：
// 每个人按「新一次被邀请」处理，answer 和三个渠道状态全部清零
func (r *Repo) CopyInviteesToMeeting(ctx context.Context, fromMeetingID, toMeetingID uint) (int, error) {
	var src []models.Invitee
	if err := r.DB.WithContext(ctx).
		Where("meeting_id = ?", fromMeetingID).
		Find(&src).Error; err != nil {
		return 0, err
	}
	copied := 0
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, inv := range src {
			fresh := models.Invitee{
				MeetingID: toMeetingID,
				FullName:  inv.FullName,
				Email:     inv.Email,
				Phone:     inv.Phone,
			}
			q := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh)
			if q.Error != nil {
				return q.Error
			}
			copied += int(q.RowsAffected)
		}
		return nil
	})
	return copied, err
}

func (r *Repo) InviteesForMeeting(ctx context.Context, meetingID uint) ([]models.Invitee, error) {
	var list []models.Invitee
	err := r.DB.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("id").
		Find(&list).Error
	return list, err
}

func (r *Repo) InviteeEmails(ctx context.Context, meetingID uint) ([]string, error) {
	var emails []string
	err := r.DB.WithContext(ctx).Model(&models.Invitee{}).
		Where("meeting_id = ? AND email IS NOT NULL", meetingID).
		Pluck("email", &emails).Error
	return emails, err
}

// VotedInvitees 已投票名单（answer 非空）
func (r *Repo) VotedInvitees(ctx context.Context, meetingID uint) ([]models.Invitee, error) {
	var list []models.Invitee
	err := r.DB.WithContext(ctx).
		Where("meeting_id = ? AND answer IS NOT NULL", meetingID).
		Order("id").
		Find(&list).Error
	return list, err
}

// UpdateInviteeContact 首次交互时回填联系方式：只补空缺，不覆盖已有值
func (r *Repo) UpdateInviteeContact(ctx context.Context, meetingID uint, email, fullName, phone string) (bool, error) {
	normEmail := identity.NormalizeEmail(email)
	if normEmail == "" {
		return false, nil
	}
	var inv models.Invitee
	err := r.DB.WithContext(ctx).
		Where("meeting_id = ? AND email = ?", meetingID, normEmail).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	updates := map[string]any{}
	if n := strings.TrimSpace(fullName); n != "" && n != "—" && strings.TrimSpace(inv.FullName) == "" {
		updates["full_name"] = n
	}
	if p := identity.NormalizePhone(phone); p != "" && inv.Phone == nil {
		updates["phone"] = p
	}
	if len(updates) == 0 {
		return true, nil
	}
	return true, r.DB.WithContext(ctx).Model(&inv).Updates(updates).Error
}

// UpdateInviteeAnswer 写入出席回复；顺带回填空缺的联系方式
func (r *Repo) UpdateInviteeAnswer(ctx context.Context, meetingID uint, email, answer, fullName, phone string) (bool, error) {
	normEmail := identity.NormalizeEmail(email)
	if normEmail == "" {
		return false, nil
	}
	var inv models.Invitee
	err := r.DB.WithContext(ctx).
		Where("meeting_id = ? AND email = ?", meetingID, normEmail).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	updates := map[string]any{"answer": answer}
	if n := strings.TrimSpace(fullName); n != "" && n != "—" && strings.TrimSpace(inv.FullName) == "" {
		updates["full_name"] = n
	}
	if p := identity.NormalizePhone(phone); p != "" && inv.Phone == nil {
		updates["phone"] = p
	}
	return true, r.DB.WithContext(ctx).Model(&inv).Updates(updates).Error
}

// 渠道状态列
const (
	ChannelChat  = "chat_status"
	ChannelEmail = "email_status"
	ChannelSMS   = "sms_status"
)

// SetChannelStatus 单行最窄事务写状态，且只允许 unset → sent/error 的单向迁移：
// 已是终态的行再怎么跑 dispatcher 也不会被改写，这就是幂等续跑的依据
func (r *Repo) SetChannelStatus(ctx context.Context, inviteeID uint, channel, status string) error {
	switch channel {
	case ChannelChat, ChannelEmail, ChannelSMS:
	default:
		return fmt.Errorf("unknown channel column %q", channel)
	}
	switch status {
	case models.StatusSent, models.StatusError:
	default:
		return fmt.Errorf("invalid channel status %q", status)
	}
	return r.DB.WithContext(ctx).Model(&models.Invitee{}).
		Where(fmt.Sprintf("id = ? AND %s IS NULL", channel), inviteeID).
		Update(channel, status).Error
}
