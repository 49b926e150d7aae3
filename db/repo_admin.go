package db

import (
	"context"

	"meeting-bot/identity"
	"meeting-bot/models"

	"gorm.io/gorm/clause"
)

// Admins

func (r *Repo) IsAdmin(ctx context.Context, email string) (bool, error) {
	email = identity.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Admin{}).
		Where("email = ?", email).
		Count(&n).Error
	return n > 0, err
}

// SeedAdmins 从配置灌入管理员名单，已存在的跳过
func (r *Repo) SeedAdmins(ctx context.Context, emails []string) error {
	for _, e := range emails {
		e = identity.NormalizeEmail(e)
		if e == "" {
			continue
		}
		if err := r.DB.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Admin{Email: e}).Error; err != nil {
			return err
		}
	}
	return nil
}
