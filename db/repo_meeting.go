package db

import (
	"context"
	"errors"

	"meeting-bot/models"

	"gorm.io/gorm"
)

// Meetings

func (r *Repo) CreateMeeting(ctx context.Context, m *models.Meeting) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

// CurrentMeeting 最新创建的一条是当前会议；一条都没有返回 (nil, nil)
func (r *Repo) CurrentMeeting(ctx context.Context) (*models.Meeting, error) {
	var m models.Meeting
	err := r.DB.WithContext(ctx).Order("id DESC").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) FindMeetingByID(ctx context.Context, id uint) (*models.Meeting, error) {
	var m models.Meeting
	if err := r.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}
