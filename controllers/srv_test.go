package controllers

import (
	"context"
	"testing"
	"time"

	"meeting-bot/db"
	"meeting-bot/dispatch"
	"meeting-bot/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() { gin.SetMode(gin.TestMode) }

// fakeLock 记录锁的生命周期
type fakeLock struct {
	held     bool
	released bool
}

func (l *fakeLock) TryAcquire(_ context.Context, _ uint) (bool, error) {
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLock) Release(_ context.Context, _ uint) error {
	l.held = false
	l.released = true
	return nil
}

type recordingChat struct{ calls int }

func (r *recordingChat) SendMeetingInvite(ctx context.Context, _ *models.ChatUser, _ *models.Meeting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.calls++
	return nil
}

// recordingSender 上下文已取消时报错，和真实 sender 一样
type recordingSender struct{ calls int }

func (r *recordingSender) SendMeetingInvite(ctx context.Context, _ models.Invitee, _ *models.Meeting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.calls++
	return nil
}

type testSrv struct {
	s     *Srv
	lock  *fakeLock
	chat  *recordingChat
	email *recordingSender
	sms   *recordingSender
}

func newTestSrv(t *testing.T) *testSrv {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	pool, err := conn.DB()
	require.NoError(t, err)
	pool.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() { pool.Close() })

	ts := &testSrv{
		lock:  &fakeLock{},
		chat:  &recordingChat{},
		email: &recordingSender{},
		sms:   &recordingSender{},
	}
	repo := db.NewRepo(conn)
	d := dispatch.NewDispatcher(repo, ts.chat, ts.email, ts.sms, zerolog.Nop())
	d.EmailDelay = 0
	ts.s = &Srv{
		Repo:       repo,
		Dispatcher: d,
		Lock:       ts.lock,
		Log:        zerolog.Nop(),
	}
	return ts
}

func (ts *testSrv) futureMeeting(t *testing.T) *models.Meeting {
	t.Helper()
	d := time.Now().Add(48 * time.Hour)
	m := &models.Meeting{Topic: "планёрка", Date: d.Format("02.01.2006"), Time: "10:00"}
	require.NoError(t, ts.s.Repo.CreateMeeting(context.Background(), m))
	return m
}
