package controllers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"meeting-bot/db"
	"meeting-bot/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatchRouter(s *Srv) *gin.Engine {
	r := gin.New()
	mc := GetMeetingsController(s)
	r.POST("/api/v1/meetings/:id/dispatch", mc.Dispatch)
	return r
}

func TestDispatch_SyncSurvivesClientDisconnect(t *testing.T) {
	ts := newTestSrv(t)
	ctx := context.Background()
	m := ts.futureMeeting(t)
	_, err := ts.s.Repo.BatchImportInvitees(ctx, m.ID, []db.ImportRow{
		{FullName: "Петров Пётр", Email: "petrov@example.ru"},
	})
	require.NoError(t, err)

	// 客户端在 run 开始前就断开了：请求上下文已取消
	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/meetings/%d/dispatch?sync=1", m.ID), nil).WithContext(reqCtx)
	w := httptest.NewRecorder()
	dispatchRouter(ts.s).ServeHTTP(w, req)

	// run 一旦开始就跑完，发送不受取消影响
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, ts.email.calls)
	list, err := ts.s.Repo.InviteesForMeeting(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, *list[0].EmailStatus)
	assert.True(t, ts.lock.released)
}

func TestDispatch_LockHeld(t *testing.T) {
	ts := newTestSrv(t)
	m := ts.futureMeeting(t)
	ts.lock.held = true

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/meetings/%d/dispatch?sync=1", m.ID), nil)
	w := httptest.NewRecorder()
	dispatchRouter(ts.s).ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, ts.email.calls)
}

func TestDispatch_MissingMeeting(t *testing.T) {
	ts := newTestSrv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/meetings/999/dispatch?sync=1", nil)
	w := httptest.NewRecorder()
	dispatchRouter(ts.s).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	// 没接受也不能把锁留在那里
	assert.True(t, ts.lock.released)
}

func TestRunDispatch_ReleasesLock(t *testing.T) {
	ts := newTestSrv(t)
	ctx := context.Background()
	m := ts.futureMeeting(t)
	_, err := ts.s.Repo.BatchImportInvitees(ctx, m.ID, []db.ImportRow{
		{FullName: "Петров Пётр", Email: "petrov@example.ru"},
	})
	require.NoError(t, err)
	ts.lock.held = true // 触发端点先拿了锁，后台进程接棒

	stats := ts.s.RunDispatch(ctx, m.ID)
	assert.Equal(t, 1, stats.EmailSent)
	assert.True(t, ts.lock.released)
	assert.False(t, ts.lock.held)
}
