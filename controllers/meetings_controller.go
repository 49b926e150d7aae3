package controllers

import (
	"context"
	"net/http"
	"strconv"

	"meeting-bot/app"
	"meeting-bot/models"

	"github.com/gin-gonic/gin"
)

type MeetingsController struct{ s *Srv }

func GetMeetingsController(s *Srv) *MeetingsController { return &MeetingsController{s: s} }

// CreateMeeting 新建会议即成为当前会议
// copyInviteesFrom 指定旧会议时把名单搬过来，answer/渠道状态全部清零
func (mc *MeetingsController) CreateMeeting(c *gin.Context) {
	var in struct {
		Topic            string `json:"topic" binding:"required"`
		Date             string `json:"date" binding:"required"`
		Time             string `json:"time" binding:"required"`
		Place            string `json:"place"`
		Link             string `json:"link"`
		CopyInviteesFrom *uint  `json:"copyInviteesFrom"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	m := models.Meeting{Topic: in.Topic, Date: in.Date, Time: in.Time, Place: in.Place, Link: in.Link}
	if err := mc.s.Repo.CreateMeeting(c.Request.Context(), &m); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	copied := 0
	if in.CopyInviteesFrom != nil {
		n, err := mc.s.Repo.CopyInviteesToMeeting(c.Request.Context(), *in.CopyInviteesFrom, m.ID)
		if err != nil {
			mc.s.Log.Error().Err(err).Uint("from", *in.CopyInviteesFrom).Uint("to", m.ID).Msg("invitee copy failed")
		}
		copied = n
	}

	c.JSON(http.StatusCreated, app.H{"meeting": m, "inviteesCopied": copied})
}

func (mc *MeetingsController) CurrentMeeting(c *gin.Context) {
	m, err := mc.s.Repo.CurrentMeeting(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, app.H{"error": "no current meeting"})
		return
	}
	c.JSON(http.StatusOK, app.H{"meeting": m})
}

// Dispatch 触发一轮通知分发，立刻返回 accepted，不等发送结果
// 默认丢进独立进程；?sync=1 在请求内同步跑（结果同样只进日志）
func (mc *MeetingsController) Dispatch(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "bad meeting id"})
		return
	}
	meetingID := uint(id64)
	sync := c.Query("sync") == "1"
	ctx := c.Request.Context()

	ok, err := mc.s.Lock.TryAcquire(ctx, meetingID)
	if err != nil {
		mc.s.Log.Warn().Err(err).Msg("dispatch lock unavailable, proceeding without it")
	} else if !ok {
		c.JSON(http.StatusConflict, app.H{"accepted": false, "error": "dispatch already running"})
		return
	}

	// run 一旦开始就要跑完，客户端断开不能取消进行中的发送和状态写入
	runCtx := context.WithoutCancel(ctx)
	accepted := mc.s.Dispatcher.DispatchForMeeting(runCtx, meetingID, !sync)
	if sync || !accepted {
		// 同步跑完（或根本没接受）就把锁放掉；后台进程结束时自己放
		_ = mc.s.Lock.Release(runCtx, meetingID)
	}

	status := http.StatusAccepted
	if !accepted {
		status = http.StatusNotFound
	}
	c.JSON(status, app.H{"accepted": accepted})
}
