package controllers

import (
	"net/http"
	"strconv"

	"meeting-bot/app"
	"meeting-bot/db"

	"github.com/gin-gonic/gin"
)

type InviteesController struct{ s *Srv }

func GetInviteesController(s *Srv) *InviteesController { return &InviteesController{s: s} }

// Import 批量导入名单；接受 JSON rows 或原始 "ФИО | email | телефон" 文本
// 无效行和重复行静默跳过，只返回计数
func (ic *InviteesController) Import(c *gin.Context) {
	meetingID, ok := meetingParam(c)
	if !ok {
		return
	}

	var in struct {
		Rows []db.ImportRow `json:"rows"`
		Text string         `json:"text"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	rows := in.Rows
	if len(rows) == 0 && in.Text != "" {
		rows = ParseInvitedLines(in.Text)
	}
	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "no rows to import"})
		return
	}

	if _, err := ic.s.Repo.FindMeetingByID(c.Request.Context(), meetingID); err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "meeting not found"})
		return
	}

	res, err := ic.s.Repo.BatchImportInvitees(c.Request.Context(), meetingID, rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"added": res.Added, "skipped": res.Skipped})
}

// Voted 已投票名单
func (ic *InviteesController) Voted(c *gin.Context) {
	meetingID, ok := meetingParam(c)
	if !ok {
		return
	}
	list, err := ic.s.Repo.VotedInvitees(c.Request.Context(), meetingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"invitees": list, "total": len(list)})
}

func meetingParam(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "bad meeting id"})
		return 0, false
	}
	return uint(id64), true
}
