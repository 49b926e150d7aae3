package routes

import (
	"meeting-bot/app"
	"meeting-bot/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	ev := controllers.GetEventsController(s)
	mc := controllers.GetMeetingsController(s)
	ic := controllers.GetInviteesController(s)

	tokenMW := app.TokenRequired(a.Config)

	api := r.Group("/api/v1")

	// 入站事件 webhook（平台推送）
	api.POST("/events", tokenMW, ev.HandleEvent)

	// ------------------------------
	// 会议与名单（运维端点）
	// ------------------------------
	meetings := api.Group("/meetings", tokenMW)
	{
		meetings.POST("", mc.CreateMeeting)
		meetings.GET("/current", mc.CurrentMeeting)
		meetings.POST("/:id/dispatch", mc.Dispatch)
		meetings.POST("/:id/invitees/import", ic.Import)
		meetings.GET("/:id/invitees/voted", ic.Voted)
	}
}
