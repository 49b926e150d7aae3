package main

import (
	"context"
	"flag"
	"log"
	"os"

	"meeting-bot/app"
	"meeting-bot/config"
	"meeting-bot/controllers"
	"meeting-bot/db"
	"meeting-bot/routes"
)

func main() {
	config.LoadEnv()

	// dispatch 子命令：后台分发进程入口（DispatchForMeeting 用它自我重启）
	if len(os.Args) > 1 && os.Args[1] == "dispatch" {
		runDispatch(os.Args[2:])
		return
	}

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	repo := db.NewRepo(application.DB)
	app.SeedAdmins(context.Background(), application, repo)

	log.Printf("listening on :%s", application.Config.Port)
	_ = r.Run(":" + application.Config.Port)
}

// runDispatch 独立进程里同步跑一轮分发；结果只进日志
func runDispatch(args []string) {
	fs := flag.NewFlagSet("dispatch", flag.ExitOnError)
	meetingID := fs.Uint("meeting", 0, "meeting id to dispatch for")
	_ = fs.Parse(args)
	if *meetingID == 0 {
		log.Fatal("dispatch: -meeting is required")
	}

	application := app.MustNew()
	defer application.Close()

	s := controllers.GetSrv(application)
	s.RunDispatch(context.Background(), uint(*meetingID))
}
