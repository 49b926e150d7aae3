package app

import (
	"context"
	"html/template"
	"log"
	"os"
	"time"

	"meeting-bot/config"
	"meeting-bot/db"
	"meeting-bot/dispatch"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Config config.Config
	Log    zerolog.Logger

	// 启动期加载；缺失时进程直接拒绝启动
	EmailTemplate *template.Template
}

func MustNew() *App {
	cfg := config.Load()
	cfg.MustValidate()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "meeting-bot").Logger()

	// --- DB: Postgres ---
	dbConn := db.ConnectDB()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	// --- 邮件模板（缺了直接 fatal） ---
	tmpl, err := dispatch.LoadEmailTemplate(cfg.EmailTemplatePath)
	if err != nil {
		log.Fatalf("email template: %v", err)
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router:        r,
		DB:            dbConn,
		RDB:           rdb,
		Config:        cfg,
		Log:           logger,
		EmailTemplate: tmpl,
	}
}

func (a *App) Close() { _ = a.RDB.Close() }
