package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 从环境变量读取
type Config struct {
	Port      string
	WebOrigin string

	RedisAddr string
	RedisPwd  string

	// 聊天平台
	BotToken         string
	APIBaseURL       string // 发消息
	DirectoryBaseURL string // getUser 目录查询
	RequestTimeout   time.Duration

	// SMTP
	SMTPHost   string
	SMTPPort   string
	SMTPUser   string
	SMTPPwd    string
	SMTPSender string

	// 邮件 HTML 模板（找不到是致命错误）
	EmailTemplatePath string

	// 管理员种子列表（小写 email）
	AdminEmails []string

	FlowStateTTL    time.Duration
	DispatchLockTTL time.Duration
}

func LoadEnv() {
	// .env 不存在不算错误，沿用进程环境
	_ = godotenv.Load()
}

func Load() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}

	var admins []string
	for _, s := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		if t := strings.ToLower(strings.TrimSpace(s)); t != "" {
			admins = append(admins, t)
		}
	}

	timeout := 30 * time.Second
	if d, err := time.ParseDuration(get("REQUEST_TIMEOUT_SECONDS", "30") + "s"); err == nil {
		timeout = d
	}

	return Config{
		Port:      get("PORT", "3001"),
		WebOrigin: get("WEB_ORIGIN", "http://localhost:3001"),

		RedisAddr: get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:  os.Getenv("REDIS_PASSWORD"),

		BotToken:         os.Getenv("BOT_TOKEN"),
		APIBaseURL:       get("API_BASE_URL", "https://api.kchat.app"),
		DirectoryBaseURL: get("DIRECTORY_BASE_URL", get("API_BASE_URL", "https://api.kchat.app")),
		RequestTimeout:   timeout,

		SMTPHost:   os.Getenv("SMTP_HOST"),
		SMTPPort:   get("SMTP_PORT", "587"),
		SMTPUser:   os.Getenv("SMTP_USER"),
		SMTPPwd:    os.Getenv("SMTP_PASSWORD"),
		SMTPSender: os.Getenv("SMTP_SENDER"),

		EmailTemplatePath: get("EMAIL_TEMPLATE_PATH", "config/email_template.html"),

		AdminEmails: admins,

		FlowStateTTL:    24 * time.Hour,
		DispatchLockTTL: 10 * time.Minute,
	}
}

// MustValidate 启动期校验：没有邮件模板宁可拒绝启动，也不做无模板的群发
func (c Config) MustValidate() {
	if c.BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}
	if _, err := os.ReadFile(c.EmailTemplatePath); err != nil {
		log.Fatalf("email template %s: %v", c.EmailTemplatePath, err)
	}
}
