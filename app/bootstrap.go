// app/bootstrap.go
package app

import (
	"context"

	"meeting-bot/db"
)

// SeedAdmins 把 ADMIN_EMAILS 里的管理员灌进 admins 表（已有的跳过）
// 管理员命中即无条件准入，所以种子失败只告警不拦启动
func SeedAdmins(ctx context.Context, a *App, repo *db.Repo) {
	if len(a.Config.AdminEmails) == 0 {
		return
	}
	if err := repo.SeedAdmins(ctx, a.Config.AdminEmails); err != nil {
		a.Log.Warn().Err(err).Msg("admin seed failed")
		return
	}
	a.Log.Info().Int("count", len(a.Config.AdminEmails)).Msg("admin emails seeded")
}
