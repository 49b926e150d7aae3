package controllers

import (
	"strings"

	"meeting-bot/db"
)

// ParseInvitedLines 解析 "ФИО | email | телефон" 文本，一行一个人
// 字段分隔符按顺序识别：" | "、"|"、";"；空行和 # 开头的行跳过
// 这里只做切分，逐行校验在批量导入里做
func ParseInvitedLines(text string) []db.ImportRow {
	var rows []db.ImportRow
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := splitInvitedLine(line)
		if parts == nil {
			continue
		}
		row := db.ImportRow{FullName: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			row.Email = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			row.Phone = strings.TrimSpace(parts[2])
		}
		rows = append(rows, row)
	}
	return rows
}

func splitInvitedLine(line string) []string {
	for _, sep := range []string{" | ", "|", ";"} {
		if strings.Contains(line, sep) {
			return strings.SplitN(line, sep, 3)
		}
	}
	return nil
}
