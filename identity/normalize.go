package identity

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	nonDigitRe = regexp.MustCompile(`\D`)
)

// NormalizeEmail trim + lower；准入比对只认这个标准形
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidEmail 最小 x@y.z 形状校验，不做完整 RFC 解析
func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// NormalizePhone 规范化为纯数字 7XXXXXXXXXX：
// 11 位且以 8 开头 → 改写为 7 开头；11 位且以 7 开头 → 保留；其余一律拒绝为空串
// 渠道分类和去重都依赖这个标准形
func NormalizePhone(s string) string {
	digits := nonDigitRe.ReplaceAllString(s, "")
	if len(digits) != 11 {
		return ""
	}
	switch digits[0] {
	case '8':
		return "7" + digits[1:]
	case '7':
		return digits
	}
	return ""
}

// ParseMeetingDateTime 解析会议的 date + time 文本
// date: DD.MM.YYYY（两位年份 <50 按 20xx）或 YYYY-MM-DD；time: HH:MM 或 HH:MM:SS
// 解析失败返回 ok=false，调用方按「无有效会议」处理
func ParseMeetingDateTime(dateStr, timeStr string) (time.Time, bool) {
	dateStr = strings.TrimSpace(dateStr)
	timeStr = strings.TrimSpace(timeStr)
	if dateStr == "" || timeStr == "" {
		return time.Time{}, false
	}

	var day, month, year int
	if strings.Contains(dateStr, ".") && len(dateStr) >= 8 {
		parts := strings.Split(dateStr, ".")
		if len(parts) != 3 {
			return time.Time{}, false
		}
		d, err1 := atoi(parts[0])
		m, err2 := atoi(parts[1])
		y, err3 := atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return time.Time{}, false
		}
		if len(parts[2]) == 2 {
			if y < 50 {
				y += 2000
			} else {
				y += 1900
			}
		}
		day, month, year = d, m, y
	} else {
		if len(dateStr) < 10 {
			return time.Time{}, false
		}
		d, err := time.Parse("2006-01-02", dateStr[:10])
		if err != nil {
			return time.Time{}, false
		}
		day, month, year = d.Day(), int(d.Month()), d.Year()
	}

	layout := "15:04"
	if strings.Count(timeStr, ":") >= 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, timeStr)
	if err != nil {
		return time.Time{}, false
	}

	dt := time.Date(year, time.Month(month), day, t.Hour(), t.Minute(), t.Second(), 0, time.Local)
	// time.Date 会把 32.13 这类值翻滚进下个月，这里要求往返一致才算合法
	if dt.Day() != day || int(dt.Month()) != month || dt.Year() != year {
		return time.Time{}, false
	}
	return dt, true
}

func atoi(s string) (int, error) { return strconv.Atoi(strings.TrimSpace(s)) }
