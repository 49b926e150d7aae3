package identity

import "strings"

// Event 入站聊天事件（webhook 解出来的最小形状）
type Event struct {
	SenderID    int64          `json:"senderId"`
	GroupID     int64          `json:"groupId"`
	WorkspaceID int64          `json:"workspaceId"`
	Text        string         `json:"text"`
	CallbackData string        `json:"callbackData"`
	Payload     map[string]any `json:"payload"`
}

// Fragment 一份原始身份片段，来源可以是事件 payload 或目录查询
type Fragment struct {
	LastName   string
	FirstName  string
	MiddleName string
	Email      string
	Phone      string
	Username   string
	JobTitle   string
}

func (f Fragment) Empty() bool {
	return f.LastName == "" && f.FirstName == "" && f.MiddleName == "" &&
		f.Email == "" && f.Phone == "" && f.Username == "" && f.JobTitle == ""
}

// FullName 姓 名 父称 的非空拼接；全空返回 "—"
func (f Fragment) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{f.LastName, f.FirstName, f.MiddleName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, " ")
}

// getStr 按别名顺序取第一个非空字符串值
func getStr(d map[string]any, keys ...string) string {
	if d == nil {
		return ""
	}
	for _, k := range keys {
		if v, ok := d[k]; ok {
			if s, ok := v.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// normalizeJobTitle 纯数字的是内部岗位编号不是职务名，丢弃
func normalizeJobTitle(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return s
		}
	}
	return ""
}

func fragmentFromSender(sender map[string]any) Fragment {
	return Fragment{
		LastName:   getStr(sender, "last_name", "lastName", "surname"),
		FirstName:  getStr(sender, "first_name", "firstName", "name"),
		MiddleName: getStr(sender, "middle_name", "middleName"),
		Email:      getStr(sender, "email"),
		Phone:      getStr(sender, "phone"),
		Username:   getStr(sender, "username", "login"),
		JobTitle:   normalizeJobTitle(getStr(sender, "job_title", "position", "jobTitle")),
	}
}

// FragmentFromEvent 从事件 payload 抠身份片段
// 经典格式 payload.messages[0].sender / .user，退化格式 payload.user / payload.sender
func FragmentFromEvent(ev Event) (Fragment, bool) {
	payload := ev.Payload
	if payload == nil {
		return Fragment{}, false
	}
	if msgs, ok := payload["messages"].([]any); ok && len(msgs) > 0 {
		if msg, ok := msgs[0].(map[string]any); ok {
			sender := msg
			if s, ok := msg["sender"].(map[string]any); ok {
				sender = s
			} else if u, ok := msg["user"].(map[string]any); ok {
				sender = u
			}
			if f := fragmentFromSender(sender); !f.Empty() {
				return f, true
			}
		}
	}
	for _, key := range []string{"user", "sender"} {
		if s, ok := payload[key].(map[string]any); ok {
			if f := fragmentFromSender(s); !f.Empty() {
				return f, true
			}
		}
	}
	return Fragment{}, false
}

// Merge 逐字段合并：inline 非空优先，否则取 remote，都空则空
// 本地事件里的数据比可能过期的目录数据新
func Merge(inline, remote Fragment) Fragment {
	pick := func(p, a string) string {
		if strings.TrimSpace(p) != "" {
			return strings.TrimSpace(p)
		}
		return strings.TrimSpace(a)
	}
	merged := Fragment{
		LastName:   pick(inline.LastName, remote.LastName),
		FirstName:  pick(inline.FirstName, remote.FirstName),
		MiddleName: pick(inline.MiddleName, remote.MiddleName),
		Email:      pick(inline.Email, remote.Email),
		Phone:      pick(inline.Phone, remote.Phone),
		Username:   pick(inline.Username, remote.Username),
		JobTitle:   pick(inline.JobTitle, remote.JobTitle),
	}
	merged.JobTitle = normalizeJobTitle(merged.JobTitle)
	return merged
}
