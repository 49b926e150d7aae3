package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Directory 聊天平台目录查询客户端（getUser）
type Directory struct {
	baseURL string
	token   string
	client  *http.Client
	log     zerolog.Logger
}

func NewDirectory(baseURL, token string, timeout time.Duration, log zerolog.Logger) *Directory {
	return &Directory{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "directory").Logger(),
	}
}

// LookupResult 区分「没查到数据」和「根本没调用/调用失败」
// Err 只用于日志和测试断言，绝不向准入逻辑传播
type LookupResult struct {
	Data      Fragment
	Found     bool
	Attempted bool
	Err       error
}

// Lookup 按 sender_id 查目录。任何失败（超时、连接错误、非 200、坏 JSON）
// 都返回空结果，不抛错不重试，准入逻辑退回仅用事件内联数据
func (d *Directory) Lookup(ctx context.Context, senderID int64) LookupResult {
	res := LookupResult{Attempted: true}

	body, err := json.Marshal(map[string]int64{"userId": senderID})
	if err != nil {
		res.Err = err
		return res
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.baseURL+"/users/getUser", bytes.NewReader(body))
	if err != nil {
		res.Err = err
		return res
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", d.token)

	resp, err := d.client.Do(req)
	if err != nil {
		res.Err = err
		d.log.Warn().Err(err).Int64("senderId", senderID).Msg("directory lookup failed")
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		res.Err = fmt.Errorf("directory lookup: HTTP %d", resp.StatusCode)
		d.log.Warn().Int("status", resp.StatusCode).Int64("senderId", senderID).Msg("directory lookup failed")
		return res
	}

	var out struct {
		User map[string]any `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		res.Err = err
		d.log.Warn().Err(err).Int64("senderId", senderID).Msg("directory lookup: bad body")
		return res
	}
	if len(out.User) == 0 {
		return res
	}

	res.Data = directoryUserToFragment(out.User)
	res.Found = !res.Data.Empty()
	return res
}

// directoryUserToFragment 目录可能给 name 一个整串，也可能给分开的姓名字段
func directoryUserToFragment(user map[string]any) Fragment {
	f := Fragment{
		Email:    getStr(user, "email"),
		Phone:    getStr(user, "phone", "phoneNumber"),
		Username: getStr(user, "username", "login", "userName", "user_name"),
		JobTitle: normalizeJobTitle(getStr(user, "job_title", "jobTitle", "position")),
	}
	if f.Username == "" && strings.Contains(f.Email, "@") {
		f.Username = strings.SplitN(f.Email, "@", 2)[0]
	}

	if name := getStr(user, "name"); name != "" {
		parts := strings.SplitN(name, " ", 3)
		f.LastName = parts[0]
		if len(parts) > 1 {
			f.FirstName = parts[1]
		}
		if len(parts) > 2 {
			f.MiddleName = parts[2]
		}
		return f
	}
	f.LastName = getStr(user, "last_name", "lastName", "surname")
	f.FirstName = getStr(user, "first_name", "firstName")
	f.MiddleName = getStr(user, "middle_name", "middleName")
	return f
}
