package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"meeting-bot/models"

	"github.com/rs/zerolog"
)

// ChatClient 聊天平台发消息客户端
type ChatClient struct {
	baseURL string
	token   string
	client  *http.Client
	log     zerolog.Logger
}

func NewChatClient(baseURL, token string, timeout time.Duration, log zerolog.Logger) *ChatClient {
	return &ChatClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "chat").Logger(),
	}
}

// SendText 发纯文本；成功的判据是平台回了 messageId
func (c *ChatClient) SendText(ctx context.Context, workspaceID, groupID int64, text string) error {
	url := fmt.Sprintf("%s/messages/sendTextMessage/%d/%d", c.baseURL, workspaceID, groupID)
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chat send: HTTP %d", resp.StatusCode)
	}
	var out struct {
		MessageID string `json:"messageId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("chat send: bad response: %w", err)
	}
	if out.MessageID == "" {
		return fmt.Errorf("chat send: no messageId in response")
	}
	return nil
}

func (c *ChatClient) SendMeetingInvite(ctx context.Context, user *models.ChatUser, meeting *models.Meeting) error {
	text := fmt.Sprintf(
		"Уважаемый(ая) %s,\n\n"+
			"Вы приглашены на оперативное совещание:\n\n"+
			"Тема: %s\nДата: %s\nВремя: %s\nМесто: %s\nСсылка: %s\n\n"+
			"Чтобы подтвердить участие, отправьте боту команду /start "+
			"и выберите один из вариантов ответа.",
		user.FullName,
		orDefault(meeting.Topic, "не указана"),
		orDefault(meeting.Date, "?"),
		orDefault(meeting.Time, "?"),
		orDefault(meeting.Place, "уточнить у организатора"),
		orDefault(meeting.Link, "не предоставлена"),
	)
	return c.SendText(ctx, user.WorkspaceID, user.GroupID, text)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
