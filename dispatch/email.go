package dispatch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"os"
	"time"

	"meeting-bot/models"

	"github.com/rs/zerolog"
)

// LoadEmailTemplate 读外部 HTML 模板；没有模板就没有邮件渠道，调用方在启动期 fatal
func LoadEmailTemplate(path string) (*template.Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("email template %s: %w", path, err)
	}
	return template.New("invite_email").Parse(string(raw))
}

type emailVars struct {
	FullName        string
	Topic           string
	DatetimeDisplay string
	Place           string
	LinkHTML        template.HTML
}

// SMTPSender 每次发送都开新的带认证连接；净速率由 dispatcher 的 inter-send delay 控制
type SMTPSender struct {
	host   string
	port   string
	user   string
	pwd    string
	sender string
	tmpl   *template.Template
	log    zerolog.Logger

	// 整个 SMTP 会话（连接、握手、发送）的截止时间
	Timeout time.Duration
}

func NewSMTPSender(host, port, user, pwd, sender string, tmpl *template.Template, log zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		host: host, port: port, user: user, pwd: pwd, sender: sender,
		tmpl: tmpl,
		log:  log.With().Str("component", "smtp").Logger(),
		Timeout: 30 * time.Second,
	}
}

func (s *SMTPSender) SendMeetingInvite(_ context.Context, inv models.Invitee, meeting *models.Meeting) error {
	if inv.Email == nil || *inv.Email == "" {
		return fmt.Errorf("invitee %d has no email", inv.ID)
	}

	datetime := "не указана"
	if meeting.Date != "" && meeting.Time != "" {
		datetime = meeting.Date + " в " + meeting.Time
	}
	var linkHTML template.HTML
	if meeting.Link != "" {
		linkHTML = template.HTML(fmt.Sprintf(
			`<p><strong>Ссылка:</strong> <a href="%s">%s</a></p>`,
			template.HTMLEscapeString(meeting.Link), template.HTMLEscapeString(meeting.Link)))
	}

	var body bytes.Buffer
	if err := s.tmpl.Execute(&body, emailVars{
		FullName:        orDefault(inv.FullName, "Коллега"),
		Topic:           orDefault(meeting.Topic, "Не указана"),
		DatetimeDisplay: datetime,
		Place:           orDefault(meeting.Place, "Не указано"),
		LinkHTML:        linkHTML,
	}); err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", s.sender)
	fmt.Fprintf(&msg, "To: %s\r\n", *inv.Email)
	fmt.Fprintf(&msg, "Subject: =?UTF-8?B?%s?=\r\n", encodeB64("Приглашение на оперативное совещание"))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	var auth smtp.Auth
	if s.user != "" && s.pwd != "" {
		auth = smtp.PlainAuth("", s.user, s.pwd, s.host)
	}
	if err := s.send(auth, *inv.Email, msg.Bytes()); err != nil {
		return fmt.Errorf("smtp send to %s: %w", *inv.Email, err)
	}
	return nil
}

// send 手动驱动 SMTP 会话。smtp.SendMail 不设任何超时，
// 一台挂死的服务端会把整轮分发卡住，这里连接和会话都压在同一个截止时间下
func (s *SMTPSender) send(auth smtp.Auth, to string, msg []byte) error {
	conn, err := (&net.Dialer{Timeout: s.Timeout}).Dial("tcp", s.host+":"+s.port)
	if err != nil {
		return err
	}
	if err := conn.SetDeadline(time.Now().Add(s.Timeout)); err != nil {
		conn.Close()
		return err
	}
	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return err
		}
	}
	if auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(s.sender); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func encodeB64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}
