package dispatch

import (
	"context"
	"fmt"

	"meeting-bot/models"

	"github.com/rs/zerolog"
)

// StubSMSSender 短信渠道桩：没有真实运营商集成，只记日志并报成功
type StubSMSSender struct {
	log zerolog.Logger
}

func NewStubSMSSender(log zerolog.Logger) *StubSMSSender {
	return &StubSMSSender{log: log.With().Str("component", "sms-stub").Logger()}
}

func (s *StubSMSSender) SendMeetingInvite(_ context.Context, inv models.Invitee, meeting *models.Meeting) error {
	if inv.Phone == nil || *inv.Phone == "" {
		return fmt.Errorf("invitee %d has no phone", inv.ID)
	}
	text := fmt.Sprintf("Приглашение: %s. %s %s. %s. Подтвердите участие через бота.",
		orDefault(meeting.Topic, "Совещание"), meeting.Date, meeting.Time, meeting.Place)
	s.log.Info().Str("phone", *inv.Phone).Str("text", text).Msg("sms stub: reported as sent")
	return nil
}
