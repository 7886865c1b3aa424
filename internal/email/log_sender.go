package email

import (
	"time"

	"github.com/dropDatabas3/hellolink/internal/observability/logger"
)

// LogSender es un Sender que solo loguea el link. Para dev sin SMTP.
type LogSender struct{}

func (LogSender) SendMagicLink(to, link string, expiresAt time.Time) error {
	logger.Named("email.log").Info("magic link (not sent)",
		logger.Email(to),
		logger.String("link", link),
		logger.Expiry(expiresAt),
	)
	return nil
}
