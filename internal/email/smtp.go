package email

import (
	"crypto/tls"
	"fmt"
	"html"
	"time"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/hellolink/internal/observability/logger"
)

// SMTPSender implementa Sender usando SMTP.
type SMTPSender struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool
}

// NewSMTPSender crea un nuevo SMTPSender con los parámetros dados.
func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{
		Host:    host,
		Port:    port,
		From:    from,
		User:    user,
		Pass:    pass,
		TLSMode: "auto",
	}
}

// SendMagicLink envía el link de sign-in con cuerpo texto + HTML.
func (s *SMTPSender) SendMagicLink(to, link string, expiresAt time.Time) error {
	log := logger.Named("email.smtp").With(
		logger.String("host", s.Host),
		logger.Int("port", s.Port),
		logger.Email(to),
	)

	log.Debug("sending magic link",
		logger.String("tls_mode", s.TLSMode),
		logger.Expiry(expiresAt),
	)

	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Tu link de acceso")

	// multipart/alternative (txt + html)
	m.SetBody("text/plain", textBody(link, expiresAt))
	m.AddAlternative("text/html", htmlBody(link, expiresAt))

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify, // solo dev
	}

	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: s.InsecureSkipVerify}
	default:
		// "auto"/"starttls": go-mail negocia STARTTLS si corresponde
	}

	if err := d.DialAndSend(m); err != nil {
		log.Error("smtp send failed", logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}

	log.Info("magic link sent")
	return nil
}

func textBody(link string, expiresAt time.Time) string {
	return fmt.Sprintf(
		"Entrá con este link (expira %s):\n\n%s\n\nSi no pediste este mail, ignoralo.\n",
		expiresAt.UTC().Format(time.RFC1123), link,
	)
}

func htmlBody(link string, expiresAt time.Time) string {
	escaped := html.EscapeString(link)
	return fmt.Sprintf(
		`<p>Entrá con este link (expira %s):</p><p><a href=%q>%s</a></p><p>Si no pediste este mail, ignoralo.</p>`,
		expiresAt.UTC().Format(time.RFC1123), escaped, escaped,
	)
}
