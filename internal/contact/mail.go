package contact

import (
	"bytes"
	"context"
	"html/template"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"silosremeco/backend/internal/domain"
)

type Message struct {
	ID      string
	Subject string
	HTML    string
	ReplyTo string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// messageTmpl escapes every visitor-supplied field.
var messageTmpl = template.Must(template.New("contact").Parse(`<h2>Mensaje recibido desde el formulario</h2>
<ul>
  <li><strong>Nombre:</strong> {{.Name}}</li>
  <li><strong>Email:</strong> {{.Email}}</li>
  <li><strong>Teléfono:</strong> {{.Phone}}</li>
  <li><strong>Mensaje:</strong> {{.Message}}</li>
</ul>
`))

func renderMessage(req domain.ContactRequest) (string, error) {
	var buf bytes.Buffer
	if err := messageTmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewSMTPMailer(host string, port int, username, password, from, to string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		to:     to,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := gomail.NewMessage()
	out.SetHeader("From", m.from)
	out.SetHeader("To", m.to)
	out.SetHeader("Subject", msg.Subject)
	if msg.ReplyTo != "" {
		out.SetHeader("Reply-To", msg.ReplyTo)
	}
	if msg.ID != "" {
		out.SetHeader("X-Contact-ID", msg.ID)
	}
	out.SetBody("text/html", msg.HTML)
	return m.dialer.DialAndSend(out)
}

// LogMailer stands in for SMTP in development.
type LogMailer struct {
	log logrus.FieldLogger
}

func NewLogMailer(log logrus.FieldLogger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"subject":    msg.Subject,
		"reply_to":   msg.ReplyTo,
	}).Info("contact message (smtp disabled)")
	return nil
}
