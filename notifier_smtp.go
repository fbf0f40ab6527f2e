package accounts

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
)

// SMTPConfig holds the transport settings for SMTPNotifier.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
	FromAddr string
}

// SMTPNotifier delivers messages over plain SMTP with AUTH PLAIN.
type SMTPNotifier struct {
	cfg    SMTPConfig
	logger Logger
	// send is swappable for tests
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier creates a Notifier backed by net/smtp.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		cfg:    cfg,
		logger: defLogger{},
		send:   smtp.SendMail,
	}
}

func (n *SMTPNotifier) WithLogger(l Logger) *SMTPNotifier {
	if l != nil {
		n.logger = l
	}
	return n
}

// Send composes and delivers the message. The blocking SendMail call runs on
// its own goroutine so ctx keeps the bounded-timeout contract even when the
// transport hangs.
func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if n.cfg.Username == "" || n.cfg.Password == "" {
		return fmt.Errorf("smtp notifier: credentials not configured")
	}

	from := n.cfg.FromAddr
	if from == "" {
		from = n.cfg.Username
	}

	payload, err := composeMail(n.cfg.FromName, from, msg)
	if err != nil {
		return fmt.Errorf("smtp notifier: compose: %w", err)
	}

	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	addr := n.cfg.Host + ":" + n.cfg.Port

	done := make(chan error, 1)
	go func() {
		done <- n.send(addr, auth, from, []string{msg.To}, payload)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("smtp notifier: delivery timed out: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp notifier: send: %w", err)
		}
		return nil
	}
}

func composeMail(fromName, fromAddr string, msg Message) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s <%s>\r\n", fromName, fromAddr)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)

	if len(msg.Attachment) == 0 {
		fmt.Fprintf(&buf, "\r\n%s\r\n", msg.Body)
		return buf.Bytes(), nil
	}

	w := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", w.Boundary())

	text, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(msg.Body)); err != nil {
		return nil, err
	}

	name := msg.AttachmentName
	if name == "" {
		name = "attachment"
	}
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/octet-stream; name=" + name},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {"attachment; filename=" + name},
	})
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(msg.Attachment)
	if _, err := part.Write([]byte(encoded)); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

var _ Notifier = (*SMTPNotifier)(nil)
