package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// DefaultSMTPTimeout bounds one delivery, dial through QUIT.
const DefaultSMTPTimeout = 30 * time.Second

// SMTPConfig holds mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

type sendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier sends plain-text mail. The connection is upgraded with
// STARTTLS when the server offers it; PLAIN auth requires it unless the
// host is local.
type SMTPNotifier struct {
	cfg     SMTPConfig
	send    sendFunc
	now     func() time.Time
	timeout time.Duration
}

// NewSMTPNotifier creates an SMTPNotifier.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		cfg:     cfg,
		send:    sendMail,
		now:     time.Now,
		timeout: DefaultSMTPTimeout,
	}
}

// Notify delivers one message. It gives up when ctx is done or after the
// notifier's timeout, whichever comes first.
func (n *SMTPNotifier) Notify(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailure, err)
	}
	if len(n.cfg.To) == 0 {
		return fmt.Errorf("%w: no recipients", ErrNotificationFailure)
	}

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))

	var auth smtp.Auth
	if n.cfg.Password != "" {
		user := n.cfg.Username
		if user == "" {
			user = n.cfg.From
		}
		auth = smtp.PlainAuth("", user, n.cfg.Password, n.cfg.Host)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	msg := n.message(subject, body)
	if err := n.send(ctx, addr, auth, n.cfg.From, n.cfg.To, msg); err != nil {
		return fmt.Errorf("%w: smtp %s: %v", ErrNotificationFailure, addr, err)
	}
	return nil
}

func (n *SMTPNotifier) message(subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + n.cfg.From + "\r\n")
	b.WriteString("To: " + strings.Join(n.cfg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + sanitizeHeader(subject) + "\r\n")
	b.WriteString("Date: " + n.now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

// sanitizeHeader keeps a header value on one line.
func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// sendMail is smtp.SendMail with the connection tied to ctx: the dial honors
// it, its deadline becomes the socket deadline, and cancellation closes the
// connection so a stalled server cannot block past it.
func sendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	for _, line := range append([]string{from}, to...) {
		if strings.ContainsAny(line, "\r\n") {
			return errors.New("smtp: address contains CR or LF")
		}
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return err
		}
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp: server doesn't support AUTH")
		}
		if err := c.Auth(a); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
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
