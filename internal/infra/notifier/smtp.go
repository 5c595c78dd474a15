package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"text/template"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

var reminderBody = template.Must(template.New("reminder").Parse(`Hi {{.RecipientName}},

Your task "{{.TaskTitle}}" was due on {{.DueDate.Format "Mon, 02 Jan 2006 15:04 MST"}} and is now {{.Days}} overdue.

Open your task list to mark it done or reschedule it.
`))

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	StartTLS bool
	// TLSConfig overrides the STARTTLS client settings. ServerName defaults
	// to Host.
	TLSConfig *tls.Config
}

type SMTPNotifier struct {
	cfg    SMTPConfig
	dialer *net.Dialer
	now    func() time.Time
}

func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}

	if cfg.From == "" {
		return nil, errors.New("smtp sender address is required")
	}

	if cfg.Port == 0 {
		cfg.Port = 587
	}

	return &SMTPNotifier{
		cfg:    cfg,
		dialer: &net.Dialer{Timeout: 10 * time.Second},
		now:    time.Now,
	}, nil
}

func (n *SMTPNotifier) Send(ctx context.Context, msg ReminderMessage) error {
	payload, err := n.compose(msg)
	if err != nil {
		return fmt.Errorf("failed to compose reminder email: %w", err)
	}

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))

	conn, err := n.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	// unblock a stalled exchange when the caller gives up
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	c, err := n.newClient(conn)
	if err != nil {
		_ = conn.Close()

		return err
	}
	defer c.Close()

	if n.cfg.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", n.cfg.Username, n.cfg.Password)); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := c.SendMail(n.cfg.From, []string{msg.To}, bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}

	if err := c.Quit(); err != nil {
		slog.DebugContext(ctx, "smtp quit failed after delivery",
			slog.String("task_id", msg.TaskID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

func (n *SMTPNotifier) newClient(conn net.Conn) (*smtp.Client, error) {
	if !n.cfg.StartTLS {
		return smtp.NewClient(conn), nil
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if n.cfg.TLSConfig != nil {
		tlsConfig = n.cfg.TLSConfig.Clone()
	}

	if tlsConfig.ServerName == "" {
		tlsConfig.ServerName = n.cfg.Host
	}

	c, err := smtp.NewClientStartTLS(conn, tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to start tls: %w", err)
	}

	return c, nil
}

func (n *SMTPNotifier) compose(msg ReminderMessage) ([]byte, error) {
	var h mail.Header
	h.SetDate(n.now())
	h.SetSubject(subject(msg))
	h.SetAddressList("From", []*mail.Address{{Name: n.cfg.FromName, Address: n.cfg.From}})
	h.SetAddressList("To", []*mail.Address{{Name: msg.RecipientName, Address: msg.To}})
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	h.Set("X-Reminder-Task-Id", msg.TaskID)

	if err := h.GenerateMessageID(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}

	if err := writeBody(w, msg); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeBody(w io.Writer, msg ReminderMessage) error {
	return reminderBody.Execute(w, struct {
		RecipientName string
		TaskTitle     string
		DueDate       time.Time
		Days          string
	}{
		RecipientName: msg.RecipientName,
		TaskTitle:     msg.TaskTitle,
		DueDate:       msg.DueDate,
		Days:          dayCount(msg.DaysOverdue),
	})
}

func (n *SMTPNotifier) Close() error {
	return nil
}
