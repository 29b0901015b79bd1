package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/Neo-sk01/newmatter-sub000/internal/logger"
	"github.com/Neo-sk01/newmatter-sub000/internal/models"
	"github.com/Neo-sk01/newmatter-sub000/internal/queue"
)

// Config holds SMTP settings. Sending is simulated when Host or Port is empty.
type Config struct {
	SMTPHost    string
	SMTPPort    string
	SMTPUser    string
	SMTPPass    string
	DefaultFrom string
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// StatusRecorder stores the delivery outcome of a sent email.
type StatusRecorder interface {
	UpdateSentEmailStatus(ctx context.Context, id uuid.UUID, status string) error
}

// Mailer consumes send tasks and delivers them over SMTP.
type Mailer struct {
	cfg    Config
	send   SendFunc
	status StatusRecorder
	log    logger.Logger
}

// New creates a Mailer. status may be nil when no database is attached.
func New(cfg Config, status StatusRecorder, log logger.Logger) *Mailer {
	if cfg.DefaultFrom == "" {
		cfg.DefaultFrom = "noreply@example.com"
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Mailer{cfg: cfg, send: smtp.SendMail, status: status, log: log}
}

// Simulated reports whether deliveries are only logged.
func (m *Mailer) Simulated() bool {
	return m.cfg.SMTPHost == "" || m.cfg.SMTPPort == ""
}

// Subscribe joins the queue group on subject so several mailers share the load.
func (m *Mailer) Subscribe(nc *nats.Conn, subject, group string) (*nats.Subscription, error) {
	sub, err := nc.QueueSubscribe(subject, group, m.HandleMsg)
	if err != nil {
		return nil, fmt.Errorf("error subscribing to NATS subject %q: %w", subject, err)
	}
	m.log.Info("Subscribed to email subject", "subject", subject, "queue_group", group)
	return sub, nil
}

// HandleMsg is the nats.MsgHandler for send tasks. Malformed tasks are
// logged and dropped.
func (m *Mailer) HandleMsg(msg *nats.Msg) {
	var task queue.SendTask
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		m.log.Error("Error unmarshalling send task", "subject", msg.Subject, "error", err, "data", string(msg.Data))
		return
	}
	ctx := logger.ContextWithLogger(context.Background(), m.log.With("task_id", task.TaskID))
	if err := m.Deliver(ctx, task); err != nil {
		m.log.Error("Email delivery failed", "task_id", task.TaskID, "error", err)
	}
}

// Deliver sends one task and records the outcome on its SentEmail row.
func (m *Mailer) Deliver(ctx context.Context, task queue.SendTask) error {
	to := ParseRecipientList(task.To)
	if len(to) == 0 {
		m.recordStatus(ctx, task, models.SentEmailFailed)
		return fmt.Errorf("task %s has no valid recipients", task.TaskID)
	}
	from := task.From
	if from == "" {
		from = m.cfg.DefaultFrom
	}
	msg := BuildMessage(from, to, task.Subject, task.Body)

	log := logger.FromContext(ctx)
	if m.Simulated() {
		log.Info("Simulating email send",
			"to", strings.Join(to, ", "),
			"from", from,
			"subject", task.Subject,
			"body", task.Body,
		)
		m.recordStatus(ctx, task, models.SentEmailSent)
		return nil
	}

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}
	if err := m.send(addr, auth, from, to, msg); err != nil {
		m.recordStatus(ctx, task, models.SentEmailFailed)
		return fmt.Errorf("error sending email via SMTP %s: %w", addr, err)
	}
	log.Info("Email sent", "to", strings.Join(to, ", "), "smtp", addr)
	m.recordStatus(ctx, task, models.SentEmailSent)
	return nil
}

func (m *Mailer) recordStatus(ctx context.Context, task queue.SendTask, status string) {
	if m.status == nil || task.SentEmailID == "" {
		return
	}
	id, err := uuid.Parse(task.SentEmailID)
	if err != nil {
		logger.FromContext(ctx).Warn("Send task has malformed sent_email_id", "sent_email_id", task.SentEmailID)
		return
	}
	if err := m.status.UpdateSentEmailStatus(ctx, id, status); err != nil {
		logger.FromContext(ctx).Error("Failed to record email status", "sent_email_id", id, "status", status, "error", err)
	}
}

// BuildMessage renders a plain-text RFC 5322 message.
func BuildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

// ParseRecipientList splits a comma or semicolon separated address list.
func ParseRecipientList(s string) []string {
	var out []string
	for _, r := range strings.Split(strings.ReplaceAll(s, ";", ","), ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
