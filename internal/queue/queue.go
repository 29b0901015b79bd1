package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// SendTask asks the mailer to deliver one drafted email.
type SendTask struct {
	TaskID      string    `json:"task_id"`
	SentEmailID string    `json:"sent_email_id"`
	CompanyID   string    `json:"company_id"`
	To          string    `json:"to"`
	From        string    `json:"from,omitempty"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher puts send tasks on the email subject.
type Publisher struct {
	conn    Conn
	subject string
}

func NewPublisher(conn Conn, subject string) *Publisher {
	return &Publisher{conn: conn, subject: subject}
}

// Connect dials NATS with reconnects enabled.
func Connect(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("error connecting to NATS at %s: %w", url, err)
	}
	return nc, nil
}

// PublishSend assigns a task id when missing and publishes the task.
func (p *Publisher) PublishSend(ctx context.Context, task SendTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if task.To == "" {
		return errors.New("send task has no recipient")
	}
	if task.TaskID == "" {
		task.TaskID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal send task: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish send task to %s: %w", p.subject, err)
	}
	return nil
}
