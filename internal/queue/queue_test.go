package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	subject string
	data    []byte
	err     error
}

func (c *recordingConn) Publish(subject string, data []byte) error {
	c.subject = subject
	c.data = data
	return c.err
}

func TestPublishSend(t *testing.T) {
	t.Run("Publishes JSON Task", func(t *testing.T) {
		conn := &recordingConn{}
		p := NewPublisher(conn, "outreach.email.send")

		err := p.PublishSend(context.Background(), SendTask{
			SentEmailID: "se-1",
			To:          "kerry@yuppiechef.com",
			Subject:     "Hello",
			Body:        "Hi Kerry",
		})
		require.NoError(t, err)
		assert.Equal(t, "outreach.email.send", conn.subject)

		var got SendTask
		require.NoError(t, json.Unmarshal(conn.data, &got))
		assert.NotEmpty(t, got.TaskID)
		assert.False(t, got.CreatedAt.IsZero())
		assert.Equal(t, "se-1", got.SentEmailID)
		assert.Equal(t, "kerry@yuppiechef.com", got.To)
	})

	t.Run("Keeps Caller Task ID", func(t *testing.T) {
		conn := &recordingConn{}
		require.NoError(t, NewPublisher(conn, "s").PublishSend(context.Background(), SendTask{TaskID: "t-1", To: "a@x.io"}))
		assert.Contains(t, string(conn.data), `"task_id":"t-1"`)
	})

	t.Run("No Recipient", func(t *testing.T) {
		conn := &recordingConn{}
		err := NewPublisher(conn, "s").PublishSend(context.Background(), SendTask{Subject: "x"})
		assert.Error(t, err)
		assert.Nil(t, conn.data)
	})

	t.Run("Connection Error", func(t *testing.T) {
		conn := &recordingConn{err: errors.New("nats: connection closed")}
		err := NewPublisher(conn, "s").PublishSend(context.Background(), SendTask{To: "a@x.io"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection closed")
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := NewPublisher(&recordingConn{}, "s").PublishSend(ctx, SendTask{To: "a@x.io"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
