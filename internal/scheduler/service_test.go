package scheduler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Neo-sk01/newmatter-sub000/internal/logger"
	"github.com/Neo-sk01/newmatter-sub000/internal/outreach"
)

type MockFollowUpClient struct {
	mock.Mock
}

func (m *MockFollowUpClient) RunFollowUps(ctx context.Context) (*outreach.RunResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outreach.RunResult), args.Error(1)
}

func testLogger(buf *bytes.Buffer) logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.DebugLevel, Output: buf})
}

func TestService_Start(t *testing.T) {
	t.Run("Valid Schedule Adds One Entry", func(t *testing.T) {
		var buf bytes.Buffer
		service := NewService(new(MockFollowUpClient), "0 */15 * * * *", testLogger(&buf))
		require.NoError(t, service.Start())
		assert.Len(t, service.cronRunner.Entries(), 1)
		assert.Contains(t, buf.String(), "Scheduler started")
		service.Stop()
	})

	t.Run("Descriptor Schedule", func(t *testing.T) {
		service := NewService(new(MockFollowUpClient), "@every 10m", nil)
		require.NoError(t, service.Start())
		assert.Len(t, service.cronRunner.Entries(), 1)
		service.Stop()
	})

	t.Run("Invalid Cron Expression", func(t *testing.T) {
		service := NewService(new(MockFollowUpClient), "not a cron", nil)
		err := service.Start()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a cron")
		assert.Empty(t, service.cronRunner.Entries())
	})
}

func TestService_runFollowUps(t *testing.T) {
	t.Run("Successful Run", func(t *testing.T) {
		var buf bytes.Buffer
		client := new(MockFollowUpClient)
		client.On("RunFollowUps", mock.Anything).Return(&outreach.RunResult{Processed: 3, Sent: 2, Failed: 1}, nil).Once()

		NewService(client, "@every 1h", testLogger(&buf)).runFollowUps()

		client.AssertExpectations(t)
		assert.Contains(t, buf.String(), "Follow-up run completed")
		assert.Contains(t, buf.String(), "sent=2")
	})

	t.Run("Client Error Is Logged", func(t *testing.T) {
		var buf bytes.Buffer
		client := new(MockFollowUpClient)
		client.On("RunFollowUps", mock.Anything).Return(nil, errors.New("connection refused")).Once()

		NewService(client, "@every 1h", testLogger(&buf)).runFollowUps()

		client.AssertExpectations(t)
		assert.Contains(t, buf.String(), "connection refused")
	})
}

func TestHTTPFollowUpClient(t *testing.T) {
	t.Run("Posts With Bearer Secret", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/followups/run", r.URL.Path)
			assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"processed":4,"sent":3,"completed":1,"stopped":0,"skipped":0,"failed":1}`))
		}))
		defer srv.Close()

		res, err := NewHTTPFollowUpClient(srv.URL+"/api/v1/followups/run", "s3cret").RunFollowUps(context.Background())
		require.NoError(t, err)
		assert.Equal(t, &outreach.RunResult{Processed: 4, Sent: 3, Completed: 1, Failed: 1}, res)
	})

	t.Run("Non OK Status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"UNAUTHORIZED"}`))
		}))
		defer srv.Close()

		_, err := NewHTTPFollowUpClient(srv.URL, "wrong").RunFollowUps(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
		assert.Contains(t, err.Error(), "UNAUTHORIZED")
	})

	t.Run("Malformed Body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		_, err := NewHTTPFollowUpClient(srv.URL, "").RunFollowUps(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode")
	})
}
