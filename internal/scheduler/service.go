package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Neo-sk01/newmatter-sub000/internal/logger"
	"github.com/Neo-sk01/newmatter-sub000/internal/outreach"
)

// FollowUpClient triggers one follow-up run on the API server.
type FollowUpClient interface {
	RunFollowUps(ctx context.Context) (*outreach.RunResult, error)
}

// HTTPFollowUpClient implements FollowUpClient against POST /api/v1/followups/run.
type HTTPFollowUpClient struct {
	URL        string
	Secret     string
	HttpClient *http.Client
}

func NewHTTPFollowUpClient(url, secret string) *HTTPFollowUpClient {
	return &HTTPFollowUpClient{
		URL:        url,
		Secret:     secret,
		HttpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *HTTPFollowUpClient) RunFollowUps(ctx context.Context) (*outreach.RunResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create follow-up request: %w", err)
	}
	if c.Secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.Secret)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call follow-up endpoint at %s: %w", c.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("follow-up endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var result outreach.RunResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode follow-up response: %w", err)
	}
	return &result, nil
}

// Service runs the follow-up job on a cron schedule.
type Service struct {
	cronRunner *cron.Cron
	client     FollowUpClient
	schedule   string
	log        logger.Logger
	entryID    cron.EntryID
}

// NewService creates a scheduler for schedule, a six-field cron expression
// (seconds first) or a descriptor such as "@every 15m".
func NewService(client FollowUpClient, schedule string, log logger.Logger) *Service {
	if log == nil {
		log = logger.GetDefault()
	}
	cronLog := cron.PrintfLogger(logger.Printf{Logger: log})
	return &Service{
		client:   client,
		schedule: schedule,
		log:      log,
		cronRunner: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLog),
			cron.WithChain(
				cron.SkipIfStillRunning(cronLog),
				cron.Recover(cronLog),
			),
		),
	}
}

// Start registers the follow-up job and starts the cron runner.
func (s *Service) Start() error {
	id, err := s.cronRunner.AddFunc(s.schedule, s.runFollowUps)
	if err != nil {
		return fmt.Errorf("invalid follow-up schedule %q: %w", s.schedule, err)
	}
	s.entryID = id
	s.cronRunner.Start()
	s.log.Info("Scheduler started", "schedule", s.schedule, "next_run", s.cronRunner.Entry(id).Next)
	return nil
}

// Stop waits up to 15 seconds for a running job to finish.
func (s *Service) Stop() {
	ctx := s.cronRunner.Stop()
	select {
	case <-ctx.Done():
		s.log.Info("Cron runner stopped gracefully")
	case <-time.After(15 * time.Second):
		s.log.Warn("Cron runner shutdown timed out")
	}
}

func (s *Service) runFollowUps() {
	res, err := s.client.RunFollowUps(context.Background())
	if err != nil {
		s.log.Error("Follow-up run failed", "error", err)
		return
	}
	s.log.Info("Follow-up run completed",
		"processed", res.Processed,
		"sent", res.Sent,
		"failed", res.Failed,
	)
}
