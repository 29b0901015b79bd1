package outreach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Neo-sk01/newmatter-sub000/internal/logger"
	"github.com/Neo-sk01/newmatter-sub000/internal/models"
	"github.com/Neo-sk01/newmatter-sub000/internal/queue"
	"github.com/Neo-sk01/newmatter-sub000/internal/store"
)

const (
	DefaultBatchSize = 50
	// DefaultRetryDelay postpones an enrollment whose step failed so one bad
	// enrollment cannot hold the head of the due queue.
	DefaultRetryDelay = time.Hour
	// pausedDelay is how long an enrollment in an inactive sequence waits
	// before it is looked at again.
	pausedDelay = 24 * time.Hour
)

// Store is the persistence the follow-up run needs.
type Store interface {
	DueEnrollments(ctx context.Context, now time.Time, limit int) ([]models.Enrollment, error)
	UpdateEnrollment(ctx context.Context, e *models.Enrollment) error
	GetSequence(ctx context.Context, companyID, id uuid.UUID) (*models.Sequence, error)
	GetLead(ctx context.Context, companyID, id uuid.UUID) (*models.Lead, error)
	GetPrompt(ctx context.Context, companyID, id uuid.UUID) (*models.Prompt, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	SetLeadStatus(ctx context.Context, companyID, id uuid.UUID, status string) error
	RecordSentEmail(ctx context.Context, e *models.SentEmail) error
	UpdateSentEmailStatus(ctx context.Context, id uuid.UUID, status string) error
}

// Drafter writes the email for one step.
type Drafter interface {
	DraftEmail(ctx context.Context, prompt models.Prompt, lead models.Lead, sender string) (models.DraftedEmail, error)
}

// Publisher hands drafted emails to the mailer.
type Publisher interface {
	PublishSend(ctx context.Context, task queue.SendTask) error
}

// RunResult counts what one ProcessDue call did.
type RunResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Completed int `json:"completed"`
	Stopped   int `json:"stopped"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Service advances sequence enrollments.
type Service struct {
	store      Store
	drafter    Drafter
	publisher  Publisher
	batchSize  int
	retryDelay time.Duration
}

func NewService(s Store, drafter Drafter, publisher Publisher, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{
		store:      s,
		drafter:    drafter,
		publisher:  publisher,
		batchSize:  batchSize,
		retryDelay: DefaultRetryDelay,
	}
}

type outcome int

const (
	outcomeSent outcome = iota
	// outcomeSentLast sent the final step.
	outcomeSentLast
	// outcomeCompleted found no step left to send.
	outcomeCompleted
	outcomeStopped
	outcomeSkipped
	outcomeFailed
)

// ProcessDue sends the current step of every enrollment due at now. A failure
// on one enrollment is logged and counted; only failing to load the batch is
// returned as an error.
func (s *Service) ProcessDue(ctx context.Context, now time.Time) (*RunResult, error) {
	log := logger.FromContext(ctx)
	now = now.UTC()

	due, err := s.store.DueEnrollments(ctx, now, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load due enrollments: %w", err)
	}
	log.Info("Processing due enrollments", "count", len(due))

	res := &RunResult{}
	for i := range due {
		if err := ctx.Err(); err != nil {
			log.Warn("Follow-up run cancelled", "processed", res.Processed, "error", err)
			break
		}
		e := &due[i]
		res.Processed++

		out, err := s.processOne(ctx, e, now)
		switch out {
		case outcomeSent:
			res.Sent++
		case outcomeSentLast:
			res.Sent++
			res.Completed++
		case outcomeCompleted:
			res.Completed++
		case outcomeStopped:
			res.Stopped++
		case outcomeSkipped:
			res.Skipped++
		case outcomeFailed:
			res.Failed++
			log.Error("Follow-up failed", "enrollment_id", e.ID, "step", e.CurrentStep, "error", err)
			s.postpone(ctx, e, now.Add(s.retryDelay))
		}
	}

	log.Info("Follow-up run finished",
		"processed", res.Processed,
		"sent", res.Sent,
		"completed", res.Completed,
		"stopped", res.Stopped,
		"skipped", res.Skipped,
		"failed", res.Failed,
	)
	return res, nil
}

func (s *Service) processOne(ctx context.Context, e *models.Enrollment, now time.Time) (outcome, error) {
	log := logger.FromContext(ctx).With("enrollment_id", e.ID)

	seq, err := s.store.GetSequence(ctx, e.CompanyID, e.SequenceID)
	if errors.Is(err, store.ErrNotFound) {
		return s.stop(ctx, e, "sequence no longer exists")
	}
	if err != nil {
		return outcomeFailed, err
	}
	if !seq.Active {
		log.Debug("Sequence inactive, postponing", "sequence_id", seq.ID)
		s.postpone(ctx, e, now.Add(pausedDelay))
		return outcomeSkipped, nil
	}

	step, next := stepAt(seq.Steps, e.CurrentStep)
	if step == nil {
		e.Status = models.EnrollmentCompleted
		if err := s.store.UpdateEnrollment(ctx, e); err != nil {
			return outcomeFailed, err
		}
		return outcomeCompleted, nil
	}

	lead, err := s.store.GetLead(ctx, e.CompanyID, e.LeadID)
	if errors.Is(err, store.ErrNotFound) {
		return s.stop(ctx, e, "lead no longer exists")
	}
	if err != nil {
		return outcomeFailed, err
	}
	if lead.Status == models.LeadStatusReplied {
		return s.stop(ctx, e, "lead replied")
	}
	if lead.Email == "" {
		return s.stop(ctx, e, "lead has no email")
	}

	prompt, err := s.store.GetPrompt(ctx, e.CompanyID, step.PromptID)
	if err != nil {
		return outcomeFailed, fmt.Errorf("failed to load prompt %s: %w", step.PromptID, err)
	}
	company, err := s.store.GetCompany(ctx, e.CompanyID)
	if err != nil {
		return outcomeFailed, fmt.Errorf("failed to load company: %w", err)
	}

	draft, err := s.drafter.DraftEmail(ctx, *prompt, *lead, company.Name)
	if err != nil {
		return outcomeFailed, fmt.Errorf("failed to draft email: %w", err)
	}

	enrollmentID := e.ID
	sent := &models.SentEmail{
		CompanyID:    e.CompanyID,
		LeadID:       lead.ID,
		EnrollmentID: &enrollmentID,
		StepPosition: step.Position,
		ToEmail:      lead.Email,
		Subject:      draft.Subject,
		Body:         draft.Body,
		Status:       models.SentEmailQueued,
	}
	if err := s.store.RecordSentEmail(ctx, sent); err != nil {
		return outcomeFailed, err
	}

	err = s.publisher.PublishSend(ctx, queue.SendTask{
		SentEmailID: sent.ID.String(),
		CompanyID:   e.CompanyID.String(),
		To:          lead.Email,
		From:        company.FromEmail,
		Subject:     draft.Subject,
		Body:        draft.Body,
	})
	if err != nil {
		if uerr := s.store.UpdateSentEmailStatus(ctx, sent.ID, models.SentEmailFailed); uerr != nil {
			log.Warn("Failed to mark email failed", "sent_email_id", sent.ID, "error", uerr)
		}
		return outcomeFailed, err
	}

	sentAt := now
	e.LastSentAt = &sentAt
	completed := next == nil
	if completed {
		e.Status = models.EnrollmentCompleted
	} else {
		e.CurrentStep = next.Position
		e.NextRunAt = now.Add(time.Duration(next.DelayDays) * 24 * time.Hour)
	}
	if err := s.store.UpdateEnrollment(ctx, e); err != nil {
		// The email is already queued; a retry would send it twice.
		log.Error("Failed to advance enrollment after send", "error", err)
	}

	if lead.Status == models.LeadStatusNew {
		if err := s.store.SetLeadStatus(ctx, e.CompanyID, lead.ID, models.LeadStatusContacted); err != nil {
			log.Warn("Failed to mark lead contacted", "lead_id", lead.ID, "error", err)
		}
	}
	log.Info("Follow-up queued", "lead_id", lead.ID, "step", step.Position, "completed", completed)
	if completed {
		return outcomeSentLast, nil
	}
	return outcomeSent, nil
}

func (s *Service) stop(ctx context.Context, e *models.Enrollment, reason string) (outcome, error) {
	e.Status = models.EnrollmentStopped
	if err := s.store.UpdateEnrollment(ctx, e); err != nil {
		return outcomeFailed, err
	}
	logger.FromContext(ctx).Info("Enrollment stopped", "enrollment_id", e.ID, "reason", reason)
	return outcomeStopped, nil
}

func (s *Service) postpone(ctx context.Context, e *models.Enrollment, until time.Time) {
	e.NextRunAt = until
	if err := s.store.UpdateEnrollment(ctx, e); err != nil {
		logger.FromContext(ctx).Error("Failed to postpone enrollment", "enrollment_id", e.ID, "error", err)
	}
}

// stepAt returns the first step at or after position and the step after
// it. Steps are ordered by position but positions may have gaps.
func stepAt(steps []models.SequenceStep, position int) (current, next *models.SequenceStep) {
	for i := range steps {
		if steps[i].Position < position {
			continue
		}
		if current != nil {
			return current, &steps[i]
		}
		current = &steps[i]
	}
	return current, nil
}
