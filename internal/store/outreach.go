package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Neo-sk01/newmatter-sub000/internal/models"
)

// --- Prompts ---

func (s *Store) CreatePrompt(ctx context.Context, p *models.Prompt) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return translate(s.db.WithContext(ctx).Create(p).Error, "create prompt")
}

func (s *Store) GetPrompt(ctx context.Context, companyID, id uuid.UUID) (*models.Prompt, error) {
	var p models.Prompt
	if err := s.db.WithContext(ctx).First(&p, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, translate(err, "get prompt")
	}
	return &p, nil
}

func (s *Store) ListPrompts(ctx context.Context, companyID uuid.UUID, params ListParams) ([]models.Prompt, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Prompt{}).Where("company_id = ?", companyID).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count prompts")
	}
	var prompts []models.Prompt
	err := s.db.WithContext(ctx).Where("company_id = ?", companyID).
		Order("name asc").Limit(params.GetLimit()).Offset(params.GetOffset()).
		Find(&prompts).Error
	if err != nil {
		return nil, 0, translate(err, "list prompts")
	}
	return prompts, total, nil
}

func (s *Store) UpdatePrompt(ctx context.Context, p *models.Prompt) error {
	res := s.db.WithContext(ctx).Model(p).Where("company_id = ?", p.CompanyID).
		Select("name", "template", "tone").Updates(p)
	if res.Error != nil {
		return translate(res.Error, "update prompt")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "update prompt")
	}
	return nil
}

func (s *Store) DeletePrompt(ctx context.Context, companyID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ? AND company_id = ?", id, companyID).Delete(&models.Prompt{})
	if res.Error != nil {
		return translate(res.Error, "delete prompt")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "delete prompt")
	}
	return nil
}

// --- Sequences ---

// CreateSequence inserts the sequence and its steps together. Steps without
// a position are numbered in order starting at 1.
func (s *Store) CreateSequence(ctx context.Context, seq *models.Sequence) error {
	if seq.ID == uuid.Nil {
		seq.ID = uuid.New()
	}
	for i := range seq.Steps {
		st := &seq.Steps[i]
		if st.ID == uuid.Nil {
			st.ID = uuid.New()
		}
		st.SequenceID = seq.ID
		if st.Position == 0 {
			st.Position = i + 1
		}
	}
	return translate(s.db.WithContext(ctx).Create(seq).Error, "create sequence")
}

// SetSequenceActive pauses or resumes a sequence. Enrollments of a paused
// sequence stay active but are not sent.
func (s *Store) SetSequenceActive(ctx context.Context, companyID, id uuid.UUID, active bool) error {
	res := s.db.WithContext(ctx).Model(&models.Sequence{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Update("active", active)
	if res.Error != nil {
		return translate(res.Error, "update sequence")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "update sequence")
	}
	return nil
}

// GetSequence loads a sequence with its steps ordered by position.
func (s *Store) GetSequence(ctx context.Context, companyID, id uuid.UUID) (*models.Sequence, error) {
	var seq models.Sequence
	err := s.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&seq, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		return nil, translate(err, "get sequence")
	}
	return &seq, nil
}

func (s *Store) ListSequences(ctx context.Context, companyID uuid.UUID, params ListParams) ([]models.Sequence, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Sequence{}).Where("company_id = ?", companyID).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count sequences")
	}
	var seqs []models.Sequence
	err := s.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("company_id = ?", companyID).
		Order("created_at asc").Limit(params.GetLimit()).Offset(params.GetOffset()).
		Find(&seqs).Error
	if err != nil {
		return nil, 0, translate(err, "list sequences")
	}
	return seqs, total, nil
}

func (s *Store) DeleteSequence(ctx context.Context, companyID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND company_id = ?", id, companyID).Delete(&models.Sequence{})
		if res.Error != nil {
			return translate(res.Error, "delete sequence")
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "delete sequence")
		}
		if err := tx.Where("sequence_id = ?", id).Delete(&models.SequenceStep{}).Error; err != nil {
			return translate(err, "delete sequence steps")
		}
		if err := tx.Where("sequence_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
			return translate(err, "delete sequence enrollments")
		}
		return nil
	})
}

// AddStep appends a step to a sequence. A zero position takes the next free
// slot.
func (s *Store) AddStep(ctx context.Context, step *models.SequenceStep) error {
	if step.ID == uuid.Nil {
		step.ID = uuid.New()
	}
	if step.Position == 0 {
		var maxPos int
		err := s.db.WithContext(ctx).Model(&models.SequenceStep{}).
			Where("sequence_id = ?", step.SequenceID).
			Select("COALESCE(MAX(position), 0)").Scan(&maxPos).Error
		if err != nil {
			return translate(err, "next step position")
		}
		step.Position = maxPos + 1
	}
	return translate(s.db.WithContext(ctx).Create(step).Error, "add sequence step")
}

// --- Enrollments ---

// EnrollLeads starts each lead at the lowest step position, due at now.
// Leads already enrolled in the sequence are left untouched and not returned.
func (s *Store) EnrollLeads(ctx context.Context, companyID, sequenceID uuid.UUID, leadIDs []uuid.UUID, now time.Time) ([]models.Enrollment, error) {
	enrollments := make([]models.Enrollment, 0, len(leadIDs))
	if len(leadIDs) == 0 {
		return enrollments, nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var enrolled []uuid.UUID
		err := tx.Model(&models.Enrollment{}).
			Where("sequence_id = ? AND lead_id IN ?", sequenceID, leadIDs).
			Pluck("lead_id", &enrolled).Error
		if err != nil {
			return translate(err, "load existing enrollments")
		}
		var firstStep int
		err = tx.Model(&models.SequenceStep{}).
			Where("sequence_id = ?", sequenceID).
			Select("COALESCE(MIN(position), 1)").
			Scan(&firstStep).Error
		if err != nil {
			return translate(err, "load first step")
		}
		skip := make(map[uuid.UUID]struct{}, len(enrolled))
		for _, id := range enrolled {
			skip[id] = struct{}{}
		}
		for _, id := range leadIDs {
			if _, ok := skip[id]; ok {
				continue
			}
			skip[id] = struct{}{}
			enrollments = append(enrollments, models.Enrollment{
				ID:          uuid.New(),
				CompanyID:   companyID,
				SequenceID:  sequenceID,
				LeadID:      id,
				CurrentStep: firstStep,
				Status:      models.EnrollmentActive,
				NextRunAt:   now.UTC(),
			})
		}
		if len(enrollments) == 0 {
			return nil
		}
		return translate(tx.Create(&enrollments).Error, "enroll leads")
	})
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (s *Store) ListEnrollments(ctx context.Context, companyID, sequenceID uuid.UUID) ([]models.Enrollment, error) {
	var out []models.Enrollment
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND sequence_id = ?", companyID, sequenceID).
		Order("created_at asc").Find(&out).Error
	if err != nil {
		return nil, translate(err, "list enrollments")
	}
	return out, nil
}

// DueEnrollments returns active enrollments whose next run is at or before
// now, oldest first.
func (s *Store) DueEnrollments(ctx context.Context, now time.Time, limit int) ([]models.Enrollment, error) {
	var out []models.Enrollment
	err := s.db.WithContext(ctx).
		Where("status = ? AND next_run_at <= ?", models.EnrollmentActive, now.UTC()).
		Order("next_run_at asc").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, translate(err, "load due enrollments")
	}
	return out, nil
}

func (s *Store) UpdateEnrollment(ctx context.Context, e *models.Enrollment) error {
	res := s.db.WithContext(ctx).Model(e).
		Select("current_step", "status", "next_run_at", "last_sent_at").Updates(e)
	if res.Error != nil {
		return translate(res.Error, "update enrollment")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "update enrollment")
	}
	return nil
}

// StopEnrollment marks an enrollment stopped so it is never due again.
func (s *Store) StopEnrollment(ctx context.Context, companyID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Update("status", models.EnrollmentStopped)
	if res.Error != nil {
		return translate(res.Error, "stop enrollment")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "stop enrollment")
	}
	return nil
}

// --- Sent emails ---

func (s *Store) RecordSentEmail(ctx context.Context, e *models.SentEmail) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = models.SentEmailQueued
	}
	return translate(s.db.WithContext(ctx).Create(e).Error, "record sent email")
}

func (s *Store) UpdateSentEmailStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := s.db.WithContext(ctx).Model(&models.SentEmail{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translate(res.Error, "update sent email status")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "update sent email status")
	}
	return nil
}

func (s *Store) ListSentEmails(ctx context.Context, companyID uuid.UUID, params ListParams) ([]models.SentEmail, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.SentEmail{}).Where("company_id = ?", companyID).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count sent emails")
	}
	var out []models.SentEmail
	err := s.db.WithContext(ctx).Where("company_id = ?", companyID).
		Order("created_at desc").Limit(params.GetLimit()).Offset(params.GetOffset()).
		Find(&out).Error
	if err != nil {
		return nil, 0, translate(err, "list sent emails")
	}
	return out, total, nil
}

// --- Analytics ---

type statusCount struct {
	Status string
	Count  int64
}

// Analytics counts leads and enrollments for the company and the emails
// recorded since the given time.
func (s *Store) Analytics(ctx context.Context, companyID uuid.UUID, since time.Time) (*models.Analytics, error) {
	a := &models.Analytics{
		LeadsByStatus:  map[string]int64{},
		EmailsByStatus: map[string]int64{},
		Since:          since.UTC(),
	}
	db := s.db.WithContext(ctx)

	var leadCounts []statusCount
	err := db.Model(&models.Lead{}).Select("status, COUNT(*) AS count").
		Where("company_id = ?", companyID).Group("status").Scan(&leadCounts).Error
	if err != nil {
		return nil, translate(err, "count leads by status")
	}
	for _, c := range leadCounts {
		a.LeadsByStatus[c.Status] = c.Count
		a.Leads += c.Count
	}

	err = db.Model(&models.Enrollment{}).
		Where("company_id = ? AND status = ?", companyID, models.EnrollmentActive).
		Count(&a.ActiveEnrollments).Error
	if err != nil {
		return nil, translate(err, "count active enrollments")
	}

	var emailCounts []statusCount
	err = db.Model(&models.SentEmail{}).Select("status, COUNT(*) AS count").
		Where("company_id = ? AND created_at >= ?", companyID, since.UTC()).
		Group("status").Scan(&emailCounts).Error
	if err != nil {
		return nil, translate(err, "count sent emails by status")
	}
	for _, c := range emailCounts {
		a.EmailsByStatus[c.Status] = c.Count
		a.EmailsSent += c.Count
	}
	return a, nil
}
