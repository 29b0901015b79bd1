package store

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Neo-sk01/newmatter-sub000/internal/models"
)

const insertBatchSize = 200

// LeadFilter narrows ListLeads. Empty fields match everything.
type LeadFilter struct {
	Status string
	Search string
}

// CreateLead inserts one lead. A second lead with the same non-empty email
// for the company yields ErrDuplicate.
func (s *Store) CreateLead(ctx context.Context, l *models.Lead) error {
	prepareLead(l)
	if l.Email != "" {
		var n int64
		err := s.db.WithContext(ctx).Model(&models.Lead{}).
			Where("company_id = ? AND email = ?", l.CompanyID, l.Email).
			Count(&n).Error
		if err != nil {
			return translate(err, "check lead email")
		}
		if n > 0 {
			return translate(gorm.ErrDuplicatedKey, "create lead")
		}
	}
	return translate(s.db.WithContext(ctx).Create(l).Error, "create lead")
}

// CreateLeads inserts leads for one company in a single transaction. Leads
// whose email already exists for the company, or repeats an earlier lead of
// the same call, are skipped and counted.
func (s *Store) CreateLeads(ctx context.Context, companyID uuid.UUID, leads []models.Lead) (inserted, skipped int, err error) {
	if len(leads) == 0 {
		return 0, 0, nil
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		emails := make([]string, 0, len(leads))
		for _, l := range leads {
			if l.Email != "" {
				emails = append(emails, strings.ToLower(l.Email))
			}
		}

		existing := make(map[string]struct{}, len(emails))
		if len(emails) > 0 {
			var found []string
			err := tx.Model(&models.Lead{}).
				Where("company_id = ? AND email IN ?", companyID, emails).
				Pluck("email", &found).Error
			if err != nil {
				return translate(err, "load existing lead emails")
			}
			for _, e := range found {
				existing[e] = struct{}{}
			}
		}

		batch := make([]models.Lead, 0, len(leads))
		for _, l := range leads {
			l.CompanyID = companyID
			prepareLead(&l)
			if l.Email != "" {
				if _, dup := existing[l.Email]; dup {
					skipped++
					continue
				}
				existing[l.Email] = struct{}{}
			}
			batch = append(batch, l)
		}
		if len(batch) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(batch, insertBatchSize).Error; err != nil {
			return translate(err, "insert leads")
		}
		inserted = len(batch)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return inserted, skipped, nil
}

func prepareLead(l *models.Lead) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.Email = strings.ToLower(strings.TrimSpace(l.Email))
	if l.Status == "" {
		l.Status = models.LeadStatusNew
	}
	if l.CustomFields == nil {
		l.CustomFields = map[string]string{}
	}
	if l.Tags == nil {
		l.Tags = []string{}
	}
}

func (s *Store) GetLead(ctx context.Context, companyID, id uuid.UUID) (*models.Lead, error) {
	var l models.Lead
	err := s.db.WithContext(ctx).First(&l, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		return nil, translate(err, "get lead")
	}
	return &l, nil
}

// ListLeads returns a page of leads, newest first.
func (s *Store) ListLeads(ctx context.Context, companyID uuid.UUID, f LeadFilter, p ListParams) ([]models.Lead, int64, error) {
	scope := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Lead{}).Where("company_id = ?", companyID)
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.Search != "" {
			like := "%" + strings.ToLower(f.Search) + "%"
			q = q.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(company) LIKE ? OR email LIKE ?", like, like, like, like)
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count leads")
	}
	var leads []models.Lead
	err := scope().Order("created_at desc").Limit(p.GetLimit()).Offset(p.GetOffset()).Find(&leads).Error
	if err != nil {
		return nil, 0, translate(err, "list leads")
	}
	return leads, total, nil
}

// UpdateLead saves every column of l.
func (s *Store) UpdateLead(ctx context.Context, l *models.Lead) error {
	res := s.db.WithContext(ctx).Model(l).Where("company_id = ?", l.CompanyID).Select("*").Omit("created_at").Updates(l)
	if res.Error != nil {
		return translate(res.Error, "update lead")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "update lead")
	}
	return nil
}

func (s *Store) DeleteLead(ctx context.Context, companyID, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ? AND company_id = ?", id, companyID).Delete(&models.Enrollment{}).Error; err != nil {
			return translate(err, "delete lead enrollments")
		}
		res := tx.Where("id = ? AND company_id = ?", id, companyID).Delete(&models.Lead{})
		if res.Error != nil {
			return translate(res.Error, "delete lead")
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "delete lead")
		}
		return nil
	})
	return err
}

// OwnedLeadIDs returns the subset of ids that belong to the company.
func (s *Store) OwnedLeadIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var owned []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Lead{}).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Pluck("id", &owned).Error
	if err != nil {
		return nil, translate(err, "load lead ids")
	}
	return owned, nil
}

func (s *Store) SetLeadStatus(ctx context.Context, companyID, id uuid.UUID, status string) error {
	res := s.db.WithContext(ctx).Model(&models.Lead{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Update("status", status)
	if res.Error != nil {
		return translate(res.Error, "set lead status")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "set lead status")
	}
	return nil
}
