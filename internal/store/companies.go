package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/Neo-sk01/newmatter-sub000/internal/models"
)

func (s *Store) CreateCompany(ctx context.Context, c *models.Company) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return translate(s.db.WithContext(ctx).Create(c).Error, "create company")
}

func (s *Store) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var c models.Company
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get company")
	}
	return &c, nil
}

func (s *Store) ListCompanies(ctx context.Context, p ListParams) ([]models.Company, int64, error) {
	var (
		companies []models.Company
		total     int64
	)
	if err := s.db.WithContext(ctx).Model(&models.Company{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count companies")
	}
	if err := s.db.WithContext(ctx).Order("created_at asc").Limit(p.GetLimit()).Offset(p.GetOffset()).Find(&companies).Error; err != nil {
		return nil, 0, translate(err, "list companies")
	}
	return companies, total, nil
}
