package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record does not exist for the company.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("duplicate record")
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListParams carries pagination for list queries. Out-of-range values fall
// back to the defaults.
type ListParams struct {
	Offset int
	Limit  int
}

func (p ListParams) GetLimit() int {
	switch {
	case p.Limit <= 0:
		return DefaultLimit
	case p.Limit > MaxLimit:
		return MaxLimit
	}
	return p.Limit
}

func (p ListParams) GetOffset() int {
	if p.Offset < 0 {
		return 0
	}
	return p.Offset
}

// Store is the gorm-backed repository for every outreach table.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// translate maps driver errors onto the package sentinels.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	// PostgreSQL error code for unique_violation
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
