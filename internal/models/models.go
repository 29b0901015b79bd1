package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead statuses.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusReplied   = "replied"
)

// Enrollment statuses.
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentStopped   = "stopped"
)

// Sent email statuses.
const (
	SentEmailQueued = "queued"
	SentEmailSent   = "sent"
	SentEmailFailed = "failed"
)

// ValidLeadStatuses lists the statuses a lead may be moved to through the API.
var ValidLeadStatuses = map[string]bool{
	LeadStatusNew:       true,
	LeadStatusContacted: true,
	LeadStatusReplied:   true,
}

// Company is the tenant every other record belongs to.
// @Description Company is the tenant every lead, prompt and sequence belongs to.
type Company struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;unique"`
	Domain    string    `json:"domain,omitempty" gorm:"type:varchar(255)"`
	FromEmail string    `json:"from_email,omitempty" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Lead is a persisted prospect. Email is unique per company when present.
// @Description Lead is a persisted prospect.
type Lead struct {
	ID           uuid.UUID         `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID    uuid.UUID         `json:"company_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_leads_company_email,where:email <> ''"`
	FirstName    string            `json:"first_name" gorm:"type:varchar(255)"`
	LastName     string            `json:"last_name" gorm:"type:varchar(255)"`
	Company      string            `json:"company" gorm:"type:varchar(255)"`
	Email        string            `json:"email" gorm:"type:varchar(320);uniqueIndex:idx_leads_company_email,where:email <> ''"`
	Title        string            `json:"title" gorm:"type:varchar(255)"`
	Website      string            `json:"website" gorm:"type:text"`
	LinkedIn     string            `json:"linkedin" gorm:"column:linkedin;type:text"`
	Phone        string            `json:"phone" gorm:"type:varchar(64)"`
	Location     string            `json:"location" gorm:"type:varchar(255)"`
	Industry     string            `json:"industry" gorm:"type:varchar(255)"`
	Department   string            `json:"department,omitempty" gorm:"type:varchar(255)"`
	Twitter      string            `json:"twitter,omitempty" gorm:"type:varchar(255)"`
	CompanySize  string            `json:"company_size,omitempty" gorm:"type:varchar(64)"`
	Revenue      string            `json:"revenue,omitempty" gorm:"type:varchar(64)"`
	Notes        string            `json:"notes,omitempty" gorm:"type:text"`
	Source       string            `json:"source,omitempty" gorm:"type:varchar(255)"`
	CustomFields map[string]string `json:"custom_fields" gorm:"type:text;serializer:json"`
	Tags         []string          `json:"tags" gorm:"type:text;serializer:json"`
	Status       string            `json:"status" gorm:"type:varchar(32);not null;default:'new'"`
	CreatedAt    time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

// FullName joins the non-empty name parts.
func (l Lead) FullName() string {
	switch {
	case l.FirstName == "":
		return l.LastName
	case l.LastName == "":
		return l.FirstName
	}
	return l.FirstName + " " + l.LastName
}

// Prompt is a reusable email-generation template. Template is rendered with
// text/template against the lead.
// @Description Prompt is a reusable email-generation template.
type Prompt struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Template  string    `json:"template" gorm:"type:text;not null"`
	Tone      string    `json:"tone,omitempty" gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Sequence is an ordered list of follow-up steps.
// @Description Sequence is an ordered list of follow-up steps.
type Sequence struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID uuid.UUID      `json:"company_id" gorm:"type:uuid;not null;index"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null"`
	Active    bool           `json:"active" gorm:"not null"`
	Steps     []SequenceStep `json:"steps,omitempty" gorm:"foreignKey:SequenceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// SequenceStep is one email of a sequence, sent DelayDays after the previous one.
// @Description SequenceStep is one email of a sequence.
type SequenceStep struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	SequenceID uuid.UUID `json:"sequence_id" gorm:"type:uuid;not null;uniqueIndex:idx_sequence_step_position"`
	Position   int       `json:"position" gorm:"not null;uniqueIndex:idx_sequence_step_position"`
	DelayDays  int       `json:"delay_days" gorm:"not null;default:0"`
	PromptID   uuid.UUID `json:"prompt_id" gorm:"type:uuid;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Enrollment tracks one lead's progress through a sequence.
// @Description Enrollment tracks one lead's progress through a sequence.
type Enrollment struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID   uuid.UUID  `json:"company_id" gorm:"type:uuid;not null;index"`
	SequenceID  uuid.UUID  `json:"sequence_id" gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_lead_sequence"`
	LeadID      uuid.UUID  `json:"lead_id" gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_lead_sequence"`
	CurrentStep int        `json:"current_step" gorm:"not null;default:0"`
	Status      string     `json:"status" gorm:"type:varchar(32);not null;index"`
	NextRunAt   time.Time  `json:"next_run_at" gorm:"index"`
	LastSentAt  *time.Time `json:"last_sent_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// SentEmail records every drafted email handed to the mailer.
// @Description SentEmail records an email handed to the mailer.
type SentEmail struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID    uuid.UUID  `json:"company_id" gorm:"type:uuid;not null;index"`
	LeadID       uuid.UUID  `json:"lead_id" gorm:"type:uuid;not null;index"`
	EnrollmentID *uuid.UUID `json:"enrollment_id,omitempty" gorm:"type:uuid"`
	StepPosition int        `json:"step_position"`
	ToEmail      string     `json:"to_email" gorm:"type:varchar(320);not null"`
	Subject      string     `json:"subject" gorm:"type:text"`
	Body         string     `json:"body" gorm:"type:text"`
	Status       string     `json:"status" gorm:"type:varchar(32);not null"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

// CreateCompanyRequest defines the request payload for creating a company.
type CreateCompanyRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=255"`
	Domain    string `json:"domain,omitempty" binding:"max=255"`
	FromEmail string `json:"from_email,omitempty" binding:"omitempty,email"`
}

// CreateLeadRequest defines the request payload for creating a single lead.
type CreateLeadRequest struct {
	FirstName    string            `json:"first_name" binding:"max=255"`
	LastName     string            `json:"last_name" binding:"max=255"`
	Company      string            `json:"company" binding:"max=255"`
	Email        string            `json:"email" binding:"omitempty,email"`
	Title        string            `json:"title" binding:"max=255"`
	Website      string            `json:"website"`
	LinkedIn     string            `json:"linkedin"`
	Phone        string            `json:"phone" binding:"max=64"`
	Location     string            `json:"location" binding:"max=255"`
	Industry     string            `json:"industry" binding:"max=255"`
	Notes        string            `json:"notes"`
	CustomFields map[string]string `json:"custom_fields"`
	Tags         []string          `json:"tags"`
}

// UpdateLeadRequest defines the request payload for updating a lead.
type UpdateLeadRequest struct {
	FirstName *string   `json:"first_name,omitempty" binding:"omitempty,max=255"`
	LastName  *string   `json:"last_name,omitempty" binding:"omitempty,max=255"`
	Company   *string   `json:"company,omitempty" binding:"omitempty,max=255"`
	Title     *string   `json:"title,omitempty" binding:"omitempty,max=255"`
	Phone     *string   `json:"phone,omitempty" binding:"omitempty,max=64"`
	Notes     *string   `json:"notes,omitempty"`
	Status    *string   `json:"status,omitempty" binding:"omitempty,oneof=new contacted replied"`
	Tags      *[]string `json:"tags,omitempty"`
}

// CreatePromptRequest defines the request payload for creating a prompt.
type CreatePromptRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=255"`
	Template string `json:"template" binding:"required,min=1"`
	Tone     string `json:"tone,omitempty" binding:"max=64"`
}

// UpdatePromptRequest defines the request payload for updating a prompt.
type UpdatePromptRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	Template *string `json:"template,omitempty" binding:"omitempty,min=1"`
	Tone     *string `json:"tone,omitempty" binding:"omitempty,max=64"`
}

// CreateSequenceRequest defines the request payload for creating a sequence.
type CreateSequenceRequest struct {
	Name   string                      `json:"name" binding:"required,min=1,max=255"`
	Active *bool                       `json:"active,omitempty"`
	Steps  []CreateSequenceStepRequest `json:"steps,omitempty" binding:"dive"`
}

// CreateSequenceStepRequest defines one step of a sequence. Position defaults
// to the next free slot.
type CreateSequenceStepRequest struct {
	Position  int       `json:"position,omitempty" binding:"min=0"`
	DelayDays int       `json:"delay_days" binding:"min=0,max=365"`
	PromptID  uuid.UUID `json:"prompt_id" binding:"required"`
}

// UpdateSequenceRequest pauses or resumes a sequence.
type UpdateSequenceRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// EnrollLeadsRequest enrolls leads into a sequence. The first step is due
// immediately.
type EnrollLeadsRequest struct {
	LeadIDs []uuid.UUID `json:"lead_ids" binding:"required,min=1"`
}

// DraftEmailRequest asks for an email drafted from a prompt for one lead.
type DraftEmailRequest struct {
	PromptID uuid.UUID `json:"prompt_id" binding:"required"`
}

// DraftedEmail is the generated subject and body.
type DraftedEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Analytics summarises outreach activity for a company.
// @Description Analytics summarises outreach activity for a company.
type Analytics struct {
	Leads             int64            `json:"leads"`
	LeadsByStatus     map[string]int64 `json:"leads_by_status"`
	ActiveEnrollments int64            `json:"active_enrollments"`
	EmailsSent        int64            `json:"emails_sent"`
	EmailsByStatus    map[string]int64 `json:"emails_by_status"`
	Since             time.Time        `json:"since"`
}

// PaginatedResponse wraps list endpoints.
type PaginatedResponse struct {
	Data   interface{} `json:"data"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
