package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Neo-sk01/newmatter-sub000/internal/logger"
	"github.com/Neo-sk01/newmatter-sub000/internal/models"
	"github.com/Neo-sk01/newmatter-sub000/internal/store"
)

// CreateLead godoc
// @Summary Create a lead
// @Tags leads
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param lead body models.CreateLeadRequest true "Lead to create"
// @Success 201 {object} models.Lead
// @Failure 400 {object} models.APIError "VALIDATION_ERROR"
// @Failure 404 {object} models.APIError "COMPANY_NOT_FOUND"
// @Failure 409 {object} models.APIError "DUPLICATE_EMAIL"
// @Failure 500 {object} models.APIError "INTERNAL_SERVER_ERROR"
// @Router /companies/{company_id}/leads [post]
func (h *Handler) CreateLead(c *gin.Context) {
	var req models.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}

	company := currentCompany(c)
	lead := models.Lead{
		CompanyID:    company.ID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Company:      req.Company,
		Email:        req.Email,
		Title:        req.Title,
		Website:      req.Website,
		LinkedIn:     req.LinkedIn,
		Phone:        req.Phone,
		Location:     req.Location,
		Industry:     req.Industry,
		Notes:        req.Notes,
		Source:       "manual",
		CustomFields: req.CustomFields,
		Tags:         req.Tags,
	}
	if err := h.store.CreateLead(c.Request.Context(), &lead); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			RespondWithError(c, http.StatusConflict, models.ErrorCodeDuplicateEmail, "A lead with this email already exists.", gin.H{"email": lead.Email})
			return
		}
		logger.FromContext(c.Request.Context()).Error("Failed to create lead", "company_id", company.ID, "error", err)
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to create lead.", nil)
		return
	}
	h.invalidate(c.Request.Context(), leadsCachePrefix(company.ID))
	RespondWithSuccess(c, http.StatusCreated, lead)
}

// ListLeads godoc
// @Summary List leads
// @Description Newest first. search matches names, company and email.
// @Tags leads
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param status query string false "new, contacted or replied"
// @Param search query string false "Case-insensitive substring"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} models.PaginatedResponse
// @Failure 400 {object} models.APIError "VALIDATION_ERROR"
// @Failure 500 {object} models.APIError "INTERNAL_SERVER_ERROR"
// @Router /companies/{company_id}/leads [get]
func (h *Handler) ListLeads(c *gin.Context) {
	params, ok := parseListParams(c)
	if !ok {
		return
	}
	filter := store.LeadFilter{
		Status: c.Query("status"),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if filter.Status != "" && !models.ValidLeadStatuses[filter.Status] {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid status filter.", gin.H{"status": filter.Status})
		return
	}

	companyID := currentCompany(c).ID
	key := fmt.Sprintf("%s%s:%s:%d:%d", leadsCachePrefix(companyID), filter.Status, filter.Search, params.GetLimit(), params.GetOffset())
	var page struct {
		Leads []models.Lead `json:"leads"`
		Total int64         `json:"total"`
	}
	err := h.cached(c, key, &page, func() error {
		var err error
		page.Leads, page.Total, err = h.store.ListLeads(c.Request.Context(), companyID, filter, params)
		return err
	})
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("Failed to list leads", "company_id", companyID, "error", err)
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to list leads", nil)
		return
	}
	if page.Leads == nil {
		page.Leads = []models.Lead{}
	}
	RespondWithSuccess(c, http.StatusOK, paginated(page.Leads, page.Total, params))
}

// GetLead godoc
// @Summary Get a lead
// @Tags leads
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param lead_id path string true "Lead ID (UUID)"
// @Success 200 {object} models.Lead
// @Failure 400 {object} models.APIError "INVALID_ID_FORMAT"
// @Failure 404 {object} models.APIError "LEAD_NOT_FOUND"
// @Router /companies/{company_id}/leads/{lead_id} [get]
func (h *Handler) GetLead(c *gin.Context) {
	lead, ok := h.loadLead(c)
	if !ok {
		return
	}
	RespondWithSuccess(c, http.StatusOK, lead)
}

// UpdateLead godoc
// @Summary Update a lead
// @Description Only the fields present in the body are changed.
// @Tags leads
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param lead_id path string true "Lead ID (UUID)"
// @Param lead body models.UpdateLeadRequest true "Fields to change"
// @Success 200 {object} models.Lead
// @Failure 400 {object} models.APIError "VALIDATION_ERROR"
// @Failure 404 {object} models.APIError "LEAD_NOT_FOUND"
// @Failure 500 {object} models.APIError "INTERNAL_SERVER_ERROR"
// @Router /companies/{company_id}/leads/{lead_id} [patch]
func (h *Handler) UpdateLead(c *gin.Context) {
	lead, ok := h.loadLead(c)
	if !ok {
		return
	}
	var req models.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}

	if req.FirstName != nil {
		lead.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		lead.LastName = *req.LastName
	}
	if req.Company != nil {
		lead.Company = *req.Company
	}
	if req.Title != nil {
		lead.Title = *req.Title
	}
	if req.Phone != nil {
		lead.Phone = *req.Phone
	}
	if req.Notes != nil {
		lead.Notes = *req.Notes
	}
	if req.Status != nil {
		lead.Status = *req.Status
	}
	if req.Tags != nil {
		lead.Tags = *req.Tags
	}

	if err := h.store.UpdateLead(c.Request.Context(), lead); err != nil {
		h.leadStoreError(c, err, "Failed to update lead")
		return
	}
	h.invalidate(c.Request.Context(), leadsCachePrefix(lead.CompanyID))
	RespondWithSuccess(c, http.StatusOK, lead)
}

// DeleteLead godoc
// @Summary Delete a lead
// @Description Also removes the lead's sequence enrollments.
// @Tags leads
// @Param company_id path string true "Company ID (UUID)"
// @Param lead_id path string true "Lead ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} models.APIError "INVALID_ID_FORMAT"
// @Failure 404 {object} models.APIError "LEAD_NOT_FOUND"
// @Failure 500 {object} models.APIError "INTERNAL_SERVER_ERROR"
// @Router /companies/{company_id}/leads/{lead_id} [delete]
func (h *Handler) DeleteLead(c *gin.Context) {
	id, ok := parseIDParam(c, "lead_id", "lead ID")
	if !ok {
		return
	}
	companyID := currentCompany(c).ID
	if err := h.store.DeleteLead(c.Request.Context(), companyID, id); err != nil {
		h.leadStoreError(c, err, "Failed to delete lead")
		return
	}
	h.invalidate(c.Request.Context(), leadsCachePrefix(companyID))
	RespondWithSuccess(c, http.StatusNoContent, nil)
}

// DraftEmail godoc
// @Summary Draft an email for a lead
// @Description Render the prompt against the lead and ask the language model for a subject and body. Nothing is sent.
// @Tags leads
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param lead_id path string true "Lead ID (UUID)"
// @Param request body models.DraftEmailRequest true "Prompt to use"
// @Success 200 {object} models.DraftedEmail
// @Failure 400 {object} models.APIError "VALIDATION_ERROR"
// @Failure 404 {object} models.APIError "LEAD_NOT_FOUND or PROMPT_NOT_FOUND"
// @Failure 502 {object} models.APIError "SERVICE_UNAVAILABLE"
// @Failure 503 {object} models.APIError "LLM_UNAVAILABLE"
// @Router /companies/{company_id}/leads/{lead_id}/draft [post]
func (h *Handler) DraftEmail(c *gin.Context) {
	if h.drafter == nil {
		RespondWithError(c, http.StatusServiceUnavailable, models.ErrorCodeLLMUnavailable, "Email drafting is not configured", nil)
		return
	}
	lead, ok := h.loadLead(c)
	if !ok {
		return
	}
	var req models.DraftEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}

	ctx := c.Request.Context()
	company := currentCompany(c)
	prompt, err := h.store.GetPrompt(ctx, company.ID, req.PromptID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(c, http.StatusNotFound, models.ErrorCodePromptNotFound, "Prompt not found", gin.H{"id": req.PromptID})
			return
		}
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to load prompt", nil)
		return
	}

	draft, err := h.drafter.DraftEmail(ctx, *prompt, *lead, company.Name)
	if err != nil {
		logger.FromContext(ctx).Warn("Email draft failed", "lead_id", lead.ID, "prompt_id", prompt.ID, "error", err)
		RespondWithError(c, http.StatusBadGateway, models.ErrorCodeServiceUnavailable, "Failed to draft email", gin.H{"reason": err.Error()})
		return
	}
	RespondWithSuccess(c, http.StatusOK, draft)
}

func (h *Handler) loadLead(c *gin.Context) (*models.Lead, bool) {
	id, ok := parseIDParam(c, "lead_id", "lead ID")
	if !ok {
		return nil, false
	}
	lead, err := h.store.GetLead(c.Request.Context(), currentCompany(c).ID, id)
	if err != nil {
		h.leadStoreError(c, err, "Failed to load lead")
		return nil, false
	}
	return lead, true
}

func (h *Handler) leadStoreError(c *gin.Context, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		RespondWithError(c, http.StatusNotFound, models.ErrorCodeLeadNotFound, "Lead not found", gin.H{"id": c.Param("lead_id")})
		return
	}
	logger.FromContext(c.Request.Context()).Error(msg, "error", err)
	RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, msg, nil)
}
