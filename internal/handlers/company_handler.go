package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Neo-sk01/newmatter-sub000/internal/logger"
	"github.com/Neo-sk01/newmatter-sub000/internal/models"
	"github.com/Neo-sk01/newmatter-sub000/internal/store"
)

// defaultAnalyticsWindow is used when no since parameter is given.
const defaultAnalyticsWindow = 30 * 24 * time.Hour

// CreateCompany godoc
// @Summary Create a company
// @Description Create a company (tenant). Leads, prompts and sequences are scoped to it.
// @Tags companies
// @Accept json
// @Produce json
// @Param company body models.CreateCompanyRequest true "Company to create"
// @Success 201 {object} models.Company
// @Failure 400 {object} models.APIError "VALIDATION_ERROR"
// @Failure 409 {object} models.APIError "DUPLICATE_NAME"
// @Failure 500 {object} models.APIError "INTERNAL_SERVER_ERROR"
// @Router /companies [post]
func (h *Handler) CreateCompany(c *gin.Context) {
	var req models.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}

	company := models.Company{Name: req.Name, Domain: req.Domain, FromEmail: req.FromEmail}
	if err := h.store.CreateCompany(c.Request.Context(), &company); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			RespondWithError(c, http.StatusConflict, models.ErrorCodeDuplicateName, "Company with this name already exists.", gin.H{"name": req.Name})
			return
		}
		logger.FromContext(c.Request.Context()).Error("Failed to create company", "error", err)
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to create company.", nil)
		return
	}
	RespondWithSuccess(c, http.StatusCreated, company)
}

// ListCompanies godoc
// @Summary List companies
// @Tags companies
// @Produce json
// @Param limit query int false "Page size (default 10, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} models.PaginatedResponse
// @Failure 400 {object} models.APIError "VALIDATION_ERROR"
// @Failure 500 {object} models.APIError "INTERNAL_SERVER_ERROR"
// @Router /companies [get]
func (h *Handler) ListCompanies(c *gin.Context) {
	params, ok := parseListParams(c)
	if !ok {
		return
	}
	companies, total, err := h.store.ListCompanies(c.Request.Context(), params)
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to list companies", nil)
		return
	}
	RespondWithSuccess(c, http.StatusOK, paginated(companies, total, params))
}

// GetCompany godoc
// @Summary Get a company
// @Tags companies
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Success 200 {object} models.Company
// @Failure 400 {object} models.APIError "INVALID_ID_FORMAT"
// @Failure 404 {object} models.APIError "COMPANY_NOT_FOUND"
// @Router /companies/{company_id} [get]
func (h *Handler) GetCompany(c *gin.Context) {
	RespondWithSuccess(c, http.StatusOK, currentCompany(c))
}

// GetAnalytics godoc
// @Summary Outreach analytics
// @Description Lead and enrollment totals plus the emails recorded since the given time (default: last 30 days).
// @Tags analytics
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param since query string false "RFC 3339 timestamp"
// @Success 200 {object} models.Analytics
// @Failure 400 {object} models.APIError "VALIDATION_ERROR"
// @Failure 404 {object} models.APIError "COMPANY_NOT_FOUND"
// @Failure 500 {object} models.APIError "INTERNAL_SERVER_ERROR"
// @Router /companies/{company_id}/analytics [get]
func (h *Handler) GetAnalytics(c *gin.Context) {
	since := h.now().Add(-defaultAnalyticsWindow)
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid since parameter: expected RFC 3339.", gin.H{"since": raw})
			return
		}
		since = t
	}
	a, err := h.store.Analytics(c.Request.Context(), currentCompany(c).ID, since)
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to compute analytics", nil)
		return
	}
	RespondWithSuccess(c, http.StatusOK, a)
}

// ListSentEmails godoc
// @Summary List sent emails
// @Tags analytics
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} models.PaginatedResponse
// @Failure 404 {object} models.APIError "COMPANY_NOT_FOUND"
// @Failure 500 {object} models.APIError "INTERNAL_SERVER_ERROR"
// @Router /companies/{company_id}/sent-emails [get]
func (h *Handler) ListSentEmails(c *gin.Context) {
	params, ok := parseListParams(c)
	if !ok {
		return
	}
	emails, total, err := h.store.ListSentEmails(c.Request.Context(), currentCompany(c).ID, params)
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to list sent emails", nil)
		return
	}
	RespondWithSuccess(c, http.StatusOK, paginated(emails, total, params))
}
