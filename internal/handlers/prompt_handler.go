package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"text/template"

	"github.com/gin-gonic/gin"

	"github.com/Neo-sk01/newmatter-sub000/internal/logger"
	"github.com/Neo-sk01/newmatter-sub000/internal/models"
	"github.com/Neo-sk01/newmatter-sub000/internal/store"
)

// CreatePrompt godoc
// @Summary Create a prompt
// @Description The template is a Go text/template rendered against the lead, e.g. "Write to {{.FirstName}} at {{.Company}}".
// @Tags prompts
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param prompt body models.CreatePromptRequest true "Prompt to create"
// @Success 201 {object} models.Prompt
// @Failure 400 {object} models.APIError "VALIDATION_ERROR"
// @Failure 500 {object} models.APIError "INTERNAL_SERVER_ERROR"
// @Router /companies/{company_id}/prompts [post]
func (h *Handler) CreatePrompt(c *gin.Context) {
	var req models.CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}
	if !validTemplate(c, req.Template) {
		return
	}

	company := currentCompany(c)
	prompt := models.Prompt{CompanyID: company.ID, Name: req.Name, Template: req.Template, Tone: req.Tone}
	if err := h.store.CreatePrompt(c.Request.Context(), &prompt); err != nil {
		logger.FromContext(c.Request.Context()).Error("Failed to create prompt", "company_id", company.ID, "error", err)
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to create prompt.", nil)
		return
	}
	h.invalidate(c.Request.Context(), promptsCachePrefix(company.ID))
	RespondWithSuccess(c, http.StatusCreated, prompt)
}

// ListPrompts godoc
// @Summary List prompts
// @Tags prompts
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} models.PaginatedResponse
// @Failure 400 {object} models.APIError "VALIDATION_ERROR"
// @Failure 500 {object} models.APIError "INTERNAL_SERVER_ERROR"
// @Router /companies/{company_id}/prompts [get]
func (h *Handler) ListPrompts(c *gin.Context) {
	params, ok := parseListParams(c)
	if !ok {
		return
	}
	companyID := currentCompany(c).ID
	key := fmt.Sprintf("%s%d:%d", promptsCachePrefix(companyID), params.GetLimit(), params.GetOffset())
	var page struct {
		Prompts []models.Prompt `json:"prompts"`
		Total   int64           `json:"total"`
	}
	err := h.cached(c, key, &page, func() error {
		var err error
		page.Prompts, page.Total, err = h.store.ListPrompts(c.Request.Context(), companyID, params)
		return err
	})
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to list prompts", nil)
		return
	}
	if page.Prompts == nil {
		page.Prompts = []models.Prompt{}
	}
	RespondWithSuccess(c, http.StatusOK, paginated(page.Prompts, page.Total, params))
}

// GetPrompt godoc
// @Summary Get a prompt
// @Tags prompts
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param prompt_id path string true "Prompt ID (UUID)"
// @Success 200 {object} models.Prompt
// @Failure 400 {object} models.APIError "INVALID_ID_FORMAT"
// @Failure 404 {object} models.APIError "PROMPT_NOT_FOUND"
// @Router /companies/{company_id}/prompts/{prompt_id} [get]
func (h *Handler) GetPrompt(c *gin.Context) {
	prompt, ok := h.loadPrompt(c)
	if !ok {
		return
	}
	RespondWithSuccess(c, http.StatusOK, prompt)
}

// UpdatePrompt godoc
// @Summary Update a prompt
// @Tags prompts
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param prompt_id path string true "Prompt ID (UUID)"
// @Param prompt body models.UpdatePromptRequest true "Fields to change"
// @Success 200 {object} models.Prompt
// @Failure 400 {object} models.APIError "VALIDATION_ERROR"
// @Failure 404 {object} models.APIError "PROMPT_NOT_FOUND"
// @Router /companies/{company_id}/prompts/{prompt_id} [patch]
func (h *Handler) UpdatePrompt(c *gin.Context) {
	prompt, ok := h.loadPrompt(c)
	if !ok {
		return
	}
	var req models.UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}
	if req.Name != nil {
		prompt.Name = *req.Name
	}
	if req.Template != nil {
		if !validTemplate(c, *req.Template) {
			return
		}
		prompt.Template = *req.Template
	}
	if req.Tone != nil {
		prompt.Tone = *req.Tone
	}

	if err := h.store.UpdatePrompt(c.Request.Context(), prompt); err != nil {
		h.promptStoreError(c, err, "Failed to update prompt")
		return
	}
	h.invalidate(c.Request.Context(), promptsCachePrefix(prompt.CompanyID))
	RespondWithSuccess(c, http.StatusOK, prompt)
}

// DeletePrompt godoc
// @Summary Delete a prompt
// @Tags prompts
// @Param company_id path string true "Company ID (UUID)"
// @Param prompt_id path string true "Prompt ID (UUID)"
// @Success 204 "No Content"
// @Failure 404 {object} models.APIError "PROMPT_NOT_FOUND"
// @Router /companies/{company_id}/prompts/{prompt_id} [delete]
func (h *Handler) DeletePrompt(c *gin.Context) {
	id, ok := parseIDParam(c, "prompt_id", "prompt ID")
	if !ok {
		return
	}
	companyID := currentCompany(c).ID
	if err := h.store.DeletePrompt(c.Request.Context(), companyID, id); err != nil {
		h.promptStoreError(c, err, "Failed to delete prompt")
		return
	}
	h.invalidate(c.Request.Context(), promptsCachePrefix(companyID))
	RespondWithSuccess(c, http.StatusNoContent, nil)
}

func (h *Handler) loadPrompt(c *gin.Context) (*models.Prompt, bool) {
	id, ok := parseIDParam(c, "prompt_id", "prompt ID")
	if !ok {
		return nil, false
	}
	prompt, err := h.store.GetPrompt(c.Request.Context(), currentCompany(c).ID, id)
	if err != nil {
		h.promptStoreError(c, err, "Failed to load prompt")
		return nil, false
	}
	return prompt, true
}

func (h *Handler) promptStoreError(c *gin.Context, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		RespondWithError(c, http.StatusNotFound, models.ErrorCodePromptNotFound, "Prompt not found", gin.H{"id": c.Param("prompt_id")})
		return
	}
	logger.FromContext(c.Request.Context()).Error(msg, "error", err)
	RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, msg, nil)
}

// validTemplate rejects templates that would fail at draft time.
func validTemplate(c *gin.Context, text string) bool {
	if _, err := template.New("prompt").Option("missingkey=zero").Parse(text); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid prompt template", gin.H{"reason": err.Error()})
		return false
	}
	return true
}
