package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Neo-sk01/newmatter-sub000/internal/logger"
	"github.com/Neo-sk01/newmatter-sub000/internal/models"
	"github.com/Neo-sk01/newmatter-sub000/internal/store"
)

// EnrollLeadsResponse reports the enrollments created by one call. Leads
// already in the sequence are counted, not re-enrolled.
type EnrollLeadsResponse struct {
	Enrolled        []models.Enrollment `json:"enrolled"`
	AlreadyEnrolled int                 `json:"already_enrolled"`
}

// CreateSequence godoc
// @Summary Create a sequence
// @Description Create a sequence with its steps. Sequences are active unless "active": false is sent.
// @Tags sequences
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param sequence body models.CreateSequenceRequest true "Sequence to create"
// @Success 201 {object} models.Sequence
// @Failure 400 {object} models.APIError "VALIDATION_ERROR"
// @Failure 404 {object} models.APIError "PROMPT_NOT_FOUND"
// @Failure 409 {object} models.APIError "CONFLICT_ERROR"
// @Router /companies/{company_id}/sequences [post]
func (h *Handler) CreateSequence(c *gin.Context) {
	var req models.CreateSequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}

	company := currentCompany(c)
	seq := models.Sequence{CompanyID: company.ID, Name: req.Name, Active: true}
	if req.Active != nil {
		seq.Active = *req.Active
	}
	for _, st := range req.Steps {
		if !h.promptOwned(c, company.ID, st.PromptID) {
			return
		}
		seq.Steps = append(seq.Steps, models.SequenceStep{Position: st.Position, DelayDays: st.DelayDays, PromptID: st.PromptID})
	}

	if err := h.store.CreateSequence(c.Request.Context(), &seq); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			RespondWithError(c, http.StatusConflict, models.ErrorCodeConflict, "Two steps share a position.", nil)
			return
		}
		logger.FromContext(c.Request.Context()).Error("Failed to create sequence", "company_id", company.ID, "error", err)
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to create sequence.", nil)
		return
	}
	RespondWithSuccess(c, http.StatusCreated, seq)
}

// ListSequences godoc
// @Summary List sequences
// @Tags sequences
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} models.PaginatedResponse
// @Failure 500 {object} models.APIError "INTERNAL_SERVER_ERROR"
// @Router /companies/{company_id}/sequences [get]
func (h *Handler) ListSequences(c *gin.Context) {
	params, ok := parseListParams(c)
	if !ok {
		return
	}
	seqs, total, err := h.store.ListSequences(c.Request.Context(), currentCompany(c).ID, params)
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to list sequences", nil)
		return
	}
	RespondWithSuccess(c, http.StatusOK, paginated(seqs, total, params))
}

// GetSequence godoc
// @Summary Get a sequence with its steps
// @Tags sequences
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param sequence_id path string true "Sequence ID (UUID)"
// @Success 200 {object} models.Sequence
// @Failure 404 {object} models.APIError "SEQUENCE_NOT_FOUND"
// @Router /companies/{company_id}/sequences/{sequence_id} [get]
func (h *Handler) GetSequence(c *gin.Context) {
	seq, ok := h.loadSequence(c)
	if !ok {
		return
	}
	RespondWithSuccess(c, http.StatusOK, seq)
}

// UpdateSequence godoc
// @Summary Pause or resume a sequence
// @Tags sequences
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param sequence_id path string true "Sequence ID (UUID)"
// @Param request body models.UpdateSequenceRequest true "New state"
// @Success 200 {object} models.Sequence
// @Failure 400 {object} models.APIError "VALIDATION_ERROR"
// @Failure 404 {object} models.APIError "SEQUENCE_NOT_FOUND"
// @Router /companies/{company_id}/sequences/{sequence_id} [patch]
func (h *Handler) UpdateSequence(c *gin.Context) {
	id, ok := parseIDParam(c, "sequence_id", "sequence ID")
	if !ok {
		return
	}
	var req models.UpdateSequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}
	ctx := c.Request.Context()
	companyID := currentCompany(c).ID
	if err := h.store.SetSequenceActive(ctx, companyID, id, *req.Active); err != nil {
		h.sequenceStoreError(c, err, "Failed to update sequence")
		return
	}
	seq, err := h.store.GetSequence(ctx, companyID, id)
	if err != nil {
		h.sequenceStoreError(c, err, "Failed to load sequence")
		return
	}
	RespondWithSuccess(c, http.StatusOK, seq)
}

// DeleteSequence godoc
// @Summary Delete a sequence
// @Description Removes the steps and every enrollment of the sequence.
// @Tags sequences
// @Param company_id path string true "Company ID (UUID)"
// @Param sequence_id path string true "Sequence ID (UUID)"
// @Success 204 "No Content"
// @Failure 404 {object} models.APIError "SEQUENCE_NOT_FOUND"
// @Router /companies/{company_id}/sequences/{sequence_id} [delete]
func (h *Handler) DeleteSequence(c *gin.Context) {
	id, ok := parseIDParam(c, "sequence_id", "sequence ID")
	if !ok {
		return
	}
	if err := h.store.DeleteSequence(c.Request.Context(), currentCompany(c).ID, id); err != nil {
		h.sequenceStoreError(c, err, "Failed to delete sequence")
		return
	}
	RespondWithSuccess(c, http.StatusNoContent, nil)
}

// AddSequenceStep godoc
// @Summary Append a step to a sequence
// @Description Without a position the step goes after the last one.
// @Tags sequences
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param sequence_id path string true "Sequence ID (UUID)"
// @Param step body models.CreateSequenceStepRequest true "Step to add"
// @Success 201 {object} models.SequenceStep
// @Failure 400 {object} models.APIError "VALIDATION_ERROR"
// @Failure 404 {object} models.APIError "SEQUENCE_NOT_FOUND or PROMPT_NOT_FOUND"
// @Failure 409 {object} models.APIError "CONFLICT_ERROR"
// @Router /companies/{company_id}/sequences/{sequence_id}/steps [post]
func (h *Handler) AddSequenceStep(c *gin.Context) {
	seq, ok := h.loadSequence(c)
	if !ok {
		return
	}
	var req models.CreateSequenceStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}
	if !h.promptOwned(c, seq.CompanyID, req.PromptID) {
		return
	}

	step := models.SequenceStep{SequenceID: seq.ID, Position: req.Position, DelayDays: req.DelayDays, PromptID: req.PromptID}
	if err := h.store.AddStep(c.Request.Context(), &step); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			RespondWithError(c, http.StatusConflict, models.ErrorCodeConflict, "A step already uses this position.", gin.H{"position": step.Position})
			return
		}
		logger.FromContext(c.Request.Context()).Error("Failed to add sequence step", "sequence_id", seq.ID, "error", err)
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to add step.", nil)
		return
	}
	RespondWithSuccess(c, http.StatusCreated, step)
}

// EnrollLeads godoc
// @Summary Enroll leads into a sequence
// @Description The first step of each new enrollment is due immediately.
// @Tags sequences
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param sequence_id path string true "Sequence ID (UUID)"
// @Param request body models.EnrollLeadsRequest true "Leads to enroll"
// @Success 201 {object} EnrollLeadsResponse
// @Failure 400 {object} models.APIError "VALIDATION_ERROR"
// @Failure 404 {object} models.APIError "SEQUENCE_NOT_FOUND or LEAD_NOT_FOUND"
// @Router /companies/{company_id}/sequences/{sequence_id}/enrollments [post]
func (h *Handler) EnrollLeads(c *gin.Context) {
	seq, ok := h.loadSequence(c)
	if !ok {
		return
	}
	var req models.EnrollLeadsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}

	ctx := c.Request.Context()
	ids := uniqueIDs(req.LeadIDs)
	owned, err := h.store.OwnedLeadIDs(ctx, seq.CompanyID, ids)
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to load leads", nil)
		return
	}
	if missing := missingIDs(ids, owned); len(missing) > 0 {
		RespondWithError(c, http.StatusNotFound, models.ErrorCodeLeadNotFound, "Some leads do not exist", gin.H{"lead_ids": missing})
		return
	}

	enrolled, err := h.store.EnrollLeads(ctx, seq.CompanyID, seq.ID, ids, h.now())
	if err != nil {
		logger.FromContext(ctx).Error("Failed to enroll leads", "sequence_id", seq.ID, "error", err)
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to enroll leads", nil)
		return
	}
	RespondWithSuccess(c, http.StatusCreated, EnrollLeadsResponse{
		Enrolled:        enrolled,
		AlreadyEnrolled: len(ids) - len(enrolled),
	})
}

// ListEnrollments godoc
// @Summary List the enrollments of a sequence
// @Tags sequences
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param sequence_id path string true "Sequence ID (UUID)"
// @Success 200 {array} models.Enrollment
// @Failure 404 {object} models.APIError "SEQUENCE_NOT_FOUND"
// @Router /companies/{company_id}/sequences/{sequence_id}/enrollments [get]
func (h *Handler) ListEnrollments(c *gin.Context) {
	seq, ok := h.loadSequence(c)
	if !ok {
		return
	}
	enrollments, err := h.store.ListEnrollments(c.Request.Context(), seq.CompanyID, seq.ID)
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to list enrollments", nil)
		return
	}
	if enrollments == nil {
		enrollments = []models.Enrollment{}
	}
	RespondWithSuccess(c, http.StatusOK, enrollments)
}

// StopEnrollment godoc
// @Summary Stop an enrollment
// @Description No further steps are sent for the lead.
// @Tags sequences
// @Param company_id path string true "Company ID (UUID)"
// @Param sequence_id path string true "Sequence ID (UUID)"
// @Param enrollment_id path string true "Enrollment ID (UUID)"
// @Success 204 "No Content"
// @Failure 404 {object} models.APIError "ENROLLMENT_NOT_FOUND"
// @Router /companies/{company_id}/sequences/{sequence_id}/enrollments/{enrollment_id}/stop [post]
func (h *Handler) StopEnrollment(c *gin.Context) {
	if _, ok := parseIDParam(c, "sequence_id", "sequence ID"); !ok {
		return
	}
	id, ok := parseIDParam(c, "enrollment_id", "enrollment ID")
	if !ok {
		return
	}
	if err := h.store.StopEnrollment(c.Request.Context(), currentCompany(c).ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(c, http.StatusNotFound, models.ErrorCodeEnrollmentNotFound, "Enrollment not found", gin.H{"id": id})
			return
		}
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to stop enrollment", nil)
		return
	}
	RespondWithSuccess(c, http.StatusNoContent, nil)
}

// RunFollowUps godoc
// @Summary Send due follow-ups
// @Description Called by the scheduler with the cron secret as a bearer token.
// @Tags followups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} outreach.RunResult
// @Failure 401 {object} models.APIError "UNAUTHORIZED"
// @Failure 503 {object} models.APIError "SERVICE_UNAVAILABLE"
// @Router /followups/run [post]
func (h *Handler) RunFollowUps(c *gin.Context) {
	if h.followUps == nil {
		RespondWithError(c, http.StatusServiceUnavailable, models.ErrorCodeServiceUnavailable, "Follow-ups are not configured", nil)
		return
	}
	ctx := c.Request.Context()
	res, err := h.followUps.ProcessDue(ctx, h.now())
	if err != nil {
		logger.FromContext(ctx).Error("Follow-up run failed", "error", err)
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Follow-up run failed", nil)
		return
	}
	if res.Sent > 0 {
		// lead statuses move to contacted
		h.invalidate(ctx, "leads:")
	}
	RespondWithSuccess(c, http.StatusOK, res)
}

func (h *Handler) loadSequence(c *gin.Context) (*models.Sequence, bool) {
	id, ok := parseIDParam(c, "sequence_id", "sequence ID")
	if !ok {
		return nil, false
	}
	seq, err := h.store.GetSequence(c.Request.Context(), currentCompany(c).ID, id)
	if err != nil {
		h.sequenceStoreError(c, err, "Failed to load sequence")
		return nil, false
	}
	return seq, true
}

func (h *Handler) sequenceStoreError(c *gin.Context, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		RespondWithError(c, http.StatusNotFound, models.ErrorCodeSequenceNotFound, "Sequence not found", gin.H{"id": c.Param("sequence_id")})
		return
	}
	logger.FromContext(c.Request.Context()).Error(msg, "error", err)
	RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, msg, nil)
}

// promptOwned answers 404 unless the prompt belongs to the company.
func (h *Handler) promptOwned(c *gin.Context, companyID, promptID uuid.UUID) bool {
	_, err := h.store.GetPrompt(c.Request.Context(), companyID, promptID)
	if err == nil {
		return true
	}
	if errors.Is(err, store.ErrNotFound) {
		RespondWithError(c, http.StatusNotFound, models.ErrorCodePromptNotFound, "Prompt not found", gin.H{"id": promptID})
	} else {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to load prompt", nil)
	}
	return false
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingIDs(want, have []uuid.UUID) []uuid.UUID {
	found := make(map[uuid.UUID]struct{}, len(have))
	for _, id := range have {
		found[id] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range want {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
