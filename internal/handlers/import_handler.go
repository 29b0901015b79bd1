package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Neo-sk01/newmatter-sub000/internal/importer"
	"github.com/Neo-sk01/newmatter-sub000/internal/logger"
	"github.com/Neo-sk01/newmatter-sub000/internal/normalizer"
)

// ParseImport godoc
// @Summary Parse a CSV file
// @Description Parse CSV text sent as a multipart "file" field, as a JSON {"contents": "..."} body, or as a raw text/csv body.
// @Tags imports
// @Accept multipart/form-data,json,text/csv
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param file formData file false "CSV file"
// @Success 200 {object} importer.ParseResponse
// @Failure 400 {object} models.ImportError
// @Failure 413 {object} models.ImportError
// @Router /companies/{company_id}/imports/parse [post]
func (h *Handler) ParseImport(c *gin.Context) {
	contents, err := h.readUpload(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondImportError(c, http.StatusRequestEntityTooLarge, "File is too large", false)
			return
		}
		respondImportError(c, http.StatusBadRequest, err.Error(), false)
		return
	}

	resp, err := h.importer.ParseCSV(contents)
	if err != nil {
		h.importFailure(c, err)
		return
	}
	RespondWithSuccess(c, http.StatusOK, resp)
}

func (h *Handler) readUpload(c *gin.Context) (string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	contentType := c.ContentType()

	switch {
	case strings.HasPrefix(contentType, "multipart/"):
		fh, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return "", err
			}
			return "", errors.New("missing multipart field \"file\"")
		}
		f, err := fh.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		raw, err := io.ReadAll(f)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	case contentType == gin.MIMEJSON:
		var req importer.ParseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return "", err
			}
			return "", errors.New("invalid request payload: " + err.Error())
		}
		return req.Contents, nil
	default:
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}

// AnalyzeImport godoc
// @Summary Map and normalize parsed CSV rows
// @Description Resolve a column mapping (caller-supplied, AI-suggested or heuristic), normalize every row into a lead and report data quality.
// @Tags imports
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param request body importer.ImportRequest true "Parsed file"
// @Success 200 {object} importer.ImportResponse
// @Failure 400 {object} models.ImportError
// @Failure 500 {object} models.ImportError
// @Router /companies/{company_id}/imports/analyze [post]
func (h *Handler) AnalyzeImport(c *gin.Context) {
	var req importer.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondImportError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), false)
		return
	}
	resp, err := h.importer.Analyze(c.Request.Context(), req)
	if err != nil {
		h.importFailure(c, err)
		return
	}
	RespondWithSuccess(c, http.StatusOK, resp)
}

// SuggestMapping godoc
// @Summary Ask the language model for a column mapping
// @Description Returns fallbackRequired=true when no model is configured or the model fails; the client then uses the heuristic mapping.
// @Tags imports
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param request body importer.SuggestRequest true "Header and sample rows"
// @Success 200 {object} importer.SuggestResponse
// @Failure 400 {object} models.ImportError
// @Failure 502 {object} models.ImportError
// @Failure 503 {object} models.ImportError
// @Router /companies/{company_id}/imports/suggest-mapping [post]
func (h *Handler) SuggestMapping(c *gin.Context) {
	var req importer.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondImportError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), false)
		return
	}
	resp, err := h.importer.SuggestMapping(c.Request.Context(), req)
	switch {
	case err == nil:
		RespondWithSuccess(c, http.StatusOK, resp)
	case errors.Is(err, importer.ErrSuggesterUnavailable):
		respondImportError(c, http.StatusServiceUnavailable, "AI mapping service not configured", true)
	case isInputError(err):
		respondImportError(c, http.StatusBadRequest, err.Error(), false)
	default:
		logger.FromContext(c.Request.Context()).Warn("Mapping suggestion failed", "error", err)
		respondImportError(c, http.StatusBadGateway, "AI mapping failed", true)
	}
}

// CommitImport godoc
// @Summary Save reviewed leads
// @Description Persist normalized leads for the company. Leads whose email already exists are skipped.
// @Tags imports
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID (UUID)"
// @Param request body importer.CommitRequest true "Leads to save"
// @Success 200 {object} importer.CommitResponse
// @Failure 400 {object} models.ImportError
// @Failure 500 {object} models.ImportError
// @Router /companies/{company_id}/imports/commit [post]
func (h *Handler) CommitImport(c *gin.Context) {
	var req importer.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondImportError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), false)
		return
	}
	company := currentCompany(c)
	resp, err := h.importer.Commit(c.Request.Context(), company.ID, req)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("Failed to commit leads", "company_id", company.ID, "error", err)
		respondImportError(c, http.StatusInternalServerError, "Failed to save leads", false)
		return
	}
	h.invalidate(c.Request.Context(), leadsCachePrefix(company.ID))
	RespondWithSuccess(c, http.StatusOK, resp)
}

func isInputError(err error) bool {
	var inputErr *normalizer.InputError
	return errors.As(err, &inputErr)
}

// importFailure maps import service errors onto the import error body.
func (h *Handler) importFailure(c *gin.Context, err error) {
	switch {
	case isInputError(err):
		respondImportError(c, http.StatusBadRequest, err.Error(), false)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.FromContext(c.Request.Context()).Warn("Import cancelled", "error", err)
		respondImportError(c, http.StatusServiceUnavailable, "Request cancelled", false)
	default:
		logger.FromContext(c.Request.Context()).Error("Import failed", "error", err)
		respondImportError(c, http.StatusInternalServerError, "Failed to process CSV data", false)
	}
}
