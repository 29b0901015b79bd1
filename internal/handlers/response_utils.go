package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Neo-sk01/newmatter-sub000/internal/models"
	"github.com/Neo-sk01/newmatter-sub000/internal/store"
)

// RespondWithError sends a standardized JSON error response.
func RespondWithError(c *gin.Context, httpStatus int, appErrorCode string, message string, details interface{}) {
	c.AbortWithStatusJSON(httpStatus, models.APIError{
		Code:    appErrorCode,
		Message: message,
		Details: details,
	})
}

// RespondWithSuccess sends data as JSON, or no body when data is nil.
func RespondWithSuccess(c *gin.Context, httpStatus int, data interface{}) {
	if data != nil {
		c.JSON(httpStatus, data)
	} else {
		c.Status(httpStatus)
	}
}

// respondImportError keeps the import endpoints' {success:false, error} shape.
func respondImportError(c *gin.Context, httpStatus int, message string, fallbackRequired bool) {
	c.AbortWithStatusJSON(httpStatus, models.ImportError{
		Success:          false,
		Error:            message,
		FallbackRequired: fallbackRequired,
	})
}

// parseIDParam reads a UUID path parameter, answering 400 when malformed.
func parseIDParam(c *gin.Context, name, what string) (uuid.UUID, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeInvalidIDFormat, "Invalid ID format for "+what, gin.H{name: raw})
		return uuid.Nil, false
	}
	return id, true
}

// parseListParams reads limit and offset. Out-of-range values are clamped
// by store.ListParams; non-numbers are rejected.
func parseListParams(c *gin.Context) (store.ListParams, bool) {
	limitStr := c.DefaultQuery("limit", strconv.Itoa(store.DefaultLimit))
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid limit parameter: not a number.", gin.H{"limit": limitStr})
		return store.ListParams{}, false
	}
	offsetStr := c.DefaultQuery("offset", "0")
	offset, err := strconv.Atoi(offsetStr)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid offset parameter: not a number.", gin.H{"offset": offsetStr})
		return store.ListParams{}, false
	}
	return store.ListParams{Limit: limit, Offset: offset}, true
}

func paginated(data interface{}, total int64, p store.ListParams) models.PaginatedResponse {
	return models.PaginatedResponse{
		Data:   data,
		Total:  total,
		Limit:  p.GetLimit(),
		Offset: p.GetOffset(),
	}
}
