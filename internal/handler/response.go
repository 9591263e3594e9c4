package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ukaji3/jsonsheet-go/internal/middleware"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates session errors to HTTP status codes and error codes.
// Input and conversion failures carry their own message so the client can show it.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, jsonsheet.ErrImportCancelled):
		return http.StatusConflict, "IMPORT_CANCELLED", "Import cancelled"
	case errors.Is(err, jsonsheet.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, jsonsheet.ErrDecode):
		return http.StatusUnprocessableEntity, "DECODE_ERROR", err.Error()
	case errors.Is(err, jsonsheet.ErrInvalidJSON):
		return http.StatusUnprocessableEntity, "INVALID_JSON", err.Error()
	case errors.Is(err, jsonsheet.ErrConversion):
		return http.StatusInternalServerError, "CONVERSION_FAILED", err.Error()
	case errors.Is(err, jsonsheet.ErrNoWorkbook):
		return http.StatusConflict, "NO_WORKBOOK", "nothing has been converted yet"
	case errors.Is(err, jsonsheet.ErrSheetNotFound):
		return http.StatusNotFound, "SHEET_NOT_FOUND", "sheet not found"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a session error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get(middleware.ContextKeyRequestID)
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
