package utils

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// GetIDParam extracts and validates the :id parameter. It responds with 400 when invalid.
func GetIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ProblemBadRequest(c, "Invalid ID parameter")
		return 0, false
	}
	return id, true
}

// GetPagination extracts limit and offset from query parameters
func GetPagination(c *gin.Context) (limit, offset int) {
	limit = 20 // default
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	if o, err := strconv.Atoi(c.Query("offset")); err == nil && o >= 0 {
		offset = o
	}
	return
}

// BindAndValidate binds a JSON body and responds with 422 listing each invalid field.
func BindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		ProblemValidationError(c, "The request contains invalid data", FormatValidationErrors(err))
		return false
	}
	return true
}

// FormatValidationErrors converts validation errors to developer-friendly messages
func FormatValidationErrors(err error) []ValidationError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []ValidationError{{Field: "body", Message: "Invalid JSON format"}}
	}

	out := make([]ValidationError, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		param := e.Param()

		var msg string
		switch e.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", field)
		case "notblank":
			msg = fmt.Sprintf("%s cannot be blank", field)
		case "min":
			msg = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			msg = fmt.Sprintf("%s cannot exceed %s", field, param)
		case "gte":
			msg = fmt.Sprintf("%s must be at least %s", field, param)
		case "lte":
			msg = fmt.Sprintf("%s must be at most %s", field, param)
		case "oneof":
			msg = fmt.Sprintf("%s must be one of: %s", field, param)
		case "asset_category":
			msg = fmt.Sprintf("%s must be background or effect", field)
		default:
			msg = fmt.Sprintf("%s failed validation (%s)", field, e.Tag())
		}
		out = append(out, ValidationError{Field: field, Message: msg})
	}
	return out
}
