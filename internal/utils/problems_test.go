package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProblemDetail(t *testing.T) {
	problem := NewProblemDetail(
		ProblemTypeValidationError,
		"Validation Error",
		422,
		"The request contains invalid data",
		"/api/v1/test",
	)

	assert.Equal(t, ProblemTypeValidationError, problem.Type)
	assert.Equal(t, "Validation Error", problem.Title)
	assert.Equal(t, 422, problem.Status)
	assert.Equal(t, "The request contains invalid data", problem.Detail)
	assert.Equal(t, "/api/v1/test", problem.Instance)
	assert.NotEmpty(t, problem.Timestamp)

	// Verify timestamp is valid ISO 8601
	_, err := time.Parse(time.RFC3339, problem.Timestamp)
	assert.NoError(t, err)
}

func TestNewValidationProblem(t *testing.T) {
	errors := []ValidationError{
		{Field: "tts_gain", Message: "tts_gain must be at least 0"},
		{Field: "narration", Message: "narration is required"},
	}

	problem := NewValidationProblem(
		"Multiple validation errors occurred",
		"/api/v1/mixes",
		errors,
	)

	assert.Equal(t, ProblemTypeValidationError, problem.Type)
	assert.Equal(t, "Validation Error", problem.Title)
	assert.Equal(t, 422, problem.Status)
	assert.Equal(t, "Multiple validation errors occurred", problem.Detail)
	assert.Equal(t, "/api/v1/mixes", problem.Instance)
	assert.Len(t, problem.Errors, 2)
	assert.Equal(t, "tts_gain", problem.Errors[0].Field)
	assert.Equal(t, "tts_gain must be at least 0", problem.Errors[0].Message)
}

func TestProblemDetailHelpers(t *testing.T) {
	tests := []struct {
		name           string
		constructor    func() *ProblemDetail
		expectedType   string
		expectedStatus int
	}{
		{
			name: "NotFound",
			constructor: func() *ProblemDetail {
				return NewNotFoundProblem("Mix", "/api/v1/mixes/123")
			},
			expectedType:   ProblemTypeResourceNotFound,
			expectedStatus: 404,
		},
		{
			name: "Duplicate",
			constructor: func() *ProblemDetail {
				return NewDuplicateProblem("Asset name", "/api/v1/assets")
			},
			expectedType:   ProblemTypeDuplicateResource,
			expectedStatus: 409,
		},
		{
			name: "Conflict",
			constructor: func() *ProblemDetail {
				return NewConflictProblem("Mix is rendering, not ready", "/api/v1/mixes/7/audio")
			},
			expectedType:   ProblemTypeConflict,
			expectedStatus: 409,
		},
		{
			name: "UnprocessableAudio",
			constructor: func() *ProblemDetail {
				return NewUnprocessableAudioProblem("Audio could not be decoded: bed.mp3", "/api/v1/mixes")
			},
			expectedType:   ProblemTypeUnprocessableAudio,
			expectedStatus: 422,
		},
		{
			name: "InternalServer",
			constructor: func() *ProblemDetail {
				return NewInternalServerProblem("Database connection failed", "/api/v1/test")
			},
			expectedType:   ProblemTypeInternalServerError,
			expectedStatus: 500,
		},
		{
			name: "BadRequest",
			constructor: func() *ProblemDetail {
				return NewBadRequestProblem("Invalid JSON format", "/api/v1/test")
			},
			expectedType:   ProblemTypeBadRequest,
			expectedStatus: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := tt.constructor()
			assert.Equal(t, tt.expectedType, problem.Type)
			assert.Equal(t, tt.expectedStatus, problem.Status)
			assert.NotEmpty(t, problem.Title)
			assert.NotEmpty(t, problem.Detail)
		})
	}
}

func TestWithTraceID(t *testing.T) {
	problem := NewBadRequestProblem("Test error", "/api/v1/test")
	traceID := "trace-123456"

	problem.WithTraceID(traceID)
	assert.Equal(t, traceID, problem.TraceID)
}

func TestSendProblem(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/test", nil)

	problem := NewValidationProblem("Test validation error", "", []ValidationError{
		{Field: "name", Message: "Name is required"},
	})

	SendProblem(c, problem)

	// Check status code
	assert.Equal(t, 422, w.Code)

	// Check content type
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	// Check response body
	var response ProblemDetail
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, ProblemTypeValidationError, response.Type)
	assert.Equal(t, "Validation Error", response.Title)
	assert.Equal(t, 422, response.Status)
	assert.Equal(t, "/api/v1/test", response.Instance) // Should be set from request path
	assert.Len(t, response.Errors, 1)
}

func TestProblemValidationErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/mixes", nil)

	errors := []ValidationError{
		{Field: "text", Message: "text is required"},
		{Field: "voice_id", Message: "voice_id is required"},
	}

	ProblemValidationError(c, "The request contains invalid data", errors)

	// Verify response
	assert.Equal(t, 422, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var response ProblemDetail
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, ProblemTypeValidationError, response.Type)
	assert.Equal(t, "Validation Error", response.Title)
	assert.Equal(t, 422, response.Status)
	assert.Equal(t, "The request contains invalid data", response.Detail)
	assert.Equal(t, "/api/v1/mixes", response.Instance)
	assert.NotEmpty(t, response.Timestamp)
	assert.Len(t, response.Errors, 2)
}

func TestProblemNotFoundResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/assets/999", nil)

	ProblemNotFound(c, "Asset")

	// Verify response
	assert.Equal(t, 404, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var response ProblemDetail
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, ProblemTypeResourceNotFound, response.Type)
	assert.Equal(t, "Resource Not Found", response.Title)
	assert.Equal(t, 404, response.Status)
	assert.Equal(t, "Asset not found", response.Detail)
	assert.Equal(t, "/api/v1/assets/999", response.Instance)
}

func TestProblemTraceIDFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("DELETE", "/api/v1/preview", nil)
	c.Set("trace_id", "req-42")

	ProblemServiceUnavailable(c, "Preview output is not configured")

	var response ProblemDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 503, response.Status)
	assert.Equal(t, "req-42", response.TraceID)
	assert.Equal(t, ProblemTypeServiceUnavailable, response.Type)
}
