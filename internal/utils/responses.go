package utils

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MessageResponse represents a simple message response (typed alternative to gin.H).
type MessageResponse struct {
	Message string `json:"message"`
}

// Success responds with HTTP 200 OK status and the provided data.
func Success(c *gin.Context, data any) {
	if c == nil {
		return
	}
	c.JSON(http.StatusOK, data)
}

// AcceptedWithLocation responds with HTTP 202 Accepted for a job that is still running
// and points the Location header at the resource to poll.
func AcceptedWithLocation(c *gin.Context, id int64, resourcePath string, data any) {
	if c == nil {
		return
	}
	c.Header("Location", fmt.Sprintf("%s/%d", resourcePath, id))
	c.JSON(http.StatusAccepted, data)
}

// CreatedWithLocation responds with HTTP 201 Created status and sets the Location header per RFC 7231.
// The resourcePath should be the base path (e.g., "/api/v1/mixes"), the ID will be appended.
func CreatedWithLocation(c *gin.Context, id int64, resourcePath string, data any) {
	if c == nil {
		return
	}
	c.Header("Location", fmt.Sprintf("%s/%d", resourcePath, id))
	c.JSON(http.StatusCreated, data)
}

// WAV writes an encoded WAV file as an attachment.
func WAV(c *gin.Context, status int, filename string, data []byte) {
	if c == nil {
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(status, "audio/wav", data)
}

// RFC 9457 Problem Details compatible error response functions.

func sendWithTrace(c *gin.Context, problem *ProblemDetail) {
	if traceID := getTraceID(c); traceID != "" {
		problem.WithTraceID(traceID)
	}
	SendProblem(c, problem)
}

// ProblemValidationError responds with HTTP 422 for input validation failures.
func ProblemValidationError(c *gin.Context, detail string, errors []ValidationError) {
	if c == nil {
		return
	}
	sendWithTrace(c, NewValidationProblem(detail, c.Request.URL.Path, errors))
}

// ProblemNotFound responds with HTTP 404 Not Found.
func ProblemNotFound(c *gin.Context, resource string) {
	if c == nil {
		return
	}
	sendWithTrace(c, NewNotFoundProblem(resource, c.Request.URL.Path))
}

// ProblemNotFoundDetail responds with HTTP 404 Not Found and a specific detail.
func ProblemNotFoundDetail(c *gin.Context, detail string) {
	if c == nil {
		return
	}
	sendWithTrace(c, NewProblemDetail(ProblemTypeResourceNotFound, "Resource Not Found", http.StatusNotFound, detail, c.Request.URL.Path))
}

// ProblemDuplicate responds with HTTP 409 for unique constraint violations.
func ProblemDuplicate(c *gin.Context, resource string) {
	if c == nil {
		return
	}
	sendWithTrace(c, NewDuplicateProblem(resource, c.Request.URL.Path))
}

// ProblemConflict responds with HTTP 409 for resources in the wrong state.
func ProblemConflict(c *gin.Context, detail string) {
	if c == nil {
		return
	}
	sendWithTrace(c, NewConflictProblem(detail, c.Request.URL.Path))
}

// ProblemUnprocessableAudio responds with HTTP 422 for audio that cannot be decoded, mixed or joined.
func ProblemUnprocessableAudio(c *gin.Context, detail string) {
	if c == nil {
		return
	}
	sendWithTrace(c, NewUnprocessableAudioProblem(detail, c.Request.URL.Path))
}

// ProblemUpstream responds with HTTP 502 when an external service fails.
func ProblemUpstream(c *gin.Context, detail string) {
	if c == nil {
		return
	}
	sendWithTrace(c, NewProblemDetail(ProblemTypeUpstreamFailure, "Bad Gateway", http.StatusBadGateway, detail, c.Request.URL.Path))
}

// ProblemServiceUnavailable responds with HTTP 503 for features that are not configured.
func ProblemServiceUnavailable(c *gin.Context, detail string) {
	if c == nil {
		return
	}
	sendWithTrace(c, NewProblemDetail(ProblemTypeServiceUnavailable, "Service Unavailable", http.StatusServiceUnavailable, detail, c.Request.URL.Path))
}

// ProblemInternalServer responds with HTTP 500 Internal Server Error.
func ProblemInternalServer(c *gin.Context, detail string) {
	if c == nil {
		return
	}
	sendWithTrace(c, NewInternalServerProblem(detail, c.Request.URL.Path))
}

// ProblemBadRequest responds with HTTP 400 Bad Request.
func ProblemBadRequest(c *gin.Context, detail string) {
	if c == nil {
		return
	}
	sendWithTrace(c, NewBadRequestProblem(detail, c.Request.URL.Path))
}
