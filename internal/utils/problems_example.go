// This file contains example JSON responses for RFC 9457 Problem Details
// These are included for documentation purposes and demonstrate the format

package utils

// Example RFC 9457 Problem Details responses:

/*
// Validation Error (422)
{
  "type": "https://mixdown.api/problems/validation-error",
  "title": "Validation Error",
  "status": 422,
  "detail": "The request contains invalid data",
  "instance": "/api/v1/speech",
  "timestamp": "2026-03-02T10:30:00Z",
  "errors": [
    {
      "field": "text",
      "message": "text cannot be blank"
    }
  ]
}

// Unprocessable Audio (422)
{
  "type": "https://mixdown.api/problems/unprocessable-audio",
  "title": "Unprocessable Audio",
  "status": 422,
  "detail": "Audio could not be decoded: background.mp3",
  "instance": "/api/v1/mixes",
  "timestamp": "2026-03-02T10:30:00Z"
}

// Resource Not Found (404)
{
  "type": "https://mixdown.api/problems/resource-not-found",
  "title": "Resource Not Found",
  "status": 404,
  "detail": "Mix not found",
  "instance": "/api/v1/mixes/999",
  "timestamp": "2026-03-02T10:30:00Z"
}

// Conflict (409)
{
  "type": "https://mixdown.api/problems/conflict",
  "title": "Conflict",
  "status": 409,
  "detail": "Mix is rendering, not ready",
  "instance": "/api/v1/mixes/12/audio",
  "timestamp": "2026-03-02T10:30:00Z"
}

// Service Unavailable (503)
{
  "type": "https://mixdown.api/problems/service-unavailable",
  "title": "Service Unavailable",
  "status": 503,
  "detail": "Speech synthesis is not configured",
  "instance": "/api/v1/speech",
  "timestamp": "2026-03-02T10:30:00Z",
  "trace_id": "req-12345-67890"
}
*/
