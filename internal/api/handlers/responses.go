package handlers

import "github.com/oszuidwest/zwfm-mixdown/internal/audio/preview"

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ConcatenationResponse describes a joined WAV when JSON output is requested.
type ConcatenationResponse struct {
	Duration   float64 `json:"duration"`
	SampleRate int     `json:"sample_rate"`
	Size       int     `json:"size"`
}

// PreviewResponse is the preview player state.
type PreviewResponse = preview.Status
