package models

// MixStatus is the state of an export job.
//
//	idle -> decoding -> rendering -> ready
//	  |         |            |
//	  |         +------------+------> error
//	  +-----------------------------> ready (cached rendering)
type MixStatus string

const (
	MixStatusIdle      MixStatus = "idle"
	MixStatusDecoding  MixStatus = "decoding"
	MixStatusRendering MixStatus = "rendering"
	MixStatusReady     MixStatus = "ready"
	MixStatusError     MixStatus = "error"
)

// IsValid checks if the status is a valid value
func (s MixStatus) IsValid() bool {
	switch s {
	case MixStatusIdle, MixStatusDecoding, MixStatusRendering, MixStatusReady, MixStatusError:
		return true
	}
	return false
}

// IsTerminal reports whether the job has finished.
func (s MixStatus) IsTerminal() bool {
	return s == MixStatusReady || s == MixStatusError
}

// CanTransition reports whether a job may move from s to next.
func (s MixStatus) CanTransition(next MixStatus) bool {
	switch s {
	case MixStatusIdle:
		return next == MixStatusDecoding || next == MixStatusReady || next == MixStatusError
	case MixStatusDecoding:
		return next == MixStatusRendering || next == MixStatusError
	case MixStatusRendering:
		return next == MixStatusReady || next == MixStatusError
	}
	return false
}

// String returns the string representation
func (s MixStatus) String() string {
	return string(s)
}
