package domain

import (
	"errors"
	"fmt"
)

// Stage names a step of the turn pipeline for error attribution.
type Stage string

const (
	StageTranscription Stage = "transcription"
	StageGeneration    Stage = "generation"
	StageSynthesis     Stage = "synthesis"
)

var (
	// ErrInvalidInput marks requests rejected before any upstream call is
	// made (missing audio, audio below the minimum size, bad history).
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedGeneration marks a structured generation response that
	// could not be parsed or lacked the text field.
	ErrMalformedGeneration = errors.New("malformed generation output")
)

// UpstreamError wraps a non-success response from one of the external
// services. Transcription and synthesis upstream errors abort the turn;
// generation upstream errors are degraded to a fallback reply by the
// orchestrator and never surface as UpstreamError.
type UpstreamError struct {
	Stage Stage
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
