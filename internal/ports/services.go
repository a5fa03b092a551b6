package ports

import (
	"context"

	"github.com/seu-repo/voxline/internal/domain"
)

// Transcriber converts recorded audio into text. An empty transcript is a
// valid result (no detectable speech), not an error.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Generator produces the persona's reply for the latest transcript, given
// the prior turns in order. When the structured contract is active the
// result also carries a compliance score and reasoning.
type Generator interface {
	Generate(ctx context.Context, transcript string, history []domain.HistoryEntry) (*domain.GenerationResult, error)
}

// Synthesizer renders reply text as audio with the configured voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// TurnService runs one full audio turn through the pipeline.
type TurnService interface {
	HandleTurn(ctx context.Context, audio []byte, history []domain.HistoryEntry) (*domain.TurnResult, error)
}
