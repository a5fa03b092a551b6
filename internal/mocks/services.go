package mocks

import (
	"context"

	"github.com/seu-repo/voxline/internal/domain"
)

// MockTranscriber is a mock implementation of the Transcriber interface
type MockTranscriber struct {
	TranscribeFunc func(ctx context.Context, audio []byte) (string, error)

	// Track calls for assertions
	Calls     int
	LastAudio []byte
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	m.Calls++
	m.LastAudio = audio
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio)
	}
	return "", nil
}

// MockGenerator is a mock implementation of the Generator interface
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, transcript string, history []domain.HistoryEntry) (*domain.GenerationResult, error)

	// Track calls for assertions
	Calls          int
	LastTranscript string
	LastHistory    []domain.HistoryEntry
}

func (m *MockGenerator) Generate(ctx context.Context, transcript string, history []domain.HistoryEntry) (*domain.GenerationResult, error) {
	m.Calls++
	m.LastTranscript = transcript
	m.LastHistory = history
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, transcript, history)
	}
	return &domain.GenerationResult{Text: "ok"}, nil
}

// MockSynthesizer is a mock implementation of the Synthesizer interface
type MockSynthesizer struct {
	SynthesizeFunc func(ctx context.Context, text string) ([]byte, error)

	// Track calls for assertions
	Calls    int
	LastText string
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	m.Calls++
	m.LastText = text
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text)
	}
	return []byte{0x00}, nil
}

// MockTurnService is a mock implementation of the TurnService interface
type MockTurnService struct {
	HandleTurnFunc func(ctx context.Context, audio []byte, history []domain.HistoryEntry) (*domain.TurnResult, error)

	// Track calls for assertions
	Calls       int
	LastAudio   []byte
	LastHistory []domain.HistoryEntry
}

func (m *MockTurnService) HandleTurn(ctx context.Context, audio []byte, history []domain.HistoryEntry) (*domain.TurnResult, error) {
	m.Calls++
	m.LastAudio = audio
	m.LastHistory = history
	if m.HandleTurnFunc != nil {
		return m.HandleTurnFunc(ctx, audio, history)
	}
	return &domain.TurnResult{Audio: []byte{0x00}, UserText: "", ReplyText: "ok"}, nil
}
