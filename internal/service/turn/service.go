package turn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/seu-repo/voxline/internal/domain"
	"github.com/seu-repo/voxline/internal/observability/telemetry"
	"github.com/seu-repo/voxline/internal/ports"
)

// Structured-failure policies. Fallback degrades a malformed structured
// reply to FallbackGenerationFailed; Abort fails the whole turn.
const (
	PolicyFallback = "fallback"
	PolicyAbort    = "abort"
)

// Config holds the orchestrator's behavior switches. All observed variants
// of the pipeline are expressed here rather than as alternate
// implementations.
type Config struct {
	// MinAudioBytes rejects recordings below this size before any upstream
	// call. Zero disables the guard.
	MinAudioBytes int

	// StructuredFailurePolicy is PolicyFallback (default) or PolicyAbort.
	StructuredFailurePolicy string
}

// Service orchestrates one audio turn: transcription, generation,
// synthesis, in that order, each call depending on the previous result.
type Service struct {
	stt    ports.Transcriber
	llm    ports.Generator
	tts    ports.Synthesizer
	cfg    Config
	log    *zap.Logger
	tracer trace.Tracer
}

// NewService creates the turn orchestrator.
func NewService(stt ports.Transcriber, llm ports.Generator, tts ports.Synthesizer, cfg Config, log *zap.Logger) *Service {
	if cfg.StructuredFailurePolicy == "" {
		cfg.StructuredFailurePolicy = PolicyFallback
	}

	return &Service{
		stt:    stt,
		llm:    llm,
		tts:    tts,
		cfg:    cfg,
		log:    log,
		tracer: otel.Tracer("voxline/turn"),
	}
}

// HandleTurn runs the full pipeline for one inbound audio turn.
//
// Failure semantics: invalid input and transcription/synthesis upstream
// errors abort the turn. Generation failures degrade to a fixed fallback
// reply so the conversational illusion survives; the sole exception is a
// malformed structured reply under the abort policy.
func (s *Service) HandleTurn(ctx context.Context, audio []byte, history []domain.HistoryEntry) (*domain.TurnResult, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: missing audio payload", domain.ErrInvalidInput)
	}
	if s.cfg.MinAudioBytes > 0 && len(audio) < s.cfg.MinAudioBytes {
		return nil, fmt.Errorf("%w: audio payload below minimum size (%d < %d bytes)",
			domain.ErrInvalidInput, len(audio), s.cfg.MinAudioBytes)
	}

	ctx, span := s.tracer.Start(ctx, "turn.handle")
	defer span.End()

	transcript, err := s.transcribe(ctx, audio)
	if err != nil {
		telemetry.TurnsTotal.WithLabelValues("failed").Inc()
		return nil, &domain.UpstreamError{Stage: domain.StageTranscription, Err: err}
	}

	reply, err := s.generateReply(ctx, transcript, history)
	if err != nil {
		telemetry.TurnsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	replyAudio, err := s.synthesize(ctx, reply.Text)
	if err != nil {
		telemetry.TurnsTotal.WithLabelValues("failed").Inc()
		return nil, &domain.UpstreamError{Stage: domain.StageSynthesis, Err: err}
	}

	telemetry.TurnsTotal.WithLabelValues("ok").Inc()
	telemetry.ReplyAudioBytes.Observe(float64(len(replyAudio)))

	return &domain.TurnResult{
		Audio:      replyAudio,
		UserText:   transcript,
		ReplyText:  reply.Text,
		Compliance: reply.Compliance,
	}, nil
}

func (s *Service) transcribe(ctx context.Context, audio []byte) (string, error) {
	ctx, span := s.tracer.Start(ctx, "turn.transcribe")
	defer span.End()

	start := time.Now()
	transcript, err := s.stt.Transcribe(ctx, audio)
	telemetry.StageLatency.WithLabelValues(string(domain.StageTranscription)).Observe(time.Since(start).Seconds())

	if err != nil {
		s.log.Error("Transcription failed", zap.Error(err))
		return "", err
	}

	s.log.Debug("Transcription complete", zap.Int("audio_bytes", len(audio)), zap.Int("transcript_len", len(transcript)))
	return transcript, nil
}

// generateReply produces the persona's reply text. A transcript with at
// most one meaningful character skips the remote call and answers with the
// no-speech fallback, saving the upstream round trip on silent recordings.
func (s *Service) generateReply(ctx context.Context, transcript string, history []domain.HistoryEntry) (*domain.GenerationResult, error) {
	if utf8.RuneCountInString(strings.TrimSpace(transcript)) <= 1 {
		s.log.Info("No usable speech in transcript, skipping generation")
		telemetry.GenerationFallbacksTotal.WithLabelValues("no_speech").Inc()
		return &domain.GenerationResult{Text: FallbackNoSpeech}, nil
	}

	ctx, span := s.tracer.Start(ctx, "turn.generate")
	defer span.End()

	start := time.Now()
	result, err := s.llm.Generate(ctx, transcript, history)
	telemetry.StageLatency.WithLabelValues(string(domain.StageGeneration)).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, domain.ErrMalformedGeneration) && s.cfg.StructuredFailurePolicy == PolicyAbort {
			s.log.Error("Structured generation output malformed, aborting turn", zap.Error(err))
			return nil, err
		}

		s.log.Warn("Generation failed, degrading to fallback reply", zap.Error(err))
		reason := "upstream_error"
		if errors.Is(err, domain.ErrMalformedGeneration) {
			reason = "malformed_output"
		}
		telemetry.GenerationFallbacksTotal.WithLabelValues(reason).Inc()
		return &domain.GenerationResult{Text: FallbackGenerationFailed}, nil
	}

	return result, nil
}

func (s *Service) synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "turn.synthesize")
	defer span.End()

	start := time.Now()
	audio, err := s.tts.Synthesize(ctx, text)
	telemetry.StageLatency.WithLabelValues(string(domain.StageSynthesis)).Observe(time.Since(start).Seconds())

	if err != nil {
		s.log.Error("Synthesis failed", zap.Error(err))
		return nil, err
	}

	return audio, nil
}
