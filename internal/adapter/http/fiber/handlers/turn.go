package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/voxline/internal/domain"
	"github.com/seu-repo/voxline/internal/ports"
)

// Metadata headers carrying the text side-channel next to the binary reply.
const (
	HeaderUserText        = "X-User-Text"
	HeaderAiText          = "X-Ai-Text"
	HeaderComplianceScore = "X-Compliance-Score"
)

const replyContentType = "audio/mpeg"

type TurnHandler struct {
	turns ports.TurnService
	log   *zap.Logger
}

func NewTurnHandler(turns ports.TurnService, log *zap.Logger) *TurnHandler {
	return &TurnHandler{
		turns: turns,
		log:   log,
	}
}

// HandleTurn accepts one multipart audio turn and responds with the
// synthesized reply. The recognized text, reply text and optional
// compliance score travel as response headers.
func (h *TurnHandler) HandleTurn(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing audio field"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable audio field"})
	}
	audio, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable audio field"})
	}

	history, err := parseHistory(c.FormValue("history"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid history field"})
	}

	result, err := h.turns.HandleTurn(c.Context(), audio, history)
	if err != nil {
		return h.renderError(c, err)
	}

	c.Set(fiber.HeaderContentType, replyContentType)
	c.Set(HeaderUserText, sanitizeHeader(result.UserText))
	c.Set(HeaderAiText, sanitizeHeader(result.ReplyText))
	if result.Compliance != nil {
		c.Set(HeaderComplianceScore, strconv.Itoa(*result.Compliance))
	}

	return c.Send(result.Audio)
}

func (h *TurnHandler) renderError(c *fiber.Ctx, err error) error {
	requestID, _ := c.Locals("request_id").(string)

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "audio payload is missing or too short",
		})

	case errors.Is(err, domain.ErrMalformedGeneration):
		h.log.Error("Turn failed on malformed generation output",
			zap.Error(err), zap.String("request_id", requestID))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "could not produce a reply",
		})

	default:
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			h.log.Error("Turn failed on upstream service",
				zap.String("stage", string(upstream.Stage)),
				zap.Error(err),
				zap.String("request_id", requestID))
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "voice processing failed",
			})
		}

		h.log.Error("Turn failed", zap.Error(err), zap.String("request_id", requestID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}

// parseHistory decodes the optional prior-turns field. Order is preserved:
// entries arrive oldest first and are handed to the pipeline verbatim.
func parseHistory(raw string) ([]domain.HistoryEntry, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var history []domain.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, err
	}
	for _, entry := range history {
		if !entry.Role.Valid() {
			return nil, errors.New("unknown history role: " + string(entry.Role))
		}
	}

	return history, nil
}

// sanitizeHeader strips characters that would break the header frame.
// Transcripts and replies are free text and can contain anything.
func sanitizeHeader(value string) string {
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.TrimSpace(value)
}
