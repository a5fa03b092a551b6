package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	fibercors "github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/seu-repo/voxline/pkg/config"
)

// Metadata headers browser callers must be able to read alongside the
// binary payload.
const exposedHeaders = "X-User-Text, X-Ai-Text, X-Compliance-Score, X-Request-ID"

const (
	allowedMethods = "POST, OPTIONS"
	allowedHeaders = "Origin, Content-Type, Accept, X-Request-ID"
)

// NewCORS builds the cross-origin policy from config. Two variants exist:
//
//   - wildcard: every origin gets "*" (the simplest deployment).
//   - allowlist: a listed origin is echoed back verbatim with the extended
//     method/header allowance; everyone else gets the configured default
//     origin value, or no allow-origin header at all when none is set. A
//     listed origin's value is never handed to an unlisted caller.
func NewCORS(cfg config.CORSConfig) fiber.Handler {
	if cfg.Mode != config.CORSModeAllowlist || len(cfg.AllowedOrigins) == 0 {
		return fibercors.New(fibercors.Config{
			AllowOrigins:  "*",
			AllowMethods:  allowedMethods,
			AllowHeaders:  allowedHeaders,
			ExposeHeaders: exposedHeaders,
			MaxAge:        cfg.MaxAge,
		})
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowed[strings.TrimSpace(origin)] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)

		c.Vary(fiber.HeaderOrigin)
		if _, ok := allowed[origin]; ok && origin != "" {
			c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
			c.Set(fiber.HeaderAccessControlAllowMethods, allowedMethods)
			c.Set(fiber.HeaderAccessControlAllowHeaders, allowedHeaders)
			c.Set(fiber.HeaderAccessControlExposeHeaders, exposedHeaders)
			if cfg.MaxAge > 0 {
				c.Set(fiber.HeaderAccessControlMaxAge, strconv.Itoa(cfg.MaxAge))
			}
		} else if cfg.DefaultOrigin != "" {
			c.Set(fiber.HeaderAccessControlAllowOrigin, cfg.DefaultOrigin)
		}

		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}

		return c.Next()
	}
}
