// Package admin exposes the cache's administrative surface over HTTP: a
// status endpoint for the dashboard and a management endpoint accepting
// clear/delete/cleanup/warmup actions. The engine itself stays
// transport-agnostic; this package is one host adapter.
package admin

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/samm329-ui/businessIntelligence-sub004/internal/cache"
)

// Management actions accepted by the manage endpoint.
const (
	ActionClear   = "clear"
	ActionDelete  = "delete"
	ActionCleanup = "cleanup"
	ActionWarmup  = "warmup"
)

// manageRequest is the body of POST /api/cache/manage.
type manageRequest struct {
	Action  string   `json:"action"`
	Query   string   `json:"query,omitempty"`
	Queries []string `json:"queries,omitempty"`
}

// statusPayload is the response of GET /api/cache/status.
type statusPayload struct {
	Directory   string                 `json:"directory"`
	Stats       cache.Stats            `json:"stats"`
	Compression cache.CompressionStats `json:"compression"`
}

// NewApp builds the Fiber application serving the admin API for the given
// cache engine.
func NewApp(c *cache.Cache, logger zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "bicache admin",
	})
	app.Use(recover.New())

	log := logger.With().Str("component", "admin").Logger()

	app.Get("/api/cache/status", func(ctx fiber.Ctx) error {
		return ctx.JSON(statusPayload{
			Directory:   c.Directory(),
			Stats:       c.Stats(),
			Compression: c.CompressionStats(),
		})
	})

	app.Post("/api/cache/manage", func(ctx fiber.Ctx) error {
		var req manageRequest
		if err := ctx.Bind().Body(&req); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		log.Info().Str("action", req.Action).Msg("management request")

		switch req.Action {
		case ActionClear:
			if err := c.Clear(ctx.Context()); err != nil {
				return serverError(ctx, err)
			}
			return ctx.JSON(fiber.Map{"action": ActionClear, "cleared": true})

		case ActionDelete:
			if req.Query == "" {
				return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "delete requires a query",
				})
			}
			removed, err := c.Delete(ctx.Context(), req.Query)
			if err != nil {
				return serverError(ctx, err)
			}
			return ctx.JSON(fiber.Map{"action": ActionDelete, "removed": removed})

		case ActionCleanup:
			res, err := c.Cleanup(ctx.Context())
			if err != nil {
				return serverError(ctx, err)
			}
			return ctx.JSON(fiber.Map{
				"action":          ActionCleanup,
				"deleted_count":   res.DeletedCount,
				"freed_bytes":     res.FreedBytes,
				"orphans_removed": res.OrphansRemoved,
			})

		case ActionWarmup:
			queries := req.Queries
			if len(queries) == 0 && req.Query != "" {
				queries = []string{req.Query}
			}
			missing, err := c.Warmup(ctx.Context(), queries)
			if err != nil {
				return serverError(ctx, err)
			}
			if missing == nil {
				missing = []string{}
			}
			return ctx.JSON(fiber.Map{"action": ActionWarmup, "missing": missing})

		default:
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown action: " + req.Action,
			})
		}
	})

	return app
}

func serverError(ctx fiber.Ctx, err error) error {
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
