package sources

import (
	"errors"
	"strings"

	"source-resolver/core/logger"
	"source-resolver/core/resolver"
	"source-resolver/core/server"
	"source-resolver/core/utils"
	"source-resolver/core/verify"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sources.
type Handler struct {
	service *Service
	server  server.Config
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, srv server.Config) *Handler {
	return &Handler{service: service, server: srv}
}

// RegisterRoutes registers the sources routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sources")
	group.Get("/", h.HandleList)
	group.Get("/:source/tables", h.HandleTables)
	group.Get("/:source/tables/:table", h.HandleRecords)
	group.Get("/:source/verify", h.HandleVerify)
	group.Post("/:source/refresh", h.HandleRefresh)
}

// status maps service errors to HTTP status codes.
func status(err error) int {
	var conflict *resolver.ConflictError
	switch {
	case errors.Is(err, ErrSourceNotFound), errors.Is(err, ErrTableNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &conflict), errors.Is(err, resolver.ErrSchemaMismatch):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	code := status(err)
	if code == fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// param copies a route parameter out of the request buffer, which fiber
// reuses after the handler returns.
func param(c *fiber.Ctx, key string) string {
	return strings.Clone(c.Params(key))
}

// HandleList lists the configured sources.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	list, err := h.service.List()
	if err != nil {
		return h.fail(c, l, "Failed to list sources", err)
	}
	return c.JSON(fiber.Map{"sources": list})
}

// HandleTables lists the tables of a source.
func (h *Handler) HandleTables(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	name := param(c, "source")
	count := utils.ToBool(c.Query("count"))

	tables, err := h.service.Tables(c.Context(), name, count)
	if err != nil {
		return h.fail(c, l.With(zap.String("source", name)), "Failed to resolve source", err)
	}
	return c.JSON(fiber.Map{
		"source": name,
		"tables": tables,
	})
}

// HandleRecords reads records of one table.
func (h *Handler) HandleRecords(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	name := param(c, "source")
	table := param(c, "table")
	limit := h.server.Limit(utils.ToInt(c.Query("limit")))

	page, err := h.service.Records(c.Context(), name, table, limit)
	if err != nil {
		return h.fail(c, l.With(zap.String("source", name), zap.String("table", table)), "Failed to read table", err)
	}
	l.Debug("Read table", zap.String("source", name), zap.String("table", table), zap.Int("records", len(page.Records)))
	return c.JSON(page)
}

// HandleVerify runs discovery on a source.
func (h *Handler) HandleVerify(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	name := param(c, "source")

	res, err := h.service.Verify(c.Context(), name)
	if err != nil {
		return h.fail(c, l.With(zap.String("source", name)), "Failed to verify source", err)
	}
	if !res.OK() {
		l.Warn("Source verification found errors", zap.String("source", name),
			zap.Int("errors", len(res.Report.Filter(verify.SeverityError))))
	}
	return c.JSON(res)
}

// HandleRefresh drops the cached resolution of a source.
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	name := param(c, "source")
	h.service.Refresh(name)
	return c.JSON(fiber.Map{"status": "refreshed", "source": name})
}
