package inventorysync

import (
	"errors"

	"inventory-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync runs.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, logger: service.logger}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/runs", h.HandleStartRun)
	group.Get("/runs", h.HandleListRuns)
	group.Get("/runs/:id", h.HandleGetRun)
	group.Get("/kinds", h.HandleListKinds)
}

// HandleStartRun runs a sync and returns its report.
// @Summary Start Sync Run
// @Description Reconcile the selected entity kinds from the record system into the inventory. The run completes before the response is sent.
// @Tags sync
// @Accept json
// @Produce json
// @Param request body RunRequest false "Run selection"
// @Success 200 {object} reconcile.Report "Run Report"
// @Failure 400 {object} map[string]string "Invalid Request"
// @Failure 503 {object} reconcile.Report "Systems Unreachable"
// @Router /sync/runs [post]
func (h *Handler) HandleStartRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var req RunRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	report, err := h.service.Run(c.UserContext(), req)
	if err != nil {
		if isClientError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("Sync run failed", zap.Error(err))
		if report != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(report)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Sync run finished",
		zap.String("run_id", report.ID),
		zap.String("state", string(report.State)),
	)
	return c.JSON(report)
}

// HandleListRuns lists known run reports.
// @Summary List Sync Runs
// @Description List run reports held in memory and in the archive, newest first.
// @Tags sync
// @Produce json
// @Success 200 {array} ReportInfo "Reports"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/runs [get]
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	infos, err := h.service.Reports(c.UserContext())
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Listing reports failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(infos)
}

// HandleGetRun returns the report of one run.
// @Summary Get Sync Run
// @Description Get the full report of a run, including the per-item result log.
// @Tags sync
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} reconcile.Report "Run Report"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/runs/{id} [get]
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	id := c.Params("id")
	report, err := h.service.Report(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "report not found"})
		}
		logger.WithRayID(h.logger, c).Error("Loading report failed", zap.String("run_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleListKinds lists the entity kinds.
// @Summary List Entity Kinds
// @Description List entity kinds in dependency order with their conflict strategy and fields.
// @Tags sync
// @Produce json
// @Success 200 {array} KindInfo "Kinds"
// @Router /sync/kinds [get]
func (h *Handler) HandleListKinds(c *fiber.Ctx) error {
	return c.JSON(h.service.Kinds())
}
