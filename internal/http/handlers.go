package http

import (
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ohm-grid/power-monitor/internal/domain"
	"github.com/ohm-grid/power-monitor/internal/service"
)

func Register(app *fiber.App, svcs *service.Services) {
	h := &handlers{svcs: svcs}

	api := app.Group("/api")

	// Gateway push + telemetry
	api.Post("/espnow/data", h.ingest)
	api.Get("/espnow/status", h.gatewayStatus)

	// Live reads
	api.Get("/system/status", h.systemStatus)
	api.Get("/system/health", h.systemHealth)
	api.Get("/meters", h.listMeters)
	api.Get("/meters/:meterId", h.getMeter)

	// Usage log reads
	logs := api.Group("/logs")
	logs.Get("/:cadence/all", h.allLogs)
	logs.Get("/:cadence/paginated", h.paginatedLogs)
	logs.Get("/:cadence/range", h.rangeLogs)
	logs.Get("/:cadence/search", h.searchLogs)
	logs.Get("/:cadence/stats", h.logStats)
	logs.Get("/:cadence/chart", h.chartLogs)
	logs.Get("/:cadence/export", h.exportLogs)
	logs.Get("/:cadence/export/history", h.exportHistory)
	logs.Get("/:cadence/:id", h.getLog)
	logs.Get("/:cadence", h.recentLogs)
	logs.Delete("/:cadence/:id", h.deleteLog)
	logs.Delete("/:cadence", h.deleteAllLogs)
}

type handlers struct {
	svcs *service.Services
}

func cadenceParam(c *fiber.Ctx) (domain.Cadence, error) {
	switch c.Params("cadence") {
	case "daily":
		return domain.CadenceDaily, nil
	case "monthly":
		return domain.CadenceMonthly, nil
	default:
		return "", fiber.NewError(fiber.StatusBadRequest, "cadence must be 'daily' or 'monthly'")
	}
}

func serverError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func (h *handlers) ingest(c *fiber.Ctx) error {
	var batch domain.GatewayBatch
	if err := c.BodyParser(&batch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": domain.ErrInvalidPayload.Error(),
		})
	}

	result, err := h.svcs.Ingest.Ingest(batch)
	if errors.Is(err, domain.ErrInvalidPayload) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	if err != nil {
		return serverError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"message":       "Data received successfully",
		"acceptedCount": result.AcceptedCount,
		"rejectedIds":   result.RejectedIDs,
		"onlineMeters":  result.OnlineMeters,
		"timestamp":     time.Now(),
	})
}

func (h *handlers) gatewayStatus(c *fiber.Ctx) error {
	return c.JSON(h.svcs.Status.GatewayStatus())
}

func (h *handlers) systemStatus(c *fiber.Ctx) error {
	status, err := h.svcs.Status.LiveStatus()
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(status)
}

func (h *handlers) systemHealth(c *fiber.Ctx) error {
	health, err := h.svcs.Status.Health()
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(health)
}

func (h *handlers) listMeters(c *fiber.Ctx) error {
	status, err := h.svcs.Status.LiveStatus()
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{
		"meters":       status.MeterStatus,
		"analysis":     status.Evaluation,
		"totalMeters":  len(status.MeterStatus),
		"onlineMeters": onlineCount(status.MeterStatus),
		"timestamp":    status.Timestamp,
	})
}

func onlineCount(meters []service.MeterView) int {
	n := 0
	for _, m := range meters {
		if m.Online {
			n++
		}
	}
	return n
}

func (h *handlers) getMeter(c *fiber.Ctx) error {
	meter, err := h.svcs.Repos.GetMeter(c.Params("meterId"))
	if errors.Is(err, domain.ErrUnknownMeter) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Meter not found"})
	}
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(meter)
}

func (h *handlers) recentLogs(c *fiber.Ctx) error {
	cadence, err := cadenceParam(c)
	if err != nil {
		return err
	}
	limit := 7
	if cadence == domain.CadenceMonthly {
		limit = 6
	}
	logs, err := h.svcs.Repos.RecentLogs(cadence, c.QueryInt("limit", limit))
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(logs)
}

func (h *handlers) allLogs(c *fiber.Ctx) error {
	cadence, err := cadenceParam(c)
	if err != nil {
		return err
	}
	logs, err := h.svcs.Repos.AllLogs(cadence)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(logs)
}

func (h *handlers) paginatedLogs(c *fiber.Ctx) error {
	cadence, err := cadenceParam(c)
	if err != nil {
		return err
	}
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := clampLimit(c.QueryInt("limit", 20))

	logs, total, err := h.svcs.Repos.PaginatedLogs(cadence, page, limit)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{
		"logs":        logs,
		"currentPage": page,
		"totalPages":  pageCount(total, limit),
		"totalLogs":   total,
	})
}

// clampLimit keeps a caller-supplied page size usable: at least 1 so
// the page math stays defined, at most 100 per page.
func clampLimit(v int) int {
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}

func pageCount(total int64, limit int) int64 {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return pages
}

func (h *handlers) rangeLogs(c *fiber.Ctx) error {
	cadence, err := cadenceParam(c)
	if err != nil {
		return err
	}
	start, err1 := time.Parse(time.RFC3339, c.Query("startDate"))
	end, err2 := time.Parse(time.RFC3339, c.Query("endDate"))
	if err1 != nil || err2 != nil {
		return fiber.NewError(fiber.StatusBadRequest, "startDate and endDate must be RFC3339 timestamps")
	}

	logs, err := h.svcs.Repos.LogsInRange(cadence, start, end)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(logs)
}

func (h *handlers) searchLogs(c *fiber.Ctx) error {
	cadence, err := cadenceParam(c)
	if err != nil {
		return err
	}
	alert := domain.AlertState(c.Query("theftAlert"))
	if alert == "" {
		return fiber.NewError(fiber.StatusBadRequest, "theftAlert query parameter is required")
	}

	logs, err := h.svcs.Repos.SearchLogs(cadence, alert, c.QueryInt("limit", 50))
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{
		"logs":  logs,
		"count": len(logs),
	})
}

func (h *handlers) logStats(c *fiber.Ctx) error {
	cadence, err := cadenceParam(c)
	if err != nil {
		return err
	}
	stats, err := h.svcs.Repos.CadenceStats(cadence)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(stats)
}

func (h *handlers) chartLogs(c *fiber.Ctx) error {
	cadence, err := cadenceParam(c)
	if err != nil {
		return err
	}
	since := time.Now().AddDate(0, 0, -30)
	if cadence == domain.CadenceMonthly {
		since = time.Now().AddDate(0, -12, 0)
	}
	points, err := h.svcs.Repos.ChartLogs(cadence, since)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(points)
}

func (h *handlers) exportLogs(c *fiber.Ctx) error {
	cadence, err := cadenceParam(c)
	if err != nil {
		return err
	}

	if h.svcs.Export.UploadEnabled() {
		url, err := h.svcs.Export.Upload(cadence)
		if err != nil {
			return serverError(c, err)
		}
		return c.JSON(fiber.Map{"downloadUrl": url})
	}

	data, err := h.svcs.Export.CSV(cadence)
	if err != nil {
		return serverError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="usage-`+string(cadence)+`.csv"`)
	return c.Send(data)
}

func (h *handlers) exportHistory(c *fiber.Ctx) error {
	cadence, err := cadenceParam(c)
	if err != nil {
		return err
	}
	if !h.svcs.Export.UploadEnabled() {
		return fiber.NewError(fiber.StatusServiceUnavailable, "report upload is not enabled")
	}

	keys, err := h.svcs.Export.History(cadence)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{"reports": keys, "count": len(keys)})
}

func (h *handlers) getLog(c *fiber.Ctx) error {
	cadence, err := cadenceParam(c)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "log id must be numeric")
	}

	entry, err := h.svcs.Repos.GetLog(cadence, id)
	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Log not found"})
	}
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(entry)
}

func (h *handlers) deleteLog(c *fiber.Ctx) error {
	cadence, err := cadenceParam(c)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "log id must be numeric")
	}

	n, err := h.svcs.Repos.DeleteLog(cadence, id)
	if err != nil {
		return serverError(c, err)
	}
	if n == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Log not found"})
	}
	return c.JSON(fiber.Map{"message": "Log deleted successfully"})
}

func (h *handlers) deleteAllLogs(c *fiber.Ctx) error {
	cadence, err := cadenceParam(c)
	if err != nil {
		return err
	}
	n, err := h.svcs.Repos.DeleteAllLogs(cadence)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":      "Logs deleted successfully",
		"deletedCount": n,
	})
}
