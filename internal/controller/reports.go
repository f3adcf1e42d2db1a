package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/Evgen-Mutagen/atm-inventory/internal/core"
	"github.com/Evgen-Mutagen/atm-inventory/internal/service"
)

type ReportController struct {
	reports core.ReportService
	logger  *zap.Logger
}

func NewReportController(reports core.ReportService, logger *zap.Logger) *ReportController {
	return &ReportController{
		reports: reports,
		logger:  logger,
	}
}

// Sales answers with bar chart data, or a message when nothing has been sold.
func (c *ReportController) Sales(w http.ResponseWriter, r *http.Request) {
	chart, err := c.reports.SalesReport(r.Context())
	switch {
	case errors.Is(err, service.ErrNoSalesData):
		render.JSON(w, r, messageResponse{Message: "No sales data."})
	case err != nil:
		c.logger.Error("Failed to build sales report", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
	default:
		render.JSON(w, r, chart)
	}
}

// LowStock answers with pie chart data, or a message when every product is
// at or above the threshold.
func (c *ReportController) LowStock(w http.ResponseWriter, r *http.Request) {
	chart, err := c.reports.LowStockReport(r.Context(), threshold(r))
	switch {
	case errors.Is(err, service.ErrStockSufficient):
		render.JSON(w, r, messageResponse{Message: "All stock levels are sufficient."})
	case err != nil:
		c.logger.Error("Failed to build low stock report", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
	default:
		render.JSON(w, r, chart)
	}
}
