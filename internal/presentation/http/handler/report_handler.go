package handler

import (
	"net/http"
	"time"

	"github.com/dentacare/clinic-api/internal/application/service"
	"github.com/dentacare/clinic-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves spreadsheet exports
type ReportHandler struct {
	reportService *service.ReportService
	now           func() time.Time
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, now: time.Now}
}

// BillingReport exports bills and payments between from and to (YYYY-MM-DD,
// inclusive). Defaults to the current month up to today.
func (h *ReportHandler) BillingReport(c *gin.Context) {
	now := h.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if s := c.Query("from"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			response.BadRequest(c, "from must be YYYY-MM-DD")
			return
		}
		from = d
	}
	if s := c.Query("to"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			response.BadRequest(c, "to must be YYYY-MM-DD")
			return
		}
		to = d
	}

	report, err := h.reportService.GenerateBillingReport(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, report.Content)
}
