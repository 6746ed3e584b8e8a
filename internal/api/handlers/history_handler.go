package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AnhAnhii/veterans-verify-system/internal/api/middleware"
	"github.com/AnhAnhii/veterans-verify-system/internal/export"
	"github.com/AnhAnhii/veterans-verify-system/internal/models"
	"github.com/AnhAnhii/veterans-verify-system/internal/services"
)

// HistoryHandler handles GET /api/history and its export.
type HistoryHandler struct {
	historyService services.IHistoryService
	exportLimit    int
}

func NewHistoryHandler(historyService services.IHistoryService, exportLimit int) *HistoryHandler {
	return &HistoryHandler{historyService: historyService, exportLimit: exportLimit}
}

func parseHistoryFilter(c *gin.Context) (models.HistoryFilter, bool) {
	var filter models.HistoryFilter
	if s := c.Query("status"); s != "" {
		status, err := models.ParseVerificationStatus(s)
		if err != nil {
			respondDetail(c, http.StatusBadRequest, err.Error())
			return filter, false
		}
		filter.Status = status
	}
	if s := c.Query("service_type"); s != "" {
		serviceType, err := models.ParseServiceType(s)
		if err != nil {
			respondDetail(c, http.StatusBadRequest, err.Error())
			return filter, false
		}
		filter.ServiceType = serviceType
	}
	return filter, true
}

// List handles GET /api/history?page&per_page&status&service_type
func (h *HistoryHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		respondDetail(c, http.StatusBadRequest, "page must be an integer >= 1")
		return
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(models.DefaultHistoryPerPage)))
	if err != nil || perPage < 1 || perPage > models.MaxHistoryPerPage {
		respondDetail(c, http.StatusBadRequest, "per_page must be an integer between 1 and 100")
		return
	}
	filter, ok := parseHistoryFilter(c)
	if !ok {
		return
	}

	resp, err := h.historyService.List(c.Request.Context(), middleware.ProfileID(c), filter, page, perPage)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Export handles GET /api/history/export?format=csv|xlsx
func (h *HistoryHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respondDetail(c, http.StatusBadRequest, err.Error())
		return
	}
	filter, ok := parseHistoryFilter(c)
	if !ok {
		return
	}

	items, err := h.historyService.Export(c.Request.Context(), middleware.ProfileID(c), filter, h.exportLimit)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, items); err != nil {
		_ = c.Error(err)
		respondDetail(c, http.StatusInternalServerError, "Failed to build export")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+format.Filename(time.Now())+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
