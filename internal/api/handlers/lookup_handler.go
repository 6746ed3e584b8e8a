package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AnhAnhii/veterans-verify-system/internal/models"
	"github.com/AnhAnhii/veterans-verify-system/internal/services"
)

// LookupHandler handles the /api/lookup endpoints.
type LookupHandler struct {
	lookupService services.ILookupService
}

func NewLookupHandler(lookupService services.ILookupService) *LookupHandler {
	return &LookupHandler{lookupService: lookupService}
}

// parseLookupQuery reads first_name, last_name, state, branch and use_cache.
// It writes the 400 response itself and returns ok=false on invalid input.
func parseLookupQuery(c *gin.Context) (q models.LookupQuery, useCache bool, ok bool) {
	q.FirstName = strings.TrimSpace(c.Query("first_name"))
	q.LastName = strings.TrimSpace(c.Query("last_name"))
	q.State = strings.TrimSpace(c.Query("state"))

	if q.Empty() {
		respondDetail(c, http.StatusBadRequest, "At least first_name or last_name is required")
		return q, false, false
	}

	if branchStr := c.Query("branch"); branchStr != "" {
		branch, err := models.ParseMilitaryBranch(branchStr)
		if err != nil {
			respondDetail(c, http.StatusBadRequest, err.Error())
			return q, false, false
		}
		q.Branch = branch
	}

	useCache, err := strconv.ParseBool(c.DefaultQuery("use_cache", "true"))
	if err != nil {
		respondDetail(c, http.StatusBadRequest, "use_cache must be a boolean")
		return q, false, false
	}
	return q, useCache, true
}

func (h *LookupHandler) search(c *gin.Context, source models.VASource) {
	q, useCache, ok := parseLookupQuery(c)
	if !ok {
		return
	}
	resp, err := h.lookupService.Search(c.Request.Context(), source, q, useCache)
	if err != nil {
		_ = c.Error(err)
		respondDetail(c, http.StatusBadGateway, "Failed to search "+string(source)+": "+err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Grave handles GET /api/lookup/grave
func (h *LookupHandler) Grave(c *gin.Context) { h.search(c, models.SourceGraveLocator) }

// VLM handles GET /api/lookup/vlm
func (h *LookupHandler) VLM(c *gin.Context) { h.search(c, models.SourceVLM) }

// Army handles GET /api/lookup/army
func (h *LookupHandler) Army(c *gin.Context) { h.search(c, models.SourceArmyExplorer) }

// Aggregate handles GET /api/lookup/aggregate
func (h *LookupHandler) Aggregate(c *gin.Context) {
	q, useCache, ok := parseLookupQuery(c)
	if !ok {
		return
	}
	resp, err := h.lookupService.SearchAll(c.Request.Context(), q, useCache)
	if err != nil {
		_ = c.Error(err)
		respondDetail(c, http.StatusBadGateway, "Failed to search VA sources")
		return
	}
	c.JSON(http.StatusOK, resp)
}
