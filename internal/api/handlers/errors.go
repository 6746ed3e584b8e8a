package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AnhAnhii/veterans-verify-system/internal/models"
	"github.com/AnhAnhii/veterans-verify-system/internal/services"
)

const detailInternal = "Internal server error"

// respondDetail aborts with the {"detail": ...} error body used by every endpoint.
func respondDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// respondServiceError maps service sentinels onto HTTP statuses.
// invalidState is the detail used for services.ErrInvalidState.
func respondServiceError(c *gin.Context, err error, invalidState string) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondDetail(c, http.StatusNotFound, "Verification not found")
	case errors.Is(err, services.ErrForbidden):
		respondDetail(c, http.StatusForbidden, "Access denied")
	case errors.Is(err, services.ErrInvalidState):
		respondDetail(c, http.StatusBadRequest, invalidState)
	case errors.Is(err, services.ErrDocumentTooLarge):
		respondDetail(c, http.StatusRequestEntityTooLarge, "Document exceeds the maximum allowed size")
	case errors.Is(err, services.ErrUnsupportedDocument):
		respondDetail(c, http.StatusBadRequest, "Unsupported document format; upload a PDF or an image")
	case errors.Is(err, models.ErrInvalidEnum):
		respondDetail(c, http.StatusBadRequest, err.Error())
	default:
		respondDetail(c, http.StatusInternalServerError, detailInternal)
	}
}
