package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AnhAnhii/veterans-verify-system/internal/api/middleware"
	"github.com/AnhAnhii/veterans-verify-system/internal/models"
	"github.com/AnhAnhii/veterans-verify-system/internal/services"
)

// VerifyHandler handles the /api/verify endpoints.
type VerifyHandler struct {
	verificationService services.IVerificationService
	maxDocumentBytes    int64
}

func NewVerifyHandler(verificationService services.IVerificationService, maxDocumentMB int) *VerifyHandler {
	return &VerifyHandler{
		verificationService: verificationService,
		maxDocumentBytes:    int64(maxDocumentMB) << 20,
	}
}

// Create handles POST /api/verify/create
func (h *VerifyHandler) Create(c *gin.Context) {
	var req models.CreateVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondDetail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.verificationService.Create(c.Request.Context(), middleware.ProfileID(c), req)
	if err != nil {
		respondServiceError(c, err, "Verification cannot be created")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Submit handles POST /api/verify/submit
func (h *VerifyHandler) Submit(c *gin.Context) {
	var req models.SubmitVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondDetail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.verificationService.Submit(c.Request.Context(), middleware.ProfileID(c), req)
	if err != nil {
		respondServiceError(c, err, "Verification already submitted")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Status handles GET /api/verify/:id/status
func (h *VerifyHandler) Status(c *gin.Context) {
	v, err := h.verificationService.GetStatus(c.Request.Context(), middleware.ProfileID(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Verification is not active")
		return
	}
	c.JSON(http.StatusOK, v)
}

// UploadDocument handles POST /api/verify/:id/document (multipart: file, document_type).
func (h *VerifyHandler) UploadDocument(c *gin.Context) {
	docTypeStr := c.PostForm("document_type")
	if docTypeStr == "" {
		docTypeStr = c.DefaultQuery("document_type", string(models.DocumentDD214))
	}
	docType, err := models.ParseDocumentType(docTypeStr)
	if err != nil {
		respondDetail(c, http.StatusBadRequest, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondDetail(c, http.StatusBadRequest, "A document file is required in the 'file' field")
		return
	}
	if fileHeader.Size > h.maxDocumentBytes {
		respondDetail(c, http.StatusRequestEntityTooLarge, "Document exceeds the maximum allowed size")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		respondDetail(c, http.StatusBadRequest, "Uploaded file could not be read")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxDocumentBytes+1))
	if err != nil {
		_ = c.Error(fmt.Errorf("failed to read upload: %w", err))
		respondDetail(c, http.StatusBadRequest, "Uploaded file could not be read")
		return
	}

	resp, err := h.verificationService.UploadDocument(c.Request.Context(), middleware.ProfileID(c), c.Param("id"),
		services.DocumentUpload{
			Filename:     fileHeader.Filename,
			DocumentType: docType,
			Data:         data,
		})
	if err != nil {
		respondServiceError(c, err, "Document upload not required or already uploaded")
		return
	}
	c.JSON(http.StatusOK, resp)
}
