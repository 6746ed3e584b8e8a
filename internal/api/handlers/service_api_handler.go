package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AnhAnhii/veterans-verify-system/internal/auth"
	"github.com/AnhAnhii/veterans-verify-system/internal/config"
	"github.com/AnhAnhii/veterans-verify-system/internal/logger"
	"github.com/AnhAnhii/veterans-verify-system/internal/services"
)

// JsonApiRequest defines the expected structure for service API requests.
type JsonApiRequest struct {
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// JsonApiResponse defines the structure for service API responses.
type JsonApiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type ApiError struct {
	Message string
}

func (e *ApiError) Error() string {
	return e.Message
}

func NewApiError(message string) *ApiError {
	return &ApiError{Message: message}
}

// apiMethodFunc defines the signature for service API methods.
type apiMethodFunc func(c *gin.Context, args json.RawMessage) (interface{}, *ApiError)

// ServiceApiHandler serves operator methods on the service port.
type ServiceApiHandler struct {
	cfg            *config.Config
	profileService services.IProfileService
	lookupService  services.ILookupService
	shutdownChan   chan<- struct{}
	log            *zap.Logger
	methods        map[string]apiMethodFunc
}

func NewServiceApiHandler(
	cfg *config.Config,
	profileService services.IProfileService,
	lookupService services.ILookupService,
	shutdownChan chan<- struct{},
	log *zap.Logger,
) *ServiceApiHandler {
	h := &ServiceApiHandler{
		cfg:            cfg,
		profileService: profileService,
		lookupService:  lookupService,
		shutdownChan:   shutdownChan,
		log:            logger.Named(log, "service-api"),
	}
	h.methods = map[string]apiMethodFunc{
		"shutdown":         h.shutdown,
		"createProfile":    h.createProfile,
		"issueToken":       h.issueToken,
		"flushLookupCache": h.flushLookupCache,
	}
	return h
}

// HandleRequest is the entry point for POST /api on the service port.
func (h *ServiceApiHandler) HandleRequest(c *gin.Context) {
	var req JsonApiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, JsonApiResponse{Success: false, Error: "Invalid request format"})
		return
	}

	handlerFunc, ok := h.methods[req.Method]
	if !ok {
		c.JSON(http.StatusNotFound, JsonApiResponse{Success: false, Error: fmt.Sprintf("Unknown service method: %s", req.Method)})
		return
	}

	result, apiErr := handlerFunc(c, req.Arguments)
	if apiErr != nil {
		c.JSON(http.StatusBadRequest, JsonApiResponse{Success: false, Error: apiErr.Message})
		return
	}
	c.JSON(http.StatusOK, JsonApiResponse{Success: true, Data: result})
}

// parseStringArgs decodes arguments as a JSON array of strings with at least min entries.
func parseStringArgs(raw json.RawMessage, min int) ([]string, *ApiError) {
	if len(raw) == 0 {
		if min == 0 {
			return nil, nil
		}
		return nil, NewApiError("Missing 'arguments' field; expected a JSON array.")
	}
	var args []string
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, NewApiError("Invalid 'arguments': expected a JSON array of strings.")
	}
	if len(args) < min {
		return nil, NewApiError(fmt.Sprintf("Invalid 'arguments': expected at least %d values.", min))
	}
	return args, nil
}

func (h *ServiceApiHandler) shutdown(c *gin.Context, _ json.RawMessage) (interface{}, *ApiError) {
	h.log.Info("shutdown requested via service API")
	select {
	case h.shutdownChan <- struct{}{}:
	default:
		h.log.Warn("shutdown already in progress")
	}
	return "Shutdown initiated", nil
}

func (h *ServiceApiHandler) createProfile(c *gin.Context, raw json.RawMessage) (interface{}, *ApiError) {
	args, apiErr := parseStringArgs(raw, 1)
	if apiErr != nil {
		return nil, apiErr
	}
	email := strings.TrimSpace(args[0])
	if !strings.Contains(email, "@") {
		return nil, NewApiError("Invalid email")
	}
	name := ""
	if len(args) > 1 {
		name = args[1]
	}

	profile, apiKey, err := h.profileService.CreateProfile(c.Request.Context(), email, name)
	if err != nil {
		h.log.Error("profile not created", zap.Error(err))
		return nil, NewApiError("Failed to create profile")
	}
	return gin.H{"profileId": profile.ID, "apiKey": apiKey}, nil
}

func (h *ServiceApiHandler) issueToken(c *gin.Context, raw json.RawMessage) (interface{}, *ApiError) {
	args, apiErr := parseStringArgs(raw, 1)
	if apiErr != nil {
		return nil, apiErr
	}

	profile, err := h.profileService.FindByID(c.Request.Context(), args[0])
	if errors.Is(err, services.ErrNotFound) {
		return nil, NewApiError("Profile not found")
	}
	if err != nil {
		h.log.Error("profile lookup failed", zap.Error(err))
		return nil, NewApiError("Failed to load profile")
	}
	if profile.Disabled {
		return nil, NewApiError("Profile is disabled")
	}

	token, err := auth.GenerateJWT(profile.ID, profile.Email, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		return nil, NewApiError("Failed to issue token")
	}
	return gin.H{"token": token, "expiresAt": time.Now().Add(h.cfg.JwtTTL).UTC()}, nil
}

func (h *ServiceApiHandler) flushLookupCache(c *gin.Context, _ json.RawMessage) (interface{}, *ApiError) {
	n, err := h.lookupService.FlushCache(c.Request.Context())
	if err != nil {
		h.log.Error("lookup cache flush failed", zap.Error(err))
		return nil, NewApiError("Failed to flush lookup cache")
	}
	return gin.H{"removed": n}, nil
}
