package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quotedesk_backend/internal/quotes/service"
	"quotedesk_backend/internal/quotes/transport"
	"quotedesk_backend/platform/httpkit"
	"quotedesk_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for quotes
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new quotes handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the quote routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.POST("/calculate", h.Calculate)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.UpdateHeader)
	rg.GET("/:id/calculation", h.GetCalculation)
	rg.POST("/:id/status", h.Transition)
	rg.POST("/:id/template", h.ApplyTemplate)
	rg.POST("/:id/duplicate", h.Duplicate)
	rg.POST("/:id/convert", h.Convert)

	rg.POST("/:id/groups", h.AddGroup)
	rg.PATCH("/:id/groups/:groupId", h.UpdateGroup)
	rg.DELETE("/:id/groups/:groupId", h.RemoveGroup)
	rg.POST("/:id/groups/:groupId/items", h.AddItem)
	rg.PATCH("/:id/groups/:groupId/items/:itemId", h.UpdateItem)
	rg.DELETE("/:id/groups/:groupId/items/:itemId", h.RemoveItem)
	rg.POST("/:id/groups/:groupId/items/:itemId/details", h.AddDetail)
	rg.PATCH("/:id/groups/:groupId/items/:itemId/details/:detailId", h.UpdateDetail)
	rg.DELETE("/:id/groups/:groupId/items/:itemId/details/:detailId", h.RemoveDetail)
}

// RegisterTemplateRoutes registers the quote template routes
func (h *Handler) RegisterTemplateRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListTemplates)
	rg.POST("", h.SaveTemplate)
}

// List handles GET /api/v1/quotes
func (h *Handler) List(c *gin.Context) {
	var req transport.ListQuotesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.List(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Create handles POST /api/v1/quotes
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateQuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, result)
}

// Calculate handles POST /api/v1/quotes/calculate
// Returns calculated totals without persisting anything.
func (h *Handler) Calculate(c *gin.Context) {
	var req transport.CalculateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Calculate(req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetByID handles GET /api/v1/quotes/:id
func (h *Handler) GetByID(c *gin.Context) {
	ids, ok := parseIDs(c, "id")
	if !ok {
		return
	}

	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), ids[0], tenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetCalculation handles GET /api/v1/quotes/:id/calculation
func (h *Handler) GetCalculation(c *gin.Context) {
	ids, ok := parseIDs(c, "id")
	if !ok {
		return
	}

	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetCalculation(c.Request.Context(), ids[0], tenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// UpdateHeader handles PATCH /api/v1/quotes/:id
func (h *Handler) UpdateHeader(c *gin.Context) {
	ids, ok := parseIDs(c, "id")
	if !ok {
		return
	}
	var req transport.UpdateQuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.UpdateHeader(c.Request.Context(), ids[0], tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Transition handles POST /api/v1/quotes/:id/status
func (h *Handler) Transition(c *gin.Context) {
	ids, ok := parseIDs(c, "id")
	if !ok {
		return
	}
	var req transport.TransitionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.Transition(c.Request.Context(), ids[0], tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// ApplyTemplate handles POST /api/v1/quotes/:id/template
func (h *Handler) ApplyTemplate(c *gin.Context) {
	ids, ok := parseIDs(c, "id")
	if !ok {
		return
	}
	var req transport.ApplyTemplateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.ApplyTemplate(c.Request.Context(), ids[0], tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Duplicate handles POST /api/v1/quotes/:id/duplicate
func (h *Handler) Duplicate(c *gin.Context) {
	ids, ok := parseIDs(c, "id")
	if !ok {
		return
	}

	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.Duplicate(c.Request.Context(), ids[0], tenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, result)
}

// Convert handles POST /api/v1/quotes/:id/convert
func (h *Handler) Convert(c *gin.Context) {
	ids, ok := parseIDs(c, "id")
	if !ok {
		return
	}
	var req transport.VersionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.Convert(c.Request.Context(), ids[0], tenantID, req.Version)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, result)
}

// ListTemplates handles GET /api/v1/quote-templates
func (h *Handler) ListTemplates(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.ListTemplates(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// SaveTemplate handles POST /api/v1/quote-templates
func (h *Handler) SaveTemplate(c *gin.Context) {
	var req transport.SaveTemplateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.SaveTemplate(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

// bindVersion reads the expected version of a DELETE from ?version=.
func (h *Handler) bindVersion(c *gin.Context) (int, bool) {
	var req transport.VersionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return 0, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return 0, false
	}
	return req.Version, true
}

// parseIDs parses the named path parameters as UUIDs, in order.
func parseIDs(c *gin.Context, names ...string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		id, err := uuid.Parse(c.Param(name))
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, map[string]string{"param": name})
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
