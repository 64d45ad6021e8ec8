package handler

import (
	"github.com/gin-gonic/gin"

	"quotedesk_backend/internal/quotes/transport"
	"quotedesk_backend/platform/httpkit"
)

// AddGroup handles POST /api/v1/quotes/:id/groups
func (h *Handler) AddGroup(c *gin.Context) {
	ids, ok := parseIDs(c, "id")
	if !ok {
		return
	}
	var req transport.AddGroupRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.AddGroup(c.Request.Context(), ids[0], tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateGroup handles PATCH /api/v1/quotes/:id/groups/:groupId
func (h *Handler) UpdateGroup(c *gin.Context) {
	ids, ok := parseIDs(c, "id", "groupId")
	if !ok {
		return
	}
	var req transport.UpdateGroupRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.UpdateGroup(c.Request.Context(), ids[0], ids[1], tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RemoveGroup handles DELETE /api/v1/quotes/:id/groups/:groupId?version=N
func (h *Handler) RemoveGroup(c *gin.Context) {
	ids, ok := parseIDs(c, "id", "groupId")
	if !ok {
		return
	}
	version, ok := h.bindVersion(c)
	if !ok {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.RemoveGroup(c.Request.Context(), ids[0], ids[1], tenantID, version)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AddItem handles POST /api/v1/quotes/:id/groups/:groupId/items
func (h *Handler) AddItem(c *gin.Context) {
	ids, ok := parseIDs(c, "id", "groupId")
	if !ok {
		return
	}
	var req transport.AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.AddItem(c.Request.Context(), ids[0], ids[1], tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateItem handles PATCH /api/v1/quotes/:id/groups/:groupId/items/:itemId
func (h *Handler) UpdateItem(c *gin.Context) {
	ids, ok := parseIDs(c, "id", "groupId", "itemId")
	if !ok {
		return
	}
	var req transport.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.UpdateItem(c.Request.Context(), ids[0], ids[1], ids[2], tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RemoveItem handles DELETE /api/v1/quotes/:id/groups/:groupId/items/:itemId?version=N
func (h *Handler) RemoveItem(c *gin.Context) {
	ids, ok := parseIDs(c, "id", "groupId", "itemId")
	if !ok {
		return
	}
	version, ok := h.bindVersion(c)
	if !ok {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.RemoveItem(c.Request.Context(), ids[0], ids[1], ids[2], tenantID, version)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AddDetail handles POST /api/v1/quotes/:id/groups/:groupId/items/:itemId/details
func (h *Handler) AddDetail(c *gin.Context) {
	ids, ok := parseIDs(c, "id", "groupId", "itemId")
	if !ok {
		return
	}
	var req transport.AddDetailRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.AddDetail(c.Request.Context(), ids[0], ids[1], ids[2], tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateDetail handles PATCH .../details/:detailId
func (h *Handler) UpdateDetail(c *gin.Context) {
	ids, ok := parseIDs(c, "id", "groupId", "itemId", "detailId")
	if !ok {
		return
	}
	var req transport.UpdateDetailRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.UpdateDetail(c.Request.Context(), ids[0], ids[1], ids[2], ids[3], tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RemoveDetail handles DELETE .../details/:detailId?version=N
func (h *Handler) RemoveDetail(c *gin.Context) {
	ids, ok := parseIDs(c, "id", "groupId", "itemId", "detailId")
	if !ok {
		return
	}
	version, ok := h.bindVersion(c)
	if !ok {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.RemoveDetail(c.Request.Context(), ids[0], ids[1], ids[2], ids[3], tenantID, version)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
