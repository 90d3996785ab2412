package handler

import (
	"net/http"

	"medstock/internal/middleware"
	"medstock/internal/model"
	"medstock/internal/service"
	"medstock/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
}

func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	inventory := router.Group("/api/inventory")
	inventory.Use(middleware.RequireRole(model.RoleSupervisor))
	{
		inventory.GET("", h.List)
		inventory.GET("/:id/history", h.History)
		inventory.POST("/:id/usage", h.RecordUsage)
	}
}

// List retrieves the caller's stock ledgers
// @Summary      List inventory
// @Description  Returns the supervisor's per-product stock ledgers
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.InventoryResponse}
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	supervisorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	items, err := h.inventoryService.ListBySupervisor(c.Request.Context(), supervisorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve inventory: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// History retrieves one ledger's append-only history
// @Summary      Inventory history
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Inventory ID"
// @Success      200  {object}  response.Response{data=[]service.InventoryEntryResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/inventory/{id}/history [get]
func (h *InventoryHandler) History(c *gin.Context) {
	inventoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid inventory id"))
		return
	}

	supervisorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	entries, err := h.inventoryService.History(c.Request.Context(), inventoryID, supervisorID)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// RecordUsage debits stock used by the supervisor
// @Summary      Record usage
// @Description  Debits the available quantity and appends a USED history entry
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Inventory ID"
// @Param        payload  body      service.RecordUsageRequest  true  "Usage Payload"
// @Success      200      {object}  response.Response{data=service.InventoryResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/inventory/{id}/usage [post]
func (h *InventoryHandler) RecordUsage(c *gin.Context) {
	inventoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid inventory id"))
		return
	}

	var req service.RecordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	supervisorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	item, err := h.inventoryService.RecordUsage(c.Request.Context(), inventoryID, supervisorID, req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}
