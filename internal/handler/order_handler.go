package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"medstock/internal/middleware"
	"medstock/internal/model"
	"medstock/internal/service"
	"medstock/pkg/pagination"
	"medstock/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := middleware.RequireRole(model.RoleSupervisor, model.RoleAdmin, model.RoleVendor)

	orders := router.Group("/api/orders")
	{
		orders.POST("", middleware.RequireRole(model.RoleSupervisor), h.Create)
		orders.GET("", anyRole, h.List)
		orders.GET("/:id", anyRole, h.Get)
		orders.GET("/:id/invoice", anyRole, h.InvoiceImage)

		orders.POST("/:id/approve", middleware.RequireRole(model.RoleAdmin), h.Approve)
		orders.POST("/:id/complete", middleware.RequireRole(model.RoleAdmin), h.Complete)
		orders.POST("/:id/invoice", middleware.RequireRole(model.RoleSupervisor), h.UploadInvoice)

		vendor := middleware.RequireRole(model.RoleVendor)
		orders.POST("/:id/accept", vendor, h.Accept)
		orders.POST("/:id/dispatch", vendor, h.Dispatch)
		orders.POST("/:id/transit", vendor, h.Transit)
		orders.POST("/:id/reached", vendor, h.Reached)
		orders.POST("/:id/deliver", vendor, h.Deliver)
	}
}

// Create places a new purchase order
// @Summary      Create order
// @Description  Supervisor requests a product quantity; the order starts at the ordered stage
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateOrderRequest  true  "Create Order Payload"
// @Success      201      {object}  response.Response{data=service.OrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	supervisorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), supervisorID, req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// List retrieves orders scoped to the caller's role
// @Summary      List orders
// @Description  Supervisors see their own orders, vendors their assigned ones, admins everything. Optional month/year window.
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        month  query     int  false  "Month 1-12"
// @Param        year   query     int  false  "Year"
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	role := c.GetString("userRole")

	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))
	params := pagination.Parse(c)

	orders, total, err := h.orderService.List(c.Request.Context(), role, actorID, month, year, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve orders: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	}))
}

// Get retrieves one order with its tracking stages
// @Summary      Get order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid order id"))
		return
	}

	actorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), orderID, c.GetString("userRole"), actorID)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// InvoiceImage serves the uploaded invoice blob
// @Summary      Get invoice image
// @Tags         orders
// @Security     BearerAuth
// @Produce      png
// @Param        id   path      string  true  "Order ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id}/invoice [get]
func (h *OrderHandler) InvoiceImage(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid order id"))
		return
	}

	image, err := h.orderService.InvoiceImage(c.Request.Context(), orderID)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.Data(http.StatusOK, "image/png", image)
}

type approveRequest struct {
	VendorID string `json:"vendor_id" binding:"required"`
}

// Approve moves the order to adminAccepted and assigns the vendor
// @Summary      Approve order
// @Description  Admin approves a pending order and assigns the fulfilling vendor
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string          true  "Order ID"
// @Param        payload  body      approveRequest  true  "Vendor assignment"
// @Success      200      {object}  response.Response{data=service.OrderResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/orders/{id}/approve [post]
func (h *OrderHandler) Approve(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	h.advance(c, model.StageAdminAccepted, service.AdvancePayload{VendorID: req.VendorID})
}

// Complete marks the order completed and credits the inventory ledger
// @Summary      Complete order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/orders/{id}/complete [post]
func (h *OrderHandler) Complete(c *gin.Context) {
	h.advance(c, model.StageOrderCompleted, service.AdvancePayload{})
}

// UploadInvoice attaches the invoice image and marks invoiceUploaded
// @Summary      Upload invoice
// @Tags         orders
// @Security     BearerAuth
// @Accept       mpfd
// @Produce      json
// @Param        id       path      string  true  "Order ID"
// @Param        invoice  formData  file    true  "Invoice image (jpg, jpeg, png)"
// @Success      200      {object}  response.Response{data=service.OrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/orders/{id}/invoice [post]
func (h *OrderHandler) UploadInvoice(c *gin.Context) {
	file, err := c.FormFile("invoice")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Please upload an invoice image"))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invoice must be a jpg, jpeg or png image"))
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unable to read invoice image"))
		return
	}
	defer src.Close()

	image, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unable to read invoice image"))
		return
	}

	h.advance(c, model.StageInvoiceUploaded, service.AdvancePayload{InvoiceImage: image})
}

// Accept moves the order to vendorAccepted
// @Summary      Vendor accepts order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Router       /api/orders/{id}/accept [post]
func (h *OrderHandler) Accept(c *gin.Context) {
	h.advance(c, model.StageVendorAccepted, service.AdvancePayload{})
}

// Dispatch moves the order to orderDispatched
// @Summary      Mark dispatched
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Router       /api/orders/{id}/dispatch [post]
func (h *OrderHandler) Dispatch(c *gin.Context) {
	h.advance(c, model.StageOrderDispatched, service.AdvancePayload{})
}

// Transit moves the order to inTransit
// @Summary      Mark in transit
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Router       /api/orders/{id}/transit [post]
func (h *OrderHandler) Transit(c *gin.Context) {
	h.advance(c, model.StageInTransit, service.AdvancePayload{})
}

// Reached moves the order to reached
// @Summary      Mark reached city
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Router       /api/orders/{id}/reached [post]
func (h *OrderHandler) Reached(c *gin.Context) {
	h.advance(c, model.StageReached, service.AdvancePayload{})
}

// Deliver moves the order to delivered
// @Summary      Mark delivered
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Router       /api/orders/{id}/deliver [post]
func (h *OrderHandler) Deliver(c *gin.Context) {
	h.advance(c, model.StageDelivered, service.AdvancePayload{})
}

// advance runs one stage transition for the authenticated actor and writes
// the standard envelope.
func (h *OrderHandler) advance(c *gin.Context, target model.Stage, payload service.AdvancePayload) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid order id"))
		return
	}

	actorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	order, err := h.orderService.Advance(c.Request.Context(), orderID, target, c.GetString("userRole"), actorID, payload)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}
