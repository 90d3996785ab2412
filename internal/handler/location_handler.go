package handler

import (
	"net/http"

	"medstock/internal/middleware"
	"medstock/internal/model"
	"medstock/internal/service"
	"medstock/pkg/response"

	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	locationService service.LocationService
}

func NewLocationHandler(locationService service.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

func (h *LocationHandler) RegisterRoutes(router *gin.RouterGroup) {
	locations := router.Group("/api/locations")
	{
		// Registration forms need the list before any login exists
		locations.GET("", h.List)
		locations.POST("", middleware.RequireRole(model.RoleAdmin), h.Create)
	}
}

// List retrieves every registered location
// @Summary      List locations
// @Tags         locations
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.LocationResponse}
// @Router       /api/locations [get]
func (h *LocationHandler) List(c *gin.Context) {
	locations, err := h.locationService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve locations: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, locations))
}

// Create adds a location
// @Summary      Create location
// @Tags         locations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateLocationRequest  true  "Create Location Payload"
// @Success      201      {object}  response.Response{data=service.LocationResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/locations [post]
func (h *LocationHandler) Create(c *gin.Context) {
	var req service.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	adminID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	location, err := h.locationService.Create(c.Request.Context(), adminID, req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, location))
}
