package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"corpcab/internal/domain"
	"corpcab/internal/service"
)

// AdminHandler handles HTTP requests for the admin console.
type AdminHandler struct {
	adminService   *service.AdminService
	bookingService *service.BookingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService, bookingService *service.BookingService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		bookingService: bookingService,
	}
}

// ServiceAreaRequest is the HTTP request body for creating or updating an area.
type ServiceAreaRequest struct {
	Name   string `json:"name"`
	City   string `json:"city,omitempty"`
	Active bool   `json:"active"`
}

// ServiceAreaResponse is the HTTP representation of a service area.
type ServiceAreaResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	City      string `json:"city,omitempty"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ContactRequest is the HTTP request body for the public contact form.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactResponse is the HTTP representation of a contact message.
type ContactResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// SetStatusRequest is the HTTP request body for an admin status override.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// ListPublicAreas handles GET /v1/areas (public, active areas only)
func (h *AdminHandler) ListPublicAreas(c *gin.Context) {
	areas, err := h.adminService.ListActiveAreas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, areaResponses(areas))
}

// ListAreas handles GET /v1/admin/areas
func (h *AdminHandler) ListAreas(c *gin.Context) {
	areas, err := h.adminService.ListAreas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, areaResponses(areas))
}

// CreateArea handles POST /v1/admin/areas
func (h *AdminHandler) CreateArea(c *gin.Context) {
	var req ServiceAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	area, err := h.adminService.CreateArea(c.Request.Context(), service.ServiceAreaRequest{
		Name:   req.Name,
		City:   req.City,
		Active: req.Active,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, areaResponse(area))
}

// UpdateArea handles PUT /v1/admin/areas/:id
func (h *AdminHandler) UpdateArea(c *gin.Context) {
	var req ServiceAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	area, err := h.adminService.UpdateArea(c.Request.Context(), c.Param("id"), service.ServiceAreaRequest{
		Name:   req.Name,
		City:   req.City,
		Active: req.Active,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, areaResponse(area))
}

// DeleteArea handles DELETE /v1/admin/areas/:id
func (h *AdminHandler) DeleteArea(c *gin.Context) {
	if err := h.adminService.DeleteArea(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SubmitContact handles POST /v1/contact (public)
func (h *AdminHandler) SubmitContact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.adminService.SubmitContact(c.Request.Context(), service.ContactRequest{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, contactResponse(msg))
}

// ListContacts handles GET /v1/admin/contacts
func (h *AdminHandler) ListContacts(c *gin.Context) {
	messages, err := h.adminService.ListContacts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]ContactResponse, 0, len(messages))
	for _, msg := range messages {
		out = append(out, contactResponse(msg))
	}
	respondJSON(c, http.StatusOK, out)
}

// ResolveContact handles POST /v1/admin/contacts/:id/resolve
func (h *AdminHandler) ResolveContact(c *gin.Context) {
	if err := h.adminService.ResolveContact(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListBookings handles GET /v1/admin/bookings
func (h *AdminHandler) ListBookings(c *gin.Context) {
	rides, err := h.adminService.ListBookings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, rideResponses(rides))
}

// SetBookingStatus handles POST /v1/admin/bookings/:id/status
func (h *AdminHandler) SetBookingStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.bookingService.AdminSetStatus(c.Request.Context(), c.Param("id"), domain.RideStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, rideResponse(ride))
}

func areaResponse(area *domain.ServiceArea) ServiceAreaResponse {
	resp := ServiceAreaResponse{
		ID:     area.ID,
		Name:   area.Name,
		City:   area.City,
		Active: area.Active,
	}
	if !area.CreatedAt.IsZero() {
		resp.CreatedAt = area.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

func areaResponses(areas []*domain.ServiceArea) []ServiceAreaResponse {
	out := make([]ServiceAreaResponse, 0, len(areas))
	for _, area := range areas {
		out = append(out, areaResponse(area))
	}
	return out
}

func contactResponse(msg *domain.ContactMessage) ContactResponse {
	return ContactResponse{
		ID:        msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Message:   msg.Message,
		Status:    string(msg.Status),
		CreatedAt: msg.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
