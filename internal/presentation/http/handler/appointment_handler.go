package handler

import (
	"github.com/dentacare/clinic-api/internal/application/service"
	"github.com/dentacare/clinic-api/internal/domain/enum"
	"github.com/dentacare/clinic-api/internal/presentation/http/dto/request"
	"github.com/dentacare/clinic-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
)

// AppointmentHandler handles appointment-related HTTP requests
type AppointmentHandler struct {
	appointmentService *service.AppointmentService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(appointmentService *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// Create handles booking an appointment
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req request.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	appt, err := h.appointmentService.CreateAppointment(c.Request.Context(), &service.CreateAppointmentInput{
		PatientID:       req.PatientID,
		PatientName:     req.PatientName,
		PatientEmail:    req.PatientEmail,
		PatientPhone:    req.PatientPhone,
		AppointmentDate: req.AppointmentDate,
		Service:         req.Service,
		ServiceDetails:  req.ServiceDetails,
		Status:          req.Status,
		Notes:           req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Appointment created successfully", appt)
}

// Get handles getting an appointment by ID
func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "appointment")
	if !ok {
		return
	}

	appt, err := h.appointmentService.GetAppointment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Appointment retrieved successfully", appt)
}

// List handles listing appointments
func (h *AppointmentHandler) List(c *gin.Context) {
	input := &service.ListAppointmentsInput{
		Pagination: pageParams(c),
		Search:     c.Query("search"),
		PatientID:  queryUUID(c, "patient_id"),
		HasBill:    queryBool(c, "has_bill"),
		StartDate:  queryDate(c, "start_date"),
		EndDate:    queryDate(c, "end_date"),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status, err := enum.ParseAppointmentStatus(statusStr)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		input.Status = &status
	}
	if input.EndDate != nil {
		end := input.EndDate.AddDate(0, 0, 1).Add(-1)
		input.EndDate = &end
	}

	appointments, page, err := h.appointmentService.ListAppointments(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, "Appointments retrieved successfully", appointments, page, nil)
}

// Update applies a partial update, including the bill link
func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "appointment")
	if !ok {
		return
	}

	var req request.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	appt, err := h.appointmentService.UpdateAppointment(c.Request.Context(), &service.UpdateAppointmentInput{
		ID:             id,
		HasBill:        req.HasBill,
		BillID:         req.BillID,
		Status:         req.Status,
		Notes:          req.Notes,
		ServiceDetails: req.ServiceDetails,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Appointment updated successfully", appt)
}

// Complete marks an appointment completed so it can be billed
func (h *AppointmentHandler) Complete(c *gin.Context) {
	id, ok := parseID(c, "id", "appointment")
	if !ok {
		return
	}

	appt, err := h.appointmentService.CompleteAppointment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Appointment completed", appt)
}
