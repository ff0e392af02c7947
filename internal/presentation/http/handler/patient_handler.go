package handler

import (
	"time"

	"github.com/dentacare/clinic-api/internal/application/service"
	"github.com/dentacare/clinic-api/internal/presentation/http/dto/request"
	"github.com/dentacare/clinic-api/internal/presentation/http/dto/response"
	"github.com/dentacare/clinic-api/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// PatientHandler handles patient-related HTTP requests
type PatientHandler struct {
	patientService *service.PatientService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(patientService *service.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

// Create handles creating a patient
func (h *PatientHandler) Create(c *gin.Context) {
	input, ok := bindPatient(c)
	if !ok {
		return
	}

	patient, err := h.patientService.CreatePatient(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Patient created successfully", patient)
}

// Get handles getting a patient by ID
func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "patient")
	if !ok {
		return
	}

	patient, err := h.patientService.GetPatient(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Patient retrieved successfully", patient)
}

// Update handles updating a patient
func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "patient")
	if !ok {
		return
	}
	input, ok := bindPatient(c)
	if !ok {
		return
	}

	patient, err := h.patientService.UpdatePatient(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Patient updated successfully", patient)
}

// List handles listing patients with an optional name, email or phone search
func (h *PatientHandler) List(c *gin.Context) {
	patients, page, err := h.patientService.ListPatients(c.Request.Context(), c.Query("search"), pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, "Patients retrieved successfully", patients, page, nil)
}

func bindPatient(c *gin.Context) (*service.PatientInput, bool) {
	var req request.PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return nil, false
	}

	input := &service.PatientInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if req.BirthDate != nil && *req.BirthDate != "" {
		birthDate, err := time.Parse(dateLayout, *req.BirthDate)
		if err != nil {
			response.ValidationError(c, []apperror.FieldError{{Field: "birthDate", Message: "birthDate must be YYYY-MM-DD"}})
			return nil, false
		}
		input.BirthDate = &birthDate
	}
	return input, true
}
