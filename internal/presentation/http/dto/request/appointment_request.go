package request

import (
	"time"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/enum"
	"github.com/google/uuid"
)

// CreateAppointmentRequest represents an appointment booking request
type CreateAppointmentRequest struct {
	PatientID       *uuid.UUID             `json:"patientId"`
	PatientName     string                 `json:"patientName" binding:"max=255"`
	PatientEmail    string                 `json:"patientEmail" binding:"omitempty,email"`
	PatientPhone    string                 `json:"patientPhone" binding:"max=50"`
	AppointmentDate time.Time              `json:"appointmentDate"`
	Service         string                 `json:"service" binding:"max=255"`
	ServiceDetails  []entity.ServiceDetail `json:"serviceDetails"`
	Status          enum.AppointmentStatus `json:"status"`
	Notes           string                 `json:"notes"`
}

// UpdateAppointmentRequest is a partial appointment update, including the
// has_bill/billId link written after a bill is created.
type UpdateAppointmentRequest struct {
	HasBill        *bool                   `json:"has_bill"`
	BillID         *uuid.UUID              `json:"billId"`
	Status         *enum.AppointmentStatus `json:"status"`
	Notes          *string                 `json:"notes"`
	ServiceDetails []entity.ServiceDetail  `json:"serviceDetails"`
}
