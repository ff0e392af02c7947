package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dentacare/clinic-api/internal/application/service"
	"github.com/dentacare/clinic-api/internal/domain/enum"
	"github.com/dentacare/clinic-api/internal/presentation/http/dto/request"
	"github.com/dentacare/clinic-api/internal/presentation/http/dto/response"
	"github.com/dentacare/clinic-api/pkg/apperror"
	"github.com/dentacare/clinic-api/pkg/money"
	"github.com/dentacare/clinic-api/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingHandler handles bill and payment HTTP requests
type BillingHandler struct {
	billingService      *service.BillingService
	printerService      *service.PrinterService
	notificationService *service.NotificationService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *service.BillingService, printerService *service.PrinterService, notificationService *service.NotificationService) *BillingHandler {
	return &BillingHandler{
		billingService:      billingService,
		printerService:      printerService,
		notificationService: notificationService,
	}
}

// Create handles bill creation for a completed appointment
func (h *BillingHandler) Create(c *gin.Context) {
	var req request.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if req.AppointmentID == uuid.Nil {
		response.ValidationError(c, []apperror.FieldError{{Field: "appointmentId", Message: "appointmentId is required"}})
		return
	}

	input := &service.CreateBillInput{
		AppointmentID: req.AppointmentID,
		PatientID:     req.PatientID,
		PatientName:   req.PatientName,
		PatientEmail:  req.PatientEmail,
		PatientPhone:  req.PatientPhone,
		Notes:         req.Notes,
		CreatedBy:     staffName(c, req.CreatedBy),
	}
	if req.PaidAmount != nil {
		cents, ok := pesosToCents(c, "paidAmount", *req.PaidAmount)
		if !ok {
			return
		}
		input.PaidAmount = cents
	}
	if req.Items != nil {
		input.Items = make([]service.BillItemInput, 0, len(req.Items))
		for i, it := range req.Items {
			unitPrice, ok := pesosToCents(c, fmt.Sprintf("items[%d].unitPrice", i), it.UnitPrice)
			if !ok {
				return
			}
			input.Items = append(input.Items, service.BillItemInput{
				ServiceName:   it.ServiceName,
				Description:   it.Description,
				PricingModel:  it.PricingModel,
				Quantity:      it.Quantity,
				UnitPrice:     unitPrice,
				SelectedTeeth: it.SelectedTeeth,
			})
		}
	}

	bill, err := h.billingService.CreateBill(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.NewBillEnvelope(bill))
}

// Update posts a payment against a bill
func (h *BillingHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "bill")
	if !ok {
		return
	}

	var req request.UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.PaymentInput{
		BillID:          id,
		ExpectedVersion: req.Version,
		Method:          req.PaymentMethod,
		BillNotes:       req.Notes,
		ProcessedBy:     staffName(c, req.UpdatedBy),
		Intent:          req.Intent,
	}
	if req.PaidAmount != nil {
		cents, ok := pesosToCents(c, "paidAmount", *req.PaidAmount)
		if !ok {
			return
		}
		input.PaidAmount = &cents
	}
	if req.NewPayment != nil {
		cents, ok := pesosToCents(c, "newPayment.amount", req.NewPayment.Amount)
		if !ok {
			return
		}
		input.Amount = &cents
		input.PaymentNotes = req.NewPayment.Notes
		if req.NewPayment.PaymentMethod != "" {
			input.Method = req.NewPayment.PaymentMethod
		}
	}

	bill, err := h.billingService.ApplyPayment(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewBillEnvelope(bill))
}

// MarkPaid settles the remaining balance of a bill
func (h *BillingHandler) MarkPaid(c *gin.Context) {
	id, ok := parseID(c, "id", "bill")
	if !ok {
		return
	}

	var req request.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request body")
		return
	}

	bill, err := h.billingService.MarkAsPaid(c.Request.Context(), id, req.PaymentMethod, staffName(c, req.ProcessedBy), req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewBillEnvelope(bill))
}

// Get handles getting a bill by ID
func (h *BillingHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "bill")
	if !ok {
		return
	}

	bill, err := h.billingService.GetBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewBillEnvelope(bill))
}

// GetByAppointment returns the bill created for an appointment
func (h *BillingHandler) GetByAppointment(c *gin.Context) {
	appointmentID, ok := parseID(c, "appointmentId", "appointment")
	if !ok {
		return
	}

	bill, err := h.billingService.GetBillByAppointment(c.Request.Context(), appointmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewBillEnvelope(bill))
}

// Preview resolves what a bill for the appointment would contain without saving it
func (h *BillingHandler) Preview(c *gin.Context) {
	appointmentID, ok := parseID(c, "appointmentId", "appointment")
	if !ok {
		return
	}

	bill, err := h.billingService.PreviewBill(c.Request.Context(), appointmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewBillEnvelope(bill))
}

// List handles listing bills (supports both page-based and cursor-based pagination)
func (h *BillingHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	input := &service.ListBillsInput{
		Pagination: &pagination.UnifiedPaginationParams{
			Page:      page,
			PerPage:   perPage,
			Cursor:    c.Query("cursor"),
			Direction: pagination.CursorDirection(c.DefaultQuery("direction", "next")),
			Limit:     limit,
		},
		Search:    c.Query("search"),
		PatientID: queryUUID(c, "patient_id"),
		StartDate: queryDate(c, "start_date"),
		EndDate:   queryDate(c, "end_date"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status, err := enum.ParseBillStatus(statusStr)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		input.Status = &status
	}
	if input.EndDate != nil {
		// inclusive of the whole end day
		end := input.EndDate.AddDate(0, 0, 1).Add(-1)
		input.EndDate = &end
	}

	result, err := h.billingService.ListBills(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, "Bills retrieved successfully", response.NewBillList(result.Bills), result.Page, result.Cursor)
}

// ListOutstanding lists bills with a remaining balance, oldest first
func (h *BillingHandler) ListOutstanding(c *gin.Context) {
	result, err := h.billingService.ListOutstanding(c.Request.Context(), pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, "Outstanding bills retrieved successfully", response.NewBillList(result.Bills), result.Page, nil)
}

// PrintReceipt prints the bill's receipt on the thermal printer
func (h *BillingHandler) PrintReceipt(c *gin.Context) {
	id, ok := parseID(c, "id", "bill")
	if !ok {
		return
	}

	receipt, err := h.printerService.PrintBillReceipt(c.Request.Context(), id)
	if err != nil {
		// If receipt was built but printing failed, return receipt with warning
		if receipt != nil {
			response.OK(c, "Receipt generated but printing failed", gin.H{
				"receipt": receipt,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt printed successfully", gin.H{"receipt": receipt})
}

// EmailReceipt emails the bill's receipt to the patient
func (h *BillingHandler) EmailReceipt(c *gin.Context) {
	id, ok := parseID(c, "id", "bill")
	if !ok {
		return
	}

	if err := h.notificationService.EmailReceipt(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt emailed successfully", nil)
}

// pesosToCents writes a 422 for amounts outside the accepted range.
func pesosToCents(c *gin.Context, field string, d decimal.Decimal) (int64, bool) {
	cents, err := money.FromDecimal(d)
	if err != nil {
		response.ValidationError(c, []apperror.FieldError{{Field: field, Message: err.Error()}})
		return 0, false
	}
	return cents, true
}
