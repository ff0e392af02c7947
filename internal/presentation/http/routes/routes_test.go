package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dentacare/clinic-api/internal/application/service"
	"github.com/dentacare/clinic-api/internal/config"
	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/enum"
	"github.com/dentacare/clinic-api/internal/domain/repository"
	"github.com/dentacare/clinic-api/internal/presentation/http/handler"
	"github.com/dentacare/clinic-api/pkg/email"
	"github.com/dentacare/clinic-api/pkg/money"
	"github.com/dentacare/clinic-api/pkg/pagination"
	"github.com/dentacare/clinic-api/pkg/printer"
	"github.com/dentacare/clinic-api/pkg/sms"
	"github.com/dentacare/clinic-api/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// store is a minimal in-memory backend for exercising the HTTP surface.
type store struct {
	mu           sync.Mutex
	bills        map[uuid.UUID]*entity.Bill
	appointments map[uuid.UUID]*entity.Appointment
	keys         map[string]entity.IdempotencyKey
}

type billRepo struct{ s *store }

func (r billRepo) CreateForAppointment(ctx context.Context, bill *entity.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	appt, ok := r.s.appointments[bill.AppointmentID]
	if !ok {
		return repository.ErrAppointmentMissing
	}
	if appt.HasBill {
		return repository.ErrBillExists
	}
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	r.s.bills[bill.ID] = bill.Clone()
	id := bill.ID
	appt.HasBill, appt.BillID = true, &id
	return nil
}

func (r billRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.bills[id]; ok {
		return b.Clone(), nil
	}
	return nil, nil
}

func (r billRepo) GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*entity.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bills {
		if b.AppointmentID == appointmentID {
			return b.Clone(), nil
		}
	}
	return nil, nil
}

func (r billRepo) SavePayment(ctx context.Context, bill *entity.Bill, entry *entity.PaymentHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if stored, ok := r.s.bills[bill.ID]; !ok || stored.Version != bill.Version {
		return repository.ErrConcurrentUpdate
	}
	bill.Version++
	r.s.bills[bill.ID] = bill.Clone()
	return nil
}

func (r billRepo) all() []entity.Bill {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.Bill, 0, len(r.s.bills))
	for _, b := range r.s.bills {
		out = append(out, *b.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r billRepo) List(ctx context.Context, params *repository.BillFilterParams) ([]entity.Bill, int64, error) {
	var out []entity.Bill
	for _, b := range r.all() {
		if params.StartDate != nil && b.CreatedAt.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && b.CreatedAt.After(*params.EndDate) {
			continue
		}
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (r billRepo) ListWithCursor(ctx context.Context, params *repository.BillCursorFilterParams) ([]entity.Bill, error) {
	return r.all(), nil
}

func (r billRepo) ListOutstanding(ctx context.Context, params *pagination.PaginationParams) ([]entity.Bill, int64, error) {
	var out []entity.Bill
	for _, b := range r.all() {
		if b.OutstandingBalance() > 0 {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (r billRepo) FindUnlinked(ctx context.Context, limit int) ([]entity.Bill, error) {
	return nil, nil
}

func (r billRepo) ListPayments(ctx context.Context, from, to time.Time) ([]entity.PaymentHistory, error) {
	var out []entity.PaymentHistory
	for _, b := range r.all() {
		for _, p := range b.PaymentHistory {
			if !p.PaidAt.Before(from) && p.PaidAt.Before(to) {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

type appointmentRepo struct{ s *store }

func (r appointmentRepo) Create(ctx context.Context, a *entity.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	r.s.appointments[a.ID] = &cp
	return nil
}

func (r appointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.appointments[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r appointmentRepo) Update(ctx context.Context, a *entity.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *a
	r.s.appointments[a.ID] = &cp
	return nil
}

func (r appointmentRepo) List(ctx context.Context, params *repository.AppointmentFilterParams) ([]entity.Appointment, int64, error) {
	return nil, 0, nil
}

func (r appointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.AppointmentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.appointments[id]; ok {
		a.Status = status
		return nil
	}
	return repository.ErrAppointmentMissing
}

func (r appointmentRepo) LinkBill(ctx context.Context, id uuid.UUID, billID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.appointments[id]; ok {
		a.HasBill, a.BillID = true, &billID
		return nil
	}
	return repository.ErrAppointmentMissing
}

type patientRepo struct{}

func (patientRepo) Create(ctx context.Context, p *entity.Patient) error {
	p.ID = uuid.New()
	return nil
}
func (patientRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	return nil, nil
}
func (patientRepo) Update(ctx context.Context, p *entity.Patient) error { return nil }
func (patientRepo) List(ctx context.Context, params *repository.PatientFilterParams) ([]entity.Patient, int64, error) {
	return nil, 0, nil
}

type keyRepo struct{ s *store }

func (r keyRepo) GetByKey(ctx context.Context, key, owner string) (*entity.IdempotencyKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if k, ok := r.s.keys[owner+"|"+key]; ok {
		return &k, nil
	}
	return nil, nil
}

func (r keyRepo) Create(ctx context.Context, k *entity.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.keys[k.Owner+"|"+k.Key] = *k
	return nil
}

func (r keyRepo) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

type testServer struct {
	router *gin.Engine
	store  *store
	jwt    *utils.JWTManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &store{
		bills:        map[uuid.UUID]*entity.Bill{},
		appointments: map[uuid.UUID]*entity.Appointment{},
		keys:         map[string]entity.IdempotencyKey{},
	}
	bills := billRepo{s}
	appointments := appointmentRepo{s}
	cfg := &config.Config{App: config.AppConfig{Name: "clinic-api"}}
	header := entity.ReceiptHeader{ClinicName: "DentaCare Dental Clinic"}

	notifications := service.NewNotificationService(bills, sms.NewNullSender(), email.NewEmailService(email.EmailConfig{}), header, 7)
	t.Cleanup(notifications.Wait)
	printerService := service.NewPrinterService(printer.NewNullPrinter(), bills, header, "none")
	jwtManager := utils.NewJWTManager("test-secret", time.Hour)

	router := Setup(&Handlers{
		Billing:     handler.NewBillingHandler(service.NewBillingService(bills, appointments, notifications, 3), printerService, notifications),
		Appointment: handler.NewAppointmentHandler(service.NewAppointmentService(appointments, patientRepo{}, bills)),
		Patient:     handler.NewPatientHandler(service.NewPatientService(patientRepo{})),
		Dashboard:   handler.NewDashboardHandler(service.NewDashboardService(nil)),
		Report:      handler.NewReportHandler(service.NewReportService(bills)),
		Printer:     handler.NewPrinterHandler(printerService),
	}, &Deps{JWTManager: jwtManager, Cfg: cfg, IdempotencyRepo: keyRepo{s}})

	return &testServer{router: router, store: s, jwt: jwtManager}
}

func (ts *testServer) seedAppointment() uuid.UUID {
	a := &entity.Appointment{
		ID:              uuid.New(),
		PatientName:     "Maria Santos",
		PatientPhone:    "09171234567",
		AppointmentDate: time.Now().UTC(),
		Status:          enum.AppointmentStatusCompleted,
		ServiceDetails: []entity.ServiceDetail{
			{
				Name:          "Composite Filling",
				PricingModel:  enum.PricingModelPerTooth,
				BasePrice:     money.NewPrice(18000),
				SelectedTeeth: entity.TeethList{"11", "12"},
			},
			{
				Name:         "Oral Prophylaxis",
				PricingModel: enum.PricingModelPerSession,
				BasePrice:    money.NewPrice(80000),
			},
		},
	}
	ts.store.appointments[a.ID] = a
	return a.ID
}

type call struct {
	method, path, body string
	headers            map[string]string
}

func (ts *testServer) do(c call) *httptest.ResponseRecorder {
	req := httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

type billBody struct {
	Bill struct {
		ID                 uuid.UUID `json:"id"`
		Status             string    `json:"status"`
		TotalAmount        float64   `json:"totalAmount"`
		PaidAmount         float64   `json:"paidAmount"`
		OutstandingBalance float64   `json:"outstandingBalance"`
		Version            int64     `json:"version"`
		Items              []struct {
			ServiceName string  `json:"serviceName"`
			Quantity    int     `json:"quantity"`
			Subtotal    float64 `json:"subtotal"`
		} `json:"items"`
		PaymentHistory []struct {
			Amount      float64 `json:"amount"`
			ProcessedBy string  `json:"processedBy"`
		} `json:"paymentHistory"`
		View struct {
			Status string `json:"status"`
			Total  string `json:"total"`
			Items  []struct {
				QuantityLabel string `json:"quantityLabel"`
				Teeth         string `json:"teeth"`
			} `json:"items"`
		} `json:"view"`
	} `json:"bill"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (ts *testServer) createBill(t *testing.T, appointmentID uuid.UUID) billBody {
	t.Helper()
	w := ts.do(call{
		method:  http.MethodPost,
		path:    "/api/v1/billing",
		body:    `{"appointmentId":"` + appointmentID.String() + `","paidAmount":0,"createdBy":"Front Desk"}`,
		headers: map[string]string{"Idempotency-Key": uuid.NewString()},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[billBody](t, w)
}

func TestCreateBillResolvesItemsFromAppointment(t *testing.T) {
	ts := newTestServer(t)
	apptID := ts.seedAppointment()

	body := ts.createBill(t, apptID)

	assert.Equal(t, "pending", body.Bill.Status)
	assert.Equal(t, 1160.0, body.Bill.TotalAmount)
	assert.Equal(t, 1160.0, body.Bill.OutstandingBalance)
	require.Len(t, body.Bill.Items, 2)
	assert.Equal(t, 2, body.Bill.Items[0].Quantity)
	assert.Equal(t, 360.0, body.Bill.Items[0].Subtotal)
	assert.Equal(t, "₱1,160.00", body.Bill.View.Total)
	assert.Equal(t, "11, 12", body.Bill.View.Items[0].Teeth)

	w := ts.do(call{method: http.MethodGet, path: "/api/v1/appointments/" + apptID.String()})
	require.Equal(t, http.StatusOK, w.Code)
	appt := decode[struct {
		Data struct {
			HasBill bool      `json:"has_bill"`
			BillID  uuid.UUID `json:"billId"`
		} `json:"data"`
	}](t, w)
	assert.True(t, appt.Data.HasBill)
	assert.Equal(t, body.Bill.ID, appt.Data.BillID)
}

func TestCreateBillRecomputesClientItems(t *testing.T) {
	ts := newTestServer(t)
	apptID := ts.seedAppointment()

	w := ts.do(call{
		method: http.MethodPost,
		path:   "/api/v1/billing",
		body: `{"appointmentId":"` + apptID.String() + `","totalAmount":1,
			"items":[{"serviceName":"Extraction","quantity":2,"unitPrice":"750.50","subtotal":3}]}`,
		headers: map[string]string{"Idempotency-Key": "create-1"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode[billBody](t, w)
	assert.Equal(t, 1501.0, body.Bill.TotalAmount)
}

func TestCreateBillWithoutIdempotencyKey(t *testing.T) {
	ts := newTestServer(t)
	apptID := ts.seedAppointment()
	req := call{method: http.MethodPost, path: "/api/v1/billing", body: `{"appointmentId":"` + apptID.String() + `"}`}

	w := ts.do(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 1160.0, decode[billBody](t, w).Bill.TotalAmount)
	assert.Empty(t, w.Header().Get("X-Idempotency-Replayed"))

	w = ts.do(req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "BILL_ALREADY_EXISTS", decode[errorBody](t, w).Code)
	assert.Len(t, ts.store.bills, 1)
}

func TestCreateBillRejectsOversizedItems(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name string
		item string
		code int
	}{
		{"unit price wraps int64", `{"serviceName":"Crown","quantity":1,"unitPrice":"184467440737096516.16"}`, http.StatusUnprocessableEntity},
		{"unit price above limit", `{"serviceName":"Crown","quantity":1,"unitPrice":1000000000.01}`, http.StatusUnprocessableEntity},
		{"subtotal above limit", `{"serviceName":"Crown","quantity":1000,"unitPrice":1000001}`, http.StatusUnprocessableEntity},
		{"quantity above limit", `{"serviceName":"Crown","quantity":5000,"unitPrice":100}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apptID := ts.seedAppointment()
			w := ts.do(call{method: http.MethodPost, path: "/api/v1/billing",
				body: `{"appointmentId":"` + apptID.String() + `","items":[` + tc.item + `]}`})
			assert.Equal(t, tc.code, w.Code, w.Body.String())
		})
	}
	assert.Empty(t, ts.store.bills)
}

func TestCreateBillReplaysRetriedRequest(t *testing.T) {
	ts := newTestServer(t)
	apptID := ts.seedAppointment()
	req := call{
		method:  http.MethodPost,
		path:    "/api/v1/billing",
		body:    `{"appointmentId":"` + apptID.String() + `"}`,
		headers: map[string]string{"Idempotency-Key": "retry-me"},
	}

	first := ts.do(req)
	second := ts.do(req)

	require.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Len(t, ts.store.bills, 1)
}

func TestCreateBillErrors(t *testing.T) {
	ts := newTestServer(t)
	apptID := ts.seedAppointment()
	ts.createBill(t, apptID)

	cases := []struct {
		name string
		body string
		code int
		kind string
	}{
		{"duplicate", `{"appointmentId":"` + apptID.String() + `"}`, http.StatusConflict, "BILL_ALREADY_EXISTS"},
		{"missing appointment", `{}`, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{"unknown appointment", `{"appointmentId":"` + uuid.NewString() + `"}`, http.StatusNotFound, "NOT_FOUND"},
		{"prepaid", `{"appointmentId":"` + ts.seedAppointment().String() + `","paidAmount":100}`, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{"malformed", `{"appointmentId":`, http.StatusBadRequest, "BAD_REQUEST"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ts.do(call{method: http.MethodPost, path: "/api/v1/billing", body: tc.body,
				headers: map[string]string{"Idempotency-Key": uuid.NewString()}})
			assert.Equal(t, tc.code, w.Code, w.Body.String())
			body := decode[errorBody](t, w)
			assert.Equal(t, tc.kind, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestPaymentFlow(t *testing.T) {
	ts := newTestServer(t)
	bill := ts.createBill(t, ts.seedAppointment())
	path := "/api/v1/billing/" + bill.Bill.ID.String()

	w := ts.do(call{method: http.MethodPut, path: path,
		body: `{"paidAmount":500,"paymentMethod":"cash","updatedBy":"Ana","newPayment":{"amount":500,"paymentMethod":"cash","notes":"downpayment"}}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	partial := decode[billBody](t, w)
	assert.Equal(t, "partial", partial.Bill.Status)
	assert.Equal(t, 660.0, partial.Bill.OutstandingBalance)
	require.Len(t, partial.Bill.PaymentHistory, 1)
	assert.Equal(t, "Ana", partial.Bill.PaymentHistory[0].ProcessedBy)

	// cumulative form: the client sends the new paid total
	w = ts.do(call{method: http.MethodPut, path: path, body: `{"paidAmount":1160,"paymentMethod":"gcash"}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid := decode[billBody](t, w)
	assert.Equal(t, "paid", paid.Bill.Status)
	assert.Equal(t, "PAID", paid.Bill.View.Status)
	assert.Len(t, paid.Bill.PaymentHistory, 2)

	w = ts.do(call{method: http.MethodPut, path: path, body: `{"paymentMethod":"cash","newPayment":{"amount":1}}`})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_PAYMENT_AMOUNT", decode[errorBody](t, w).Code)
}

func TestPaymentRejectsStaleCumulativeTotal(t *testing.T) {
	ts := newTestServer(t)
	bill := ts.createBill(t, ts.seedAppointment())

	w := ts.do(call{method: http.MethodPut, path: "/api/v1/billing/" + bill.Bill.ID.String(),
		body: `{"paidAmount":999,"paymentMethod":"cash","newPayment":{"amount":100}}`})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "STALE_PAYMENT", decode[errorBody](t, w).Code)
}

func TestPaymentRejectsOutOfRangeAmount(t *testing.T) {
	ts := newTestServer(t)
	bill := ts.createBill(t, ts.seedAppointment())
	path := "/api/v1/billing/" + bill.Bill.ID.String()

	for _, body := range []string{
		`{"paymentMethod":"cash","newPayment":{"amount":184467440737096516.16}}`,
		`{"paymentMethod":"cash","paidAmount":"100000000000000000"}`,
	} {
		w := ts.do(call{method: http.MethodPut, path: path, body: body})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, body)
		assert.Equal(t, "VALIDATION_FAILED", decode[errorBody](t, w).Code)
	}

	w := ts.do(call{method: http.MethodGet, path: path})
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[billBody](t, w)
	assert.Equal(t, 0.0, got.Bill.PaidAmount)
	assert.Empty(t, got.Bill.PaymentHistory)
}

func TestPaymentRejectsUnknownMethod(t *testing.T) {
	ts := newTestServer(t)
	bill := ts.createBill(t, ts.seedAppointment())

	w := ts.do(call{method: http.MethodPut, path: "/api/v1/billing/" + bill.Bill.ID.String(),
		body: `{"paymentMethod":"cheque","newPayment":{"amount":100}}`})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_PAYMENT_METHOD", decode[errorBody](t, w).Code)
}

func TestStaffTokenNamesTheCashier(t *testing.T) {
	ts := newTestServer(t)
	bill := ts.createBill(t, ts.seedAppointment())
	token, err := ts.jwt.GenerateStaffToken("Dr. Reyes", "cashier")
	require.NoError(t, err)

	w := ts.do(call{method: http.MethodPost, path: "/api/v1/billing/" + bill.Bill.ID.String() + "/mark-paid",
		body:    `{"paymentMethod":"card","processedBy":"someone else"}`,
		headers: map[string]string{"Authorization": "Bearer " + token}})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[billBody](t, w)
	assert.Equal(t, "paid", body.Bill.Status)
	require.Len(t, body.Bill.PaymentHistory, 1)
	assert.Equal(t, "Dr. Reyes", body.Bill.PaymentHistory[0].ProcessedBy)
}

func TestGetBill(t *testing.T) {
	ts := newTestServer(t)
	apptID := ts.seedAppointment()
	bill := ts.createBill(t, apptID)

	w := ts.do(call{method: http.MethodGet, path: "/api/v1/billing/" + bill.Bill.ID.String()})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, bill.Bill.ID, decode[billBody](t, w).Bill.ID)

	w = ts.do(call{method: http.MethodGet, path: "/api/v1/billing/appointment/" + apptID.String()})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, bill.Bill.ID, decode[billBody](t, w).Bill.ID)

	w = ts.do(call{method: http.MethodGet, path: "/api/v1/billing/" + uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[errorBody](t, w).Code)

	w = ts.do(call{method: http.MethodGet, path: "/api/v1/billing/not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListBills(t *testing.T) {
	ts := newTestServer(t)
	ts.createBill(t, ts.seedAppointment())
	ts.createBill(t, ts.seedAppointment())

	w := ts.do(call{method: http.MethodGet, path: "/api/v1/billing?page=1&per_page=10"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Success bool              `json:"success"`
		Data    []json.RawMessage `json:"data"`
		Meta    struct {
			Pagination struct {
				Total int64 `json:"total"`
			} `json:"pagination"`
		} `json:"meta"`
	}](t, w)
	assert.True(t, body.Success)
	assert.Len(t, body.Data, 2)
	assert.Equal(t, int64(2), body.Meta.Pagination.Total)

	w = ts.do(call{method: http.MethodGet, path: "/api/v1/billing?status=settled"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrintReceiptWithoutPrinter(t *testing.T) {
	ts := newTestServer(t)
	bill := ts.createBill(t, ts.seedAppointment())

	w := ts.do(call{method: http.MethodPost, path: "/api/v1/billing/" + bill.Bill.ID.String() + "/receipt/print"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Maria Santos")
}

func TestEmailReceiptWithoutSMTP(t *testing.T) {
	ts := newTestServer(t)
	bill := ts.createBill(t, ts.seedAppointment())

	w := ts.do(call{method: http.MethodPost, path: "/api/v1/billing/" + bill.Bill.ID.String() + "/receipt/email"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", decode[errorBody](t, w).Code)
}

func TestBillingReportDownload(t *testing.T) {
	ts := newTestServer(t)
	ts.createBill(t, ts.seedAppointment())
	today := time.Now().UTC().Format("2006-01-02")

	w := ts.do(call{method: http.MethodGet, path: "/api/v1/reports/billing.xlsx?from=" + today + "&to=" + today})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "billing-")
	assert.NotEmpty(t, w.Body.Bytes())

	w = ts.do(call{method: http.MethodGet, path: "/api/v1/reports/billing.xlsx?from=03-01-2026"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompleteAndLinkAppointment(t *testing.T) {
	ts := newTestServer(t)
	apptID := ts.seedAppointment()
	bill := ts.createBill(t, apptID)

	// a retried link after the bill already linked it is a no-op
	w := ts.do(call{method: http.MethodPut, path: "/api/v1/appointments/" + apptID.String(),
		body: `{"has_bill":true,"billId":"` + bill.Bill.ID.String() + `"}`})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(call{method: http.MethodPut, path: "/api/v1/appointments/" + apptID.String(),
		body: `{"has_bill":true,"billId":"` + uuid.NewString() + `"}`})
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())

	w = ts.do(call{method: http.MethodPut, path: "/api/v1/appointments/" + apptID.String(), body: `{"has_bill":false}`})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
