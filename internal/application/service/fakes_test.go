package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/enum"
	"github.com/dentacare/clinic-api/internal/domain/repository"
	"github.com/dentacare/clinic-api/pkg/pagination"
	"github.com/google/uuid"
)

// memStore backs the in-memory repositories. Every read returns a copy so
// services never share state with the store, as with a real database.
type memStore struct {
	mu           sync.Mutex
	bills        map[uuid.UUID]*entity.Bill
	appointments map[uuid.UUID]*entity.Appointment
	patients     map[uuid.UUID]*entity.Patient
	keys         map[string]*entity.IdempotencyKey
	savePayments int
	// beforeSave runs inside SavePayment before the version check.
	beforeSave func(bill *entity.Bill)
}

func newMemStore() *memStore {
	return &memStore{
		bills:        map[uuid.UUID]*entity.Bill{},
		appointments: map[uuid.UUID]*entity.Appointment{},
		patients:     map[uuid.UUID]*entity.Patient{},
		keys:         map[string]*entity.IdempotencyKey{},
	}
}

func copyAppointment(a *entity.Appointment) *entity.Appointment {
	out := *a
	if a.ServiceDetails != nil {
		out.ServiceDetails = append([]entity.ServiceDetail(nil), a.ServiceDetails...)
	}
	if a.BillID != nil {
		id := *a.BillID
		out.BillID = &id
	}
	return &out
}

func paginate[T any](items []T, params *pagination.PaginationParams) []T {
	params.Validate()
	start := params.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + params.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type memBillRepo struct{ s *memStore }

func (r memBillRepo) CreateForAppointment(ctx context.Context, bill *entity.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	appt, ok := r.s.appointments[bill.AppointmentID]
	if !ok {
		return repository.ErrAppointmentMissing
	}
	if appt.HasBill {
		return repository.ErrBillExists
	}
	for _, b := range r.s.bills {
		if b.AppointmentID == bill.AppointmentID {
			return repository.ErrBillExists
		}
	}
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	r.s.bills[bill.ID] = bill.Clone()
	appt.HasBill = true
	id := bill.ID
	appt.BillID = &id
	return nil
}

func (r memBillRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.bills[id]; ok {
		return b.Clone(), nil
	}
	return nil, nil
}

func (r memBillRepo) GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*entity.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bills {
		if b.AppointmentID == appointmentID {
			return b.Clone(), nil
		}
	}
	return nil, nil
}

func (r memBillRepo) SavePayment(ctx context.Context, bill *entity.Bill, entry *entity.PaymentHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.savePayments++

	stored, ok := r.s.bills[bill.ID]
	if !ok {
		return repository.ErrConcurrentUpdate
	}
	if r.s.beforeSave != nil {
		r.s.beforeSave(stored)
	}
	if stored.Version != bill.Version {
		return repository.ErrConcurrentUpdate
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.BillID = bill.ID
	bill.Version++
	r.s.bills[bill.ID] = bill.Clone()
	return nil
}

func (r memBillRepo) sorted(filter func(*entity.Bill) bool) []entity.Bill {
	var out []entity.Bill
	for _, b := range r.s.bills {
		if filter(b) {
			out = append(out, *b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r memBillRepo) List(ctx context.Context, params *repository.BillFilterParams) ([]entity.Bill, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.sorted(func(b *entity.Bill) bool {
		if params.Status != nil && b.Status != *params.Status {
			return false
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(b.PatientName), strings.ToLower(params.Search)) {
			return false
		}
		if params.StartDate != nil && b.CreatedAt.Before(*params.StartDate) {
			return false
		}
		if params.EndDate != nil && b.CreatedAt.After(*params.EndDate) {
			return false
		}
		return true
	})
	return paginate(all, params.Pagination), int64(len(all)), nil
}

func (r memBillRepo) ListWithCursor(ctx context.Context, params *repository.BillCursorFilterParams) ([]entity.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.sorted(func(*entity.Bill) bool { return true })
	if len(all) > params.Cursor.Limit+1 {
		all = all[:params.Cursor.Limit+1]
	}
	return all, nil
}

func (r memBillRepo) ListOutstanding(ctx context.Context, params *pagination.PaginationParams) ([]entity.Bill, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.sorted(func(b *entity.Bill) bool { return b.OutstandingBalance() > 0 })
	return paginate(all, params), int64(len(all)), nil
}

func (r memBillRepo) FindUnlinked(ctx context.Context, limit int) ([]entity.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.sorted(func(b *entity.Bill) bool {
		a, ok := r.s.appointments[b.AppointmentID]
		return !ok || !a.IsLinkedTo(b.ID)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r memBillRepo) ListPayments(ctx context.Context, from, to time.Time) ([]entity.PaymentHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.PaymentHistory
	for _, b := range r.s.bills {
		for _, p := range b.PaymentHistory {
			if !p.PaidAt.Before(from) && p.PaidAt.Before(to) {
				p.BillID = b.ID
				out = append(out, p)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.Before(out[j].PaidAt) })
	return out, nil
}

type memAppointmentRepo struct{ s *memStore }

func (r memAppointmentRepo) Create(ctx context.Context, a *entity.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	r.s.appointments[a.ID] = copyAppointment(a)
	return nil
}

func (r memAppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.appointments[id]; ok {
		return copyAppointment(a), nil
	}
	return nil, nil
}

func (r memAppointmentRepo) Update(ctx context.Context, a *entity.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.appointments[a.ID] = copyAppointment(a)
	return nil
}

func (r memAppointmentRepo) List(ctx context.Context, params *repository.AppointmentFilterParams) ([]entity.Appointment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []entity.Appointment
	for _, a := range r.s.appointments {
		if params.Status != nil && a.Status != *params.Status {
			continue
		}
		if params.HasBill != nil && a.HasBill != *params.HasBill {
			continue
		}
		all = append(all, *copyAppointment(a))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].AppointmentDate.Before(all[j].AppointmentDate) })
	return paginate(all, params.Pagination), int64(len(all)), nil
}

func (r memAppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.AppointmentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return repository.ErrAppointmentMissing
	}
	a.Status = status
	return nil
}

func (r memAppointmentRepo) LinkBill(ctx context.Context, id uuid.UUID, billID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return repository.ErrAppointmentMissing
	}
	a.HasBill = true
	a.BillID = &billID
	return nil
}

type memPatientRepo struct{ s *memStore }

func (r memPatientRepo) Create(ctx context.Context, p *entity.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.s.patients[p.ID] = &cp
	return nil
}

func (r memPatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.patients[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r memPatientRepo) Update(ctx context.Context, p *entity.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.patients[p.ID] = &cp
	return nil
}

func (r memPatientRepo) List(ctx context.Context, params *repository.PatientFilterParams) ([]entity.Patient, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []entity.Patient
	for _, p := range r.s.patients {
		if params.Search == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(params.Search)) {
			all = append(all, *p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, params.Pagination), int64(len(all)), nil
}

type memIdempotencyRepo struct {
	s       *memStore
	expired int64
}

func (r *memIdempotencyRepo) GetByKey(ctx context.Context, key, owner string) (*entity.IdempotencyKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if k, ok := r.s.keys[owner+"|"+key]; ok {
		cp := *k
		return &cp, nil
	}
	return nil, nil
}

func (r *memIdempotencyRepo) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *ikey
	r.s.keys[ikey.Owner+"|"+ikey.Key] = &cp
	return nil
}

func (r *memIdempotencyRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return r.expired, nil
}

// seedCompletedAppointment stores a completed appointment with the given services.
func seedCompletedAppointment(s *memStore, services ...entity.ServiceDetail) *entity.Appointment {
	a := &entity.Appointment{
		ID:              uuid.New(),
		PatientName:     "Maria Santos",
		PatientEmail:    "maria@example.com",
		PatientPhone:    "09171234567",
		AppointmentDate: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
		ServiceDetails:  services,
		Status:          enum.AppointmentStatusCompleted,
		CreatedAt:       time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	s.appointments[a.ID] = copyAppointment(a)
	return a
}
