// Package billing turns completed appointment services into bill snapshots and
// reconciles payments against them. Everything here is pure computation over
// values already loaded from storage.
package billing

import (
	"strings"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/enum"
	"github.com/dentacare/clinic-api/pkg/money"
)

// DescriptionDateLayout is used for the "Completed on" fallback description.
const DescriptionDateLayout = "January 2, 2006"

const unnamedService = "Dental Service"

// ServiceLine is a completed service classified by how it is priced.
// The concrete types are ToothLine, UnitLine and LegacyLine.
type ServiceLine interface {
	serviceLine()
}

// ToothLine is charged once per selected tooth (PerTooth, PerToothPackage).
type ToothLine struct {
	Model       enum.PricingModel
	Name        string
	Description string
	UnitPrice   int64
	Teeth       []string
}

// UnitLine is charged once (PerSession, PerFilm, PerTreatmentPackage, or an
// unrecognized model).
type UnitLine struct {
	Model       enum.PricingModel
	Name        string
	Description string
	UnitPrice   int64
	Teeth       []string
}

// LegacyLine comes from old appointments that stored only a service name.
// Kept for existing records; new pricing belongs in ServiceDetail.
type LegacyLine struct {
	Name      string
	UnitPrice int64
}

func (ToothLine) serviceLine()  {}
func (UnitLine) serviceLine()   {}
func (LegacyLine) serviceLine() {}

// Classify maps a loosely typed service record to its pricing variant.
func Classify(d entity.ServiceDetail) ServiceLine {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = unnamedService
	}

	switch d.PricingModel {
	case enum.PricingModelPerTooth, enum.PricingModelPerToothPackage:
		return ToothLine{
			Model:       d.PricingModel,
			Name:        name,
			Description: strings.TrimSpace(d.Description),
			UnitPrice:   money.Coalesce(d.FinalPrice, d.BasePrice),
			Teeth:       d.SelectedTeeth,
		}
	}
	// per-session, per-film, treatment packages and unknown models bill one unit
	return unitLine(d, name)
}

func unitLine(d entity.ServiceDetail, name string) UnitLine {
	return UnitLine{
		Model:       d.PricingModel,
		Name:        name,
		Description: strings.TrimSpace(d.Description),
		UnitPrice:   money.Coalesce(d.FinalPrice, d.BasePrice, d.TotalAmount),
		Teeth:       d.SelectedTeeth,
	}
}

// ResolveLineItems converts completed services into bill items.
// It never fails: missing or malformed prices resolve to zero.
func ResolveLineItems(services []entity.ServiceDetail, appointmentDate time.Time) []entity.BillItem {
	items := make([]entity.BillItem, 0, len(services))
	for _, svc := range services {
		if !svc.IsCompleted() {
			continue
		}
		items = append(items, Resolve(Classify(svc), appointmentDate))
	}
	for i := range items {
		items[i].Position = i
	}
	return items
}

// ResolveAppointment resolves the bill items of an appointment, falling back
// to the legacy service-name pricing when it has no structured services.
func ResolveAppointment(a *entity.Appointment) []entity.BillItem {
	if len(a.ServiceDetails) > 0 {
		return ResolveLineItems(a.ServiceDetails, a.AppointmentDate)
	}

	name := strings.TrimSpace(a.Service)
	if name == "" {
		return nil
	}
	return []entity.BillItem{Resolve(LegacyLine{Name: name, UnitPrice: SuggestedLegacyPrice(name)}, a.AppointmentDate)}
}

// Resolve computes quantity, unit price and subtotal for one service line.
func Resolve(line ServiceLine, appointmentDate time.Time) entity.BillItem {
	switch l := line.(type) {
	case ToothLine:
		quantity := len(l.Teeth)
		if quantity < 1 {
			quantity = 1
		}
		// An out-of-range product leaves a zero subtotal; AssembleBill rejects the line.
		subtotal, _ := money.Mul(l.UnitPrice, quantity)
		return entity.BillItem{
			ServiceName:      l.Name,
			Description:      describe(l.Description, l.Model, l.Teeth, appointmentDate),
			PricingModel:     l.Model,
			Quantity:         quantity,
			UnitPrice:        l.UnitPrice,
			Subtotal:         subtotal,
			SelectedTeeth:    copyTeeth(l.Teeth),
			HasTeethSelected: len(l.Teeth) > 0,
		}
	case UnitLine:
		return entity.BillItem{
			ServiceName:      l.Name,
			Description:      describe(l.Description, l.Model, l.Teeth, appointmentDate),
			PricingModel:     l.Model,
			Quantity:         1,
			UnitPrice:        l.UnitPrice,
			Subtotal:         l.UnitPrice,
			SelectedTeeth:    copyTeeth(l.Teeth),
			HasTeethSelected: len(l.Teeth) > 0,
		}
	case LegacyLine:
		return entity.BillItem{
			ServiceName:   l.Name,
			Description:   completedOn(appointmentDate),
			Quantity:      1,
			UnitPrice:     l.UnitPrice,
			Subtotal:      l.UnitPrice,
			SelectedTeeth: []string{},
			Legacy:        true,
		}
	}
	panic("billing: unhandled service line type")
}

// legacyPrices is the keyword table used before services carried prices, in match order.
var legacyPrices = []struct {
	keyword string
	cents   int64
}{
	{"consultation", 50000},
	{"cleaning", 80000},
	{"checkup", 30000},
}

const legacyDefaultPrice int64 = 100000

// SuggestedLegacyPrice returns the price for a service known only by name.
func SuggestedLegacyPrice(name string) int64 {
	lower := strings.ToLower(name)
	for _, p := range legacyPrices {
		if strings.Contains(lower, p.keyword) {
			return p.cents
		}
	}
	return legacyDefaultPrice
}

// FormatTeeth renders FDI tooth numbers in their recorded order.
func FormatTeeth(teeth []string) string {
	return strings.Join(teeth, ", ")
}

// QuantityLabel is the quantity column header for an item.
func QuantityLabel(item entity.BillItem) string {
	return item.PricingModel.QuantityLabel()
}

func describe(base string, model enum.PricingModel, teeth []string, date time.Time) string {
	if base == "" {
		base = completedOn(date)
	}

	var b strings.Builder
	b.WriteString(base)
	if model.IsToothBased() && len(teeth) > 0 {
		b.WriteString(" - Teeth: ")
		b.WriteString(FormatTeeth(teeth))
	}
	if name := model.DisplayName(); name != "" {
		b.WriteString(" (")
		b.WriteString(name)
		b.WriteString(")")
	}
	return b.String()
}

func completedOn(date time.Time) string {
	return "Completed on " + date.Format(DescriptionDateLayout)
}

func copyTeeth(teeth []string) []string {
	out := make([]string, len(teeth))
	copy(out, teeth)
	return out
}
