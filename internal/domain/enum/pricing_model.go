package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PricingModel is the billing unit basis for a dental service
type PricingModel string

const (
	PricingModelPerTooth            PricingModel = "PerTooth"
	PricingModelPerToothPackage     PricingModel = "PerToothPackage"
	PricingModelPerSession          PricingModel = "PerSession"
	PricingModelPerFilm             PricingModel = "PerFilm"
	PricingModelPerTreatmentPackage PricingModel = "PerTreatmentPackage"
)

// IsKnown reports whether the model is one of the supported pricing models.
func (m PricingModel) IsKnown() bool {
	switch m {
	case PricingModelPerTooth, PricingModelPerToothPackage, PricingModelPerSession,
		PricingModelPerFilm, PricingModelPerTreatmentPackage:
		return true
	}
	return false
}

// IsToothBased reports whether quantity is derived from the selected teeth.
func (m PricingModel) IsToothBased() bool {
	return m == PricingModelPerTooth || m == PricingModelPerToothPackage
}

// DisplayName returns the label shown next to a line item description.
// Unrecognized models are shown as stored; a missing model has no label.
func (m PricingModel) DisplayName() string {
	switch m {
	case PricingModelPerTooth:
		return "Per Tooth"
	case PricingModelPerToothPackage:
		return "Per Tooth Package"
	case PricingModelPerSession:
		return "Per Session"
	case PricingModelPerFilm:
		return "Per Film"
	case PricingModelPerTreatmentPackage:
		return "Per Treatment Package"
	}
	return string(m)
}

// QuantityLabel returns the column header used for the quantity of a line item.
func (m PricingModel) QuantityLabel() string {
	switch {
	case m.IsToothBased():
		return "Teeth Count"
	case m == PricingModelPerFilm:
		return "Films"
	case m == PricingModelPerSession:
		return "Sessions"
	}
	return "Quantity"
}

func (m PricingModel) String() string {
	return string(m)
}

// UnmarshalJSON accepts any JSON value; non-strings decode as an empty (unknown) model.
func (m *PricingModel) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		*m = ""
		return nil
	}
	*m = PricingModel(str)
	return nil
}

func (m PricingModel) Value() (driver.Value, error) {
	return string(m), nil
}

func (m *PricingModel) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*m = PricingModel(v)
	case []byte:
		*m = PricingModel(string(v))
	default:
		*m = ""
	}
	return nil
}
