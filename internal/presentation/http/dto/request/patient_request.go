package request

// PatientRequest represents a patient create or update request
type PatientRequest struct {
	Name      string  `json:"name" binding:"max=255"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	BirthDate *string `json:"birthDate"` // YYYY-MM-DD
}
