package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient represents a clinic patient
type Patient struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null;index" json:"name"`
	Email     *string        `gorm:"size:255" json:"email,omitempty"`
	Phone     *string        `gorm:"size:50" json:"phone,omitempty"`
	Address   *string        `gorm:"type:text" json:"address,omitempty"`
	BirthDate *time.Time     `gorm:"type:date" json:"birthDate,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new patient
func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Patient model
func (Patient) TableName() string {
	return "patients"
}

// EmailOrEmpty returns the email or an empty string
func (p *Patient) EmailOrEmpty() string {
	if p.Email == nil {
		return ""
	}
	return *p.Email
}

// PhoneOrEmpty returns the phone number or an empty string
func (p *Patient) PhoneOrEmpty() string {
	if p.Phone == nil {
		return ""
	}
	return *p.Phone
}
