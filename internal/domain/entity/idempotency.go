package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey stores the response of a processed billing write so a retried
// request replays it instead of creating a second bill or payment.
type IdempotencyKey struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Key          string    `gorm:"uniqueIndex:idx_idempotency_owner_key;size:255;not null"`
	Owner        string    `gorm:"uniqueIndex:idx_idempotency_owner_key;size:255;not null"` // staff ID or client IP
	Endpoint     string    `gorm:"size:255;not null"`                                       // e.g. "POST /api/v1/billing"
	ResponseCode int       `gorm:"not null"`
	ResponseBody string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// IsExpired checks if the idempotency key has expired
func (i *IdempotencyKey) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
