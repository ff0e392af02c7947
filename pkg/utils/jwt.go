package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "clinic-api"

// StaffClaims identifies the clinic staff member acting on a request
type StaffClaims struct {
	StaffName string `json:"staff_name"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager handles staff token generation and validation
type JWTManager struct {
	secretKey []byte
	expiry    time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secretKey: []byte(secret),
		expiry:    expiry,
	}
}

// GenerateStaffToken signs a token for the named staff member
func (m *JWTManager) GenerateStaffToken(staffName, role string) (string, error) {
	staffName = strings.TrimSpace(staffName)
	if staffName == "" {
		return "", errors.New("staff name is required")
	}

	now := time.Now()
	claims := &StaffClaims{
		StaffName: staffName,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   staffName,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// ValidateStaffToken validates a token and returns the claims
func (m *JWTManager) ValidateStaffToken(tokenString string) (*StaffClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StaffClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*StaffClaims)
	if !ok || !token.Valid || claims.StaffName == "" {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
