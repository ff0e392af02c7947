package middleware

import (
	"strings"

	"github.com/dentacare/clinic-api/internal/presentation/http/dto/response"
	"github.com/dentacare/clinic-api/pkg/utils"
	"github.com/gin-gonic/gin"
)

const (
	staffNameKey = "staff_name"
	staffRoleKey = "staff_role"
)

// StaffAuth reads an optional bearer token naming the staff member. When
// required is true, requests without a valid token are rejected.
func StaffAuth(jwtManager *utils.JWTManager, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				response.Unauthorized(c, "Authorization header is required")
				return
			}
			c.Next()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := jwtManager.ValidateStaffToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(staffNameKey, claims.StaffName)
		c.Set(staffRoleKey, claims.Role)
		c.Next()
	}
}

// GetStaffName returns the authenticated staff member, or "".
func GetStaffName(c *gin.Context) string {
	return c.GetString(staffNameKey)
}
