package handler

import (
	"strconv"
	"time"

	"github.com/dentacare/clinic-api/internal/presentation/http/dto/response"
	"github.com/dentacare/clinic-api/internal/presentation/http/middleware"
	"github.com/dentacare/clinic-api/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// parseID reads a UUID path parameter, writing a 400 when it is malformed
func parseID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.BadRequest(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID reads an optional UUID query parameter, ignoring malformed values
func queryUUID(c *gin.Context, key string) *uuid.UUID {
	if s := c.Query(key); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			return &id
		}
	}
	return nil
}

// queryDate reads an optional YYYY-MM-DD query parameter
func queryDate(c *gin.Context, key string) *time.Time {
	if s := c.Query(key); s != "" {
		if d, err := time.Parse(dateLayout, s); err == nil {
			return &d
		}
	}
	return nil
}

// queryBool reads an optional boolean query parameter
func queryBool(c *gin.Context, key string) *bool {
	if s := c.Query(key); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			return &b
		}
	}
	return nil
}

// pageParams reads page and per_page
func pageParams(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	params := &pagination.PaginationParams{Page: page, PerPage: perPage}
	params.Validate()
	return params
}

// staffName prefers the authenticated staff member over a name sent in the body
func staffName(c *gin.Context, fromBody string) string {
	if name := middleware.GetStaffName(c); name != "" {
		return name
	}
	return fromBody
}
