// Package pagination implements the page and keyset pagination used by list endpoints.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidCursor is returned for cursors that were not produced by EncodeCursor.
var ErrInvalidCursor = errors.New("invalid cursor")

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

// Pagination is the page metadata returned with offset-paginated lists
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	PerPage     int   `json:"perPage"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

// PaginationParams represents input parameters for pagination
type PaginationParams struct {
	Page    int `form:"page" json:"page"`
	PerPage int `form:"per_page" json:"perPage"`
}

// DefaultPagination returns default pagination values
func DefaultPagination() *PaginationParams {
	return &PaginationParams{Page: 1, PerPage: defaultPerPage}
}

// Validate clamps pagination parameters into valid ranges
func (p *PaginationParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
}

// Offset calculates the offset for SQL queries
func (p *PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// NewPagination creates a new Pagination response
func NewPagination(page, perPage int, total int64) *Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(perPage)))
	}

	return &Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// CursorDirection represents the direction of cursor navigation
type CursorDirection string

const (
	CursorDirectionNext CursorDirection = "next"
	CursorDirectionPrev CursorDirection = "prev"
)

// Cursor is the decoded keyset position: the (createdAt, id) of a row
type Cursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// CursorParams represents input parameters for cursor-based pagination
type CursorParams struct {
	Cursor    string          `form:"cursor" json:"cursor"`
	Direction CursorDirection `form:"direction" json:"direction"`
	Limit     int             `form:"limit" json:"limit"`
}

// CursorPagination is the metadata returned with keyset-paginated lists
type CursorPagination struct {
	NextCursor *string `json:"nextCursor,omitempty"`
	PrevCursor *string `json:"prevCursor,omitempty"`
	HasNext    bool    `json:"hasNext"`
	HasPrev    bool    `json:"hasPrev"`
	Limit      int     `json:"limit"`
}

// Validate clamps cursor pagination parameters into valid ranges
func (c *CursorParams) Validate() {
	if c.Limit < 1 {
		c.Limit = defaultPerPage
	}
	if c.Limit > maxPerPage {
		c.Limit = maxPerPage
	}
	if c.Direction != CursorDirectionPrev {
		c.Direction = CursorDirectionNext
	}
}

// DecodeCursor decodes the base64 cursor string. An empty cursor decodes to nil.
func (c *CursorParams) DecodeCursor() (*Cursor, error) {
	if c.Cursor == "" {
		return nil, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(c.Cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var cursor Cursor
	if err := json.Unmarshal(decoded, &cursor); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return &cursor, nil
}

// EncodeCursor creates a base64 encoded cursor for a row
func EncodeCursor(id string, createdAt time.Time) string {
	data, _ := json.Marshal(Cursor{ID: id, CreatedAt: createdAt})
	return base64.URLEncoding.EncodeToString(data)
}

// NewCursorPagination builds cursor metadata from rows fetched with limit+1
// and returns the rows trimmed to limit.
func NewCursorPagination[T any](items []T, params *CursorParams, getID func(T) string, getCreatedAt func(T) time.Time) (*CursorPagination, []T) {
	hasMore := len(items) > params.Limit
	if hasMore {
		items = items[:params.Limit]
	}

	p := &CursorPagination{
		Limit:   params.Limit,
		HasNext: hasMore,
		HasPrev: params.Cursor != "",
	}
	if params.Direction == CursorDirectionPrev {
		p.HasNext, p.HasPrev = params.Cursor != "", hasMore
	}

	if len(items) > 0 {
		last := items[len(items)-1]
		next := EncodeCursor(getID(last), getCreatedAt(last))
		p.NextCursor = &next

		first := items[0]
		prev := EncodeCursor(getID(first), getCreatedAt(first))
		p.PrevCursor = &prev
	}
	return p, items
}

// UnifiedPaginationParams accepts both page-based and cursor-based parameters
type UnifiedPaginationParams struct {
	Page    int `form:"page"`
	PerPage int `form:"per_page"`

	Cursor    string          `form:"cursor"`
	Direction CursorDirection `form:"direction"`
	Limit     int             `form:"limit"`
}

// IsCursorBased returns true if cursor-based pagination is being used
func (u *UnifiedPaginationParams) IsCursorBased() bool {
	return u.Cursor != "" || u.Limit > 0
}

// ToPaginationParams converts to page-based params
func (u *UnifiedPaginationParams) ToPaginationParams() *PaginationParams {
	params := &PaginationParams{Page: u.Page, PerPage: u.PerPage}
	params.Validate()
	return params
}

// ToCursorParams converts to cursor-based params
func (u *UnifiedPaginationParams) ToCursorParams() *CursorParams {
	params := &CursorParams{Cursor: u.Cursor, Direction: u.Direction, Limit: u.Limit}
	if params.Limit == 0 && u.PerPage > 0 {
		params.Limit = u.PerPage
	}
	params.Validate()
	return params
}
