package repository

import (
	"time"

	"github.com/dentacare/clinic-api/pkg/pagination"
	"gorm.io/gorm"
)

// SearchScope matches term case-insensitively against any of the columns.
func SearchScope(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" || len(columns) == 0 {
			return db
		}
		like := "%" + term + "%"
		cond := db.Session(&gorm.Session{NewDB: true})
		for i, col := range columns {
			if i == 0 {
				cond = cond.Where(col+" ILIKE ?", like)
			} else {
				cond = cond.Or(col+" ILIKE ?", like)
			}
		}
		return db.Where(cond)
	}
}

// DateRangeScope limits column to [start, end]. Nil bounds are open.
func DateRangeScope(column string, start, end *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if start != nil {
			db = db.Where(column+" >= ?", *start)
		}
		if end != nil {
			db = db.Where(column+" <= ?", *end)
		}
		return db
	}
}

// PageScope applies offset pagination after validating params.
func PageScope(params *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		params.Validate()
		return db.Offset(params.Offset()).Limit(params.PerPage)
	}
}

// KeysetScope applies (created_at, id) keyset pagination. Rows are fetched
// with limit+1 so the caller can tell whether another page exists.
func KeysetScope(table string, params *pagination.CursorParams, cursor *pagination.Cursor) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		createdAt, id := table+".created_at", table+".id"
		if params.Direction == pagination.CursorDirectionPrev {
			if cursor != nil {
				db = db.Where("("+createdAt+", "+id+") < (?, ?)", cursor.CreatedAt, cursor.ID)
			}
			return db.Order(createdAt + " DESC, " + id + " DESC").Limit(params.Limit + 1)
		}
		if cursor != nil {
			db = db.Where("("+createdAt+", "+id+") > (?, ?)", cursor.CreatedAt, cursor.ID)
		}
		return db.Order(createdAt + " ASC, " + id + " ASC").Limit(params.Limit + 1)
	}
}
