package repositories

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	Search string `json:"search"` // case-insensitive match on title, description, category title, owner name
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// ===== SHARED AGGREGATE STRUCTS =====

// StudentCompletionData is one grantee of a course with their completion state
type StudentCompletionData struct {
	UserID            string     `json:"user_id"`
	Name              *string    `json:"name"`
	Email             string     `json:"email"`
	CompletedChapters int64      `json:"completed_chapters"`
	CertifiedAt       *time.Time `json:"certified_at"`
}

// ===== ERRORS =====

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
)

const pgUniqueViolation = "23505"

// IsNotFoundError reports whether err means the row does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrRecordNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique-constraint violation
func IsDuplicateError(err error) bool {
	if errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
