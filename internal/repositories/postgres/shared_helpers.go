package postgres

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

// SharedHelpers contains common query building used by several repositories
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds an ILIKE pattern matching term as a literal substring
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// ApplyCatalogSearch joins category and owner and filters published courses by search term
func (h *SharedHelpers) ApplyCatalogSearch(query *gorm.DB, search string) *gorm.DB {
	query = query.
		Joins("LEFT JOIN categories ON categories.id = courses.category_id").
		Joins("JOIN users ON users.id = courses.user_id").
		Where("courses.is_published = ?", true)

	if search = strings.TrimSpace(search); search != "" {
		pattern := ContainsPattern(search)
		query = query.Where(
			"(courses.title ILIKE ? OR courses.description ILIKE ? OR categories.title ILIKE ? OR users.name ILIKE ?)",
			pattern, pattern, pattern, pattern,
		)
	}

	return query
}

// ApplyPagination applies limit and offset when positive
func (h *SharedHelpers) ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// translateError maps gorm errors to repository sentinels
func translateError(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", action, repositories.ErrRecordNotFound)
	case repositories.IsDuplicateError(err):
		return fmt.Errorf("%s: %w: %w", action, repositories.ErrDuplicate, err)
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}

type countRow struct {
	Key   string
	Count int64
}

func rowsToMap(rows []countRow) map[string]int64 {
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Key] = row.Count
	}
	return result
}
