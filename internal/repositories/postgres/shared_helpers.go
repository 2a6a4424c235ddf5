package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/studyhive/studyhub-service/internal/repositories"

	"gorm.io/gorm"
)

// handleDBError translates gorm errors into the repository error taxonomy so
// services can distinguish "no such row" from transport/constraint failures.
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", operation, repositories.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", operation, repositories.ErrDuplicate)
	}

	return repositories.WrapError(err, operation)
}

// applyPaginationAndSort applies pagination and sorting with SQL injection
// protection. Unknown sort columns fall back to created_at descending, which
// is the contract list order for every resource kind.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	allowedSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"id":         true,
		"title":      true,
		"subject":    true,
		"taken_at":   true,
		"file_name":  true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

func applyDateRange(query *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}
	return query
}
