package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/repositories"
)

// handleDBError wraps err with the operation name and maps gorm errors onto the
// repository sentinels.
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s failed: %w", operation, repositories.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s failed: %w", operation, repositories.ErrDuplicate)
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}

func pickDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// applyReportFilters applies the report filters; prefix is the table alias
// including the dot, or empty.
func applyReportFilters(query *gorm.DB, prefix string, filters repositories.ReportFilters) *gorm.DB {
	if filters.RegistroAluno != nil {
		query = query.Where(prefix+"registro_aluno = ?", *filters.RegistroAluno)
	}
	if filters.RFProfessor != nil {
		query = query.Where(prefix+"rf_professor = ?", *filters.RFProfessor)
	}
	if filters.Bimestre != nil && *filters.Bimestre != "" && *filters.Bimestre != models.BimestreTodos {
		query = query.Where(prefix+"bimestre = ?", *filters.Bimestre)
	}
	if filters.DateFrom != nil {
		query = query.Where(prefix+"data >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where(prefix+"data <= ?", *filters.DateTo)
	}
	return query
}

// applyPaginationAndSort applies pagination and sorting with whitelisted columns.
func applyPaginationAndSort(query *gorm.DB, prefix, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	sortKeyToColumn := map[string]string{
		"data":       "data",
		"created_at": "created_at",
		"bimestre":   "bimestre",
		"id":         "id",
	}

	column, ok := sortKeyToColumn[sortBy]
	if !ok {
		column = "data"
	}

	order := "ASC"
	if sortOrder == "desc" || sortOrder == "DESC" {
		order = "DESC"
	}

	query = query.Order(fmt.Sprintf("%s%s %s", prefix, column, order)).
		Order(fmt.Sprintf("%sid %s", prefix, order))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

func checkAffected(result *gorm.DB, operation string) error {
	if result.Error != nil {
		return handleDBError(result.Error, operation)
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, operation)
	}
	return nil
}
