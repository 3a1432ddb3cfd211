package repositories

import (
	"errors"
	"time"
)

// ===== SHARED FILTER STRUCTS =====

// ReportFilters narrows report listings. Empty fields are ignored.
type ReportFilters struct {
	RegistroAluno *string    `json:"registro_aluno"`
	RFProfessor   *string    `json:"rf_professor"`
	Bimestre      *string    `json:"bimestre"`
	DateFrom      *time.Time `json:"date_from"`
	DateTo        *time.Time `json:"date_to"`
	Limit         int        `json:"limit"`
	Offset        int        `json:"offset"`
	SortBy        string     `json:"sort_by"`    // "data", "created_at", "bimestre"
	SortOrder     string     `json:"sort_order"` // "asc", "desc"
}

// ResetResult summarizes a "reset everything" wipe.
type ResetResult struct {
	ReportsDeleted int64    `json:"reports_deleted"`
	LogsDeleted    int64    `json:"logs_deleted"`
	PhotoPaths     []string `json:"-"`
}

// Repository errors. Implementations translate driver errors into these.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)
