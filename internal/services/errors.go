package services

import (
	"errors"
	"fmt"
)

// Authentication errors
var (
	ErrUnknownRF        = errors.New("rf not registered")
	ErrFirstAccess      = errors.New("first access must use the rf as password")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrWeakPassword     = errors.New("password must have at least 6 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Roster and report errors
var (
	ErrStudentNotFound   = errors.New("student not found")
	ErrProfessorNotFound = errors.New("professor not found")
	ErrReportNotFound    = errors.New("report not found")
	ErrStudentExists     = errors.New("student already registered")
	ErrProfessorExists   = errors.New("professor already registered")
	ErrNoReports         = errors.New("no reports for the selected bimester")
	ErrInvalidPhoto      = errors.New("photo must be an image")
	ErrInvalidRoster     = errors.New("invalid roster workbook")
)

// PermissionError is returned when the session lacks the permission an
// operation requires.
type PermissionError struct {
	RF       string `json:"rf"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s cannot %s %s: %s", e.RF, e.Action, e.Resource, e.Reason)
}

func NewPermissionError(rf, resource, action, reason string) *PermissionError {
	return &PermissionError{
		RF:       rf,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}
