// Package repository implements data access on top of GORM. Repositories
// translate persistence failures into application errors; business rules
// live in the service layer.
package repository

import "strings"

// isUniqueConstraintError detects unique violations across Postgres and
// SQLite without depending on driver error types.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
