package db

import "strings"

// IsUniqueViolation reports whether err references a unique constraint
// violation. With a constraint name the check is scoped to that constraint;
// otherwise it matches the generic Postgres and sqlite message texts.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
