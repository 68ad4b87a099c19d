package database

import (
	"errors"

	"github.com/lib/pq"
)

// ErrorClass groups PostgreSQL failures by what the caller can do about them
type ErrorClass int

const (
	ErrorClassOther ErrorClass = iota
	ErrorClassUniqueViolation
	ErrorClassForeignKeyViolation
	ErrorClassCheckViolation
	ErrorClassNotNullViolation
	ErrorClassSerialization
	ErrorClassDeadlock
)

// ClassifyError inspects a *pq.Error anywhere in err's chain
func ClassifyError(err error) ErrorClass {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return ErrorClassOther
	}

	switch pqErr.Code {
	case "23505":
		return ErrorClassUniqueViolation
	case "23503":
		return ErrorClassForeignKeyViolation
	case "23514":
		return ErrorClassCheckViolation
	case "23502":
		return ErrorClassNotNullViolation
	case "40001":
		return ErrorClassSerialization
	case "40P01":
		return ErrorClassDeadlock
	}

	return ErrorClassOther
}
