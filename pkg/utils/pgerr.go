package utils

import (
	"errors"

	"github.com/lib/pq"
)

// Códigos de error de PostgreSQL que el API traduce a respuestas de usuario.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgForeignKeyViolation
}

func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation
}
