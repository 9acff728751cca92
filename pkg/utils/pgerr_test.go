package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsForeignKeyViolation(t *testing.T) {
	fk := &pq.Error{Code: "23503"}
	if !IsForeignKeyViolation(fk) {
		t.Error("23503 debe reconocerse como violación de clave foránea")
	}
	if !IsForeignKeyViolation(fmt.Errorf("borrando sección: %w", fk)) {
		t.Error("debe reconocerse también envuelto con %w")
	}
	if IsForeignKeyViolation(&pq.Error{Code: "23505"}) {
		t.Error("23505 no es violación de clave foránea")
	}
	if IsForeignKeyViolation(errors.New("otra cosa")) {
		t.Error("un error cualquiera no debe reconocerse")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Error("23505 debe reconocerse como violación de unicidad")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("23503 no es violación de unicidad")
	}
	if IsUniqueViolation(nil) {
		t.Error("nil no debe reconocerse")
	}
}
