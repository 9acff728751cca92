package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Adagu69/calendario-medico-sub000/pkg/logger"
)

// AuditService registra quién hizo qué sobre qué entidad. Las escrituras no
// deben tumbar la operación principal: un fallo se loguea y se sigue.
type AuditService struct {
	DB *sql.DB
}

func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{DB: db}
}

type Entry struct {
	ID        uuid.UUID `json:"id"`
	UserID    int       `json:"user_id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// Record inserta una entrada de auditoría.
func (s *AuditService) Record(userID int, action, entity string, entityID interface{}, detail string) {
	_, err := s.DB.Exec(
		`INSERT INTO audit_log (id, user_id, action, entity, entity_id, detail)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), userID, action, entity, fmt.Sprintf("%v", entityID), detail)
	if err != nil {
		logger.Log().WithError(err).WithFields(map[string]interface{}{
			"action": action, "entity": entity,
		}).Warn("no se pudo registrar auditoría")
	}
}

// List devuelve las últimas entradas, más recientes primero.
func (s *AuditService) List(limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.DB.Query(
		`SELECT id, COALESCE(user_id, 0), action, entity, entity_id, detail, created_at
		 FROM audit_log ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Entity, &e.EntityID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
