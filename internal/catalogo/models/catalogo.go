package models

import "time"

// Section agrupa especialidades (ej. "Pediatría").
type Section struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Specialty pertenece a una sección.
type Specialty struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	SectionID   int       `json:"section_id"`
	SectionName string    `json:"section_name,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
