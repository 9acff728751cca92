package models

import "time"

// Month es la programación mensual de un doctor/especialidad: estado draft
// mientras se edita, published cuando el jefe de servicio la cierra.
type Month struct {
	ID          int        `json:"id"`
	DoctorID    int        `json:"doctor_id"`
	SpecialtyID *int       `json:"specialty_id,omitempty"`
	Year        int        `json:"year"`
	Month       int        `json:"month"`
	State       string     `json:"state"` // draft | published
	IsActive    bool       `json:"is_active"`
	CreatedBy   *int       `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	TimeSlots   []TimeSlot `json:"time_slots,omitempty"`
	Days        []MonthDay `json:"days,omitempty"`
}

// TimeSlot es un intervalo con nombre dentro de una programación. End menor
// que Start significa que el turno cruza la medianoche.
type TimeSlot struct {
	ID      int    `json:"id"`
	MonthID int    `json:"month_id"`
	Name    string `json:"name"`
	Start   string `json:"start"` // "HH:MM"
	End     string `json:"end"`   // "HH:MM"
	Color   string `json:"color"`
}

// MonthDay es un día del calendario con sus turnos asignados y notas libres.
type MonthDay struct {
	ID      int    `json:"id"`
	MonthID int    `json:"month_id"`
	Day     int    `json:"day"`
	SlotIDs []int  `json:"slot_ids"`
	Notes   string `json:"notes"`
}

// Appointment es una cita puntual doctor+consultorio+turno+fecha.
type Appointment struct {
	ID          int       `json:"id"`
	DoctorID    int       `json:"doctor_id"`
	OfficeID    int       `json:"office_id"`
	SlotLabel   string    `json:"slot_label"`
	Date        string    `json:"date"` // "YYYY-MM-DD"
	PatientName string    `json:"patient_name"`
	Status      string    `json:"status"` // programada | atendida | cancelada
	CreatedBy   *int      `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DayEdit es una edición pendiente del calendario en borrador.
type DayEdit struct {
	Day     int    `json:"day"`
	SlotIDs []int  `json:"slot_ids"`
	Notes   string `json:"notes"`
}
