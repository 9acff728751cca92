package models

// DoctorInfo son los campos de identidad que van en las columnas fijas del reporte.
type DoctorInfo struct {
	ID             int    `json:"id"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Profession     string `json:"profession"`
	License        string `json:"license"`
}

// TimeSlot es un intervalo nombrado dentro de una programación mensual.
// End menor que Start indica turno que cruza la medianoche.
type TimeSlot struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Start string `json:"start"` // "HH:MM"
	End   string `json:"end"`   // "HH:MM"
}

// MonthDay es un día calendario con sus turnos asignados.
type MonthDay struct {
	Day     int    `json:"day"`
	SlotIDs []int  `json:"slot_ids"`
	Notes   string `json:"notes"`
}

// MonthSchedule es una programación mensual resuelta con sus turnos y días,
// lista para alimentar la agregación.
type MonthSchedule struct {
	MonthID       int
	Year          int
	Month         int
	Doctor        DoctorInfo
	SpecialtyID   *int
	SpecialtyName *string
	SectionID     int
	SectionName   string
	Slots         map[int]TimeSlot
	Days          []MonthDay
}

// DayRow es una fila agregada por (doctor, especialidad, sección, día visible).
type DayRow struct {
	Doctor        DoctorInfo
	SpecialtyID   *int
	SpecialtyName *string
	SectionID     int
	SectionName   string
	Year          int
	Month         int
	Day           int
	FirstStart    string  // "HH:MM"
	LastEnd       string  // "HH:MM"; "00:00" con SpillsNextDay cuando el turno termina a medianoche
	SpillsNextDay bool
	DayHours      float64
	TotalHours    float64 // total del mes para el mismo doctor/especialidad/sección, repetido en cada fila
}
