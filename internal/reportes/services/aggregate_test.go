package services

import (
	"testing"

	"github.com/Adagu69/calendario-medico-sub000/internal/reportes/models"
)

func testSchedule(doctorID int, year, month int, slots []models.TimeSlot, days []models.MonthDay) models.MonthSchedule {
	slotMap := make(map[int]models.TimeSlot, len(slots))
	for _, s := range slots {
		slotMap[s.ID] = s
	}
	return models.MonthSchedule{
		MonthID: doctorID,
		Year:    year,
		Month:   month,
		Doctor: models.DoctorInfo{
			ID:             doctorID,
			DocumentType:   "DNI",
			DocumentNumber: "12345678",
			FirstName:      "Ana",
			LastName:       "Quispe",
			Profession:     "MEDICO",
			License:        "CMP-1001",
		},
		SectionID:   1,
		SectionName: "Consulta Externa",
		Slots:       slotMap,
		Days:        days,
	}
}

func TestAggregateSingleDayShift(t *testing.T) {
	ms := testSchedule(1, 2025, 3,
		[]models.TimeSlot{{ID: 1, Name: "M", Start: "08:00", End: "14:00"}},
		[]models.MonthDay{{Day: 10, SlotIDs: []int{1}}})

	rows, err := Aggregate([]models.MonthSchedule{ms})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("esperaba 1 fila, hay %d", len(rows))
	}
	r := rows[0]
	if r.Day != 10 || r.FirstStart != "08:00" || r.LastEnd != "14:00" {
		t.Errorf("fila inesperada: día %d, %s-%s", r.Day, r.FirstStart, r.LastEnd)
	}
	if r.SpillsNextDay {
		t.Error("un turno diurno no debe marcar desborde")
	}
	if r.DayHours != 6.0 {
		t.Errorf("DayHours = %v, esperaba 6", r.DayHours)
	}
}

func TestAggregateOvernightSplitsAcrossTwoDays(t *testing.T) {
	ms := testSchedule(1, 2025, 3,
		[]models.TimeSlot{{ID: 1, Name: "N", Start: "22:00", End: "06:00"}},
		[]models.MonthDay{{Day: 15, SlotIDs: []int{1}}})

	rows, err := Aggregate([]models.MonthSchedule{ms})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("esperaba 2 filas (día 15 y 16), hay %d", len(rows))
	}

	d15, d16 := rows[0], rows[1]
	if d15.Day != 15 || d16.Day != 16 {
		t.Fatalf("días %d y %d, esperaba 15 y 16", d15.Day, d16.Day)
	}
	if d15.FirstStart != "22:00" || d15.LastEnd != "00:00" || !d15.SpillsNextDay {
		t.Errorf("día 15: %s-%s spill=%v", d15.FirstStart, d15.LastEnd, d15.SpillsNextDay)
	}
	if d15.DayHours != 2.0 {
		t.Errorf("día 15: %v horas, esperaba 2", d15.DayHours)
	}
	if d16.FirstStart != "00:00" || d16.LastEnd != "06:00" || d16.SpillsNextDay {
		t.Errorf("día 16: %s-%s spill=%v", d16.FirstStart, d16.LastEnd, d16.SpillsNextDay)
	}
	if d16.DayHours != 6.0 {
		t.Errorf("día 16: %v horas, esperaba 6", d16.DayHours)
	}
	// Los dos tramos deben sumar la duración completa del turno.
	if d15.DayHours+d16.DayHours != 8.0 {
		t.Errorf("los tramos suman %v, esperaba 8", d15.DayHours+d16.DayHours)
	}
	if d15.TotalHours != 8.0 || d16.TotalHours != 8.0 {
		t.Errorf("totales %v y %v, esperaba 8 en ambas filas", d15.TotalHours, d16.TotalHours)
	}
}

func TestAggregateEqualStartEndIsFullDay(t *testing.T) {
	ms := testSchedule(1, 2025, 3,
		[]models.TimeSlot{{ID: 1, Name: "24H", Start: "08:00", End: "08:00"}},
		[]models.MonthDay{{Day: 10, SlotIDs: []int{1}}})

	rows, err := Aggregate([]models.MonthSchedule{ms})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	var total float64
	for _, r := range rows {
		total += r.DayHours
	}
	if total != 24.0 {
		t.Errorf("un turno con inicio igual al fin debe durar 24 horas, suma %v", total)
	}
}

func TestAggregateClampsOverflowToLastDay(t *testing.T) {
	// Turno nocturno el 30 de abril: el tramo del día 31 no existe en abril
	// y se atribuye al día 30.
	ms := testSchedule(1, 2025, 4,
		[]models.TimeSlot{{ID: 1, Name: "N", Start: "20:00", End: "02:00"}},
		[]models.MonthDay{{Day: 30, SlotIDs: []int{1}}})

	rows, err := Aggregate([]models.MonthSchedule{ms})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("esperaba 1 fila (todo en el día 30), hay %d", len(rows))
	}
	r := rows[0]
	if r.Day != 30 {
		t.Errorf("día %d, esperaba 30", r.Day)
	}
	if !r.SpillsNextDay {
		t.Error("el desborde al mes siguiente debe marcar SpillsNextDay")
	}
	if r.DayHours != 6.0 {
		t.Errorf("DayHours = %v, esperaba 6 (4 + 2 del tramo reubicado)", r.DayHours)
	}
}

func TestAggregateOverlappingSlotsSumAdditively(t *testing.T) {
	ms := testSchedule(1, 2025, 3,
		[]models.TimeSlot{
			{ID: 1, Name: "M", Start: "08:00", End: "12:00"},
			{ID: 2, Name: "R", Start: "10:00", End: "14:00"},
		},
		[]models.MonthDay{{Day: 5, SlotIDs: []int{1, 2}}})

	rows, err := Aggregate([]models.MonthSchedule{ms})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("esperaba 1 fila, hay %d", len(rows))
	}
	r := rows[0]
	if r.FirstStart != "08:00" || r.LastEnd != "14:00" {
		t.Errorf("rango %s-%s, esperaba 08:00-14:00", r.FirstStart, r.LastEnd)
	}
	// Las horas se suman turno a turno, no como unión de intervalos.
	if r.DayHours != 8.0 {
		t.Errorf("DayHours = %v, esperaba 8", r.DayHours)
	}
}

func TestAggregateSkipsEmptyDaysAndOrphanSlots(t *testing.T) {
	ms := testSchedule(1, 2025, 3,
		[]models.TimeSlot{{ID: 1, Name: "M", Start: "08:00", End: "14:00"}},
		[]models.MonthDay{
			{Day: 1, SlotIDs: nil},
			{Day: 2, SlotIDs: []int{99}}, // turno eliminado
		})

	rows, err := Aggregate([]models.MonthSchedule{ms})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("días vacíos no deben producir filas, hay %d", len(rows))
	}
}

func TestAggregateMonthTotalRepeatedPerRow(t *testing.T) {
	ms := testSchedule(1, 2025, 3,
		[]models.TimeSlot{{ID: 1, Name: "M", Start: "08:00", End: "14:00"}},
		[]models.MonthDay{
			{Day: 3, SlotIDs: []int{1}},
			{Day: 7, SlotIDs: []int{1}},
		})

	rows, err := Aggregate([]models.MonthSchedule{ms})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("esperaba 2 filas, hay %d", len(rows))
	}
	for _, r := range rows {
		if r.TotalHours != 12.0 {
			t.Errorf("día %d: TotalHours = %v, esperaba 12", r.Day, r.TotalHours)
		}
	}
}

func TestAggregateOrdersByLastName(t *testing.T) {
	a := testSchedule(1, 2025, 3,
		[]models.TimeSlot{{ID: 1, Name: "M", Start: "08:00", End: "14:00"}},
		[]models.MonthDay{{Day: 10, SlotIDs: []int{1}}})
	a.Doctor.LastName = "Zavala"
	b := testSchedule(2, 2025, 3,
		[]models.TimeSlot{{ID: 1, Name: "M", Start: "08:00", End: "14:00"}},
		[]models.MonthDay{{Day: 20, SlotIDs: []int{1}}})
	b.Doctor.LastName = "Arce"

	rows, err := Aggregate([]models.MonthSchedule{a, b})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("esperaba 2 filas, hay %d", len(rows))
	}
	if rows[0].Doctor.LastName != "Arce" || rows[1].Doctor.LastName != "Zavala" {
		t.Errorf("orden %s, %s; esperaba Arce, Zavala",
			rows[0].Doctor.LastName, rows[1].Doctor.LastName)
	}
}

func TestAggregateRejectsInvalidClock(t *testing.T) {
	ms := testSchedule(1, 2025, 3,
		[]models.TimeSlot{{ID: 1, Name: "X", Start: "25:00", End: "14:00"}},
		[]models.MonthDay{{Day: 1, SlotIDs: []int{1}}})

	if _, err := Aggregate([]models.MonthSchedule{ms}); err == nil {
		t.Error("una hora fuera de rango debe fallar")
	}
}

func TestParseMonthParam(t *testing.T) {
	year, month, err := ParseMonthParam("2025-03")
	if err != nil {
		t.Fatalf("ParseMonthParam: %v", err)
	}
	if year != 2025 || month != 3 {
		t.Errorf("obtuve %d-%d, esperaba 2025-3", year, month)
	}
	for _, bad := range []string{"", "2025", "2025-13", "marzo"} {
		if _, _, err := ParseMonthParam(bad); err == nil {
			t.Errorf("%q debería ser inválido", bad)
		}
	}
}
