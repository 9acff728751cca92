package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/Adagu69/calendario-medico-sub000/internal/reportes/models"
)

// La agregación mensual está escrita como etapas explícitas sobre registros
// en memoria (expandir → segmentar → ajustar día → agrupar → totales) para
// poder probar las reglas de medianoche y de día fuera de rango sin base de
// datos.

// assignment es un par (día, turno) ya expandido de una programación mensual.
type assignment struct {
	schedule *models.MonthSchedule
	day      int
	slot     models.TimeSlot
}

// segment es el tramo de un turno que cae dentro de un solo día calendario.
// startMin/endMin son minutos desde las 00:00 del día; endMin puede ser 1440
// cuando el tramo llega hasta la medianoche.
type segment struct {
	schedule     *models.MonthSchedule
	displayDay   int
	startMin     int
	endMin       int
	endsNextDay  bool
}

// parseClock convierte "HH:MM" a minutos desde medianoche.
func parseClock(v string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("hora '%s' inválida: %v", v, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("hora '%s' fuera de rango", v)
	}
	return h*60 + m, nil
}

func formatClock(min int) string {
	min = min % (24 * 60) // 1440 (medianoche) se muestra como 00:00
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

func lastDayOfMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// expandAssignments convierte cada MonthDay en pares (día, turno) individuales.
// Días sin turnos asignados no producen nada.
func expandAssignments(schedules []models.MonthSchedule) []assignment {
	var out []assignment
	for i := range schedules {
		ms := &schedules[i]
		for _, d := range ms.Days {
			for _, slotID := range d.SlotIDs {
				slot, ok := ms.Slots[slotID]
				if !ok {
					continue // referencia huérfana, el turno fue eliminado
				}
				out = append(out, assignment{schedule: ms, day: d.Day, slot: slot})
			}
		}
	}
	return out
}

// segmentAssignment parte un turno en un tramo por cada día calendario que
// toca. Un turno con fin menor o igual al inicio cruza la medianoche: el
// inicio igual al fin cuenta como turno de 24 horas, regla heredada del
// sistema original.
func segmentAssignment(a assignment) ([]segment, error) {
	start, err := parseClock(a.slot.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseClock(a.slot.End)
	if err != nil {
		return nil, err
	}

	if end > start {
		return []segment{{
			schedule:   a.schedule,
			displayDay: a.day,
			startMin:   start,
			endMin:     end,
		}}, nil
	}

	// Cruza la medianoche: un tramo hasta las 24:00 y otro desde las 00:00
	// del día siguiente.
	segs := []segment{{
		schedule:    a.schedule,
		displayDay:  a.day,
		startMin:    start,
		endMin:      24 * 60,
		endsNextDay: true,
	}}
	if end > 0 {
		segs = append(segs, segment{
			schedule:   a.schedule,
			displayDay: a.day + 1,
			startMin:   0,
			endMin:     end,
		})
	}
	return segs, nil
}

// clampSegment fuerza el día visible al rango [1, último día del mes]. Un
// desborde (turno nocturno del último día, o un día 31 en mes de 30) se
// atribuye al último día válido en vez de pasar al mes siguiente.
func clampSegment(s segment) segment {
	last := lastDayOfMonth(s.schedule.Year, s.schedule.Month)
	if s.displayDay > last {
		s.displayDay = last
		s.endsNextDay = true
	}
	if s.displayDay < 1 {
		s.displayDay = 1
	}
	return s
}

type groupKey struct {
	doctorID     int
	hasSpecialty bool
	specialtyID  int
	sectionID    int
	day          int
}

// aggregateSegments agrupa por (doctor, especialidad, sección, día visible):
// mínimo inicio, máximo fin, horas sumadas. Turnos superpuestos suman de
// forma aditiva, no como unión de intervalos.
func aggregateSegments(segs []segment) []models.DayRow {
	type acc struct {
		schedule *models.MonthSchedule
		day      int
		minStart int
		maxEnd   int
		minutes  int
		spills   bool
	}
	groups := make(map[groupKey]*acc)

	for _, s := range segs {
		if s.endMin <= s.startMin {
			continue // tramo vacío
		}
		key := groupKey{
			doctorID:  s.schedule.Doctor.ID,
			sectionID: s.schedule.SectionID,
			day:       s.displayDay,
		}
		if s.schedule.SpecialtyID != nil {
			key.hasSpecialty = true
			key.specialtyID = *s.schedule.SpecialtyID
		}
		g, ok := groups[key]
		if !ok {
			g = &acc{schedule: s.schedule, day: s.displayDay, minStart: s.startMin, maxEnd: s.endMin}
			groups[key] = g
		}
		if s.startMin < g.minStart {
			g.minStart = s.startMin
		}
		if s.endMin > g.maxEnd {
			g.maxEnd = s.endMin
		}
		g.minutes += s.endMin - s.startMin
		if s.endsNextDay {
			g.spills = true
		}
	}

	rows := make([]models.DayRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, models.DayRow{
			Doctor:        g.schedule.Doctor,
			SpecialtyID:   g.schedule.SpecialtyID,
			SpecialtyName: g.schedule.SpecialtyName,
			SectionID:     g.schedule.SectionID,
			SectionName:   g.schedule.SectionName,
			Year:          g.schedule.Year,
			Month:         g.schedule.Month,
			Day:           g.day,
			FirstStart:    formatClock(g.minStart),
			LastEnd:       formatClock(g.maxEnd),
			SpillsNextDay: g.spills,
			DayHours:      float64(g.minutes) / 60.0,
		})
	}
	return rows
}

// attachMonthTotals suma las horas de todos los días por doctor/especialidad/
// sección y repite ese total en cada fila del grupo.
func attachMonthTotals(rows []models.DayRow) {
	type totalKey struct {
		doctorID     int
		hasSpecialty bool
		specialtyID  int
		sectionID    int
	}
	totals := make(map[totalKey]float64)
	keyOf := func(r models.DayRow) totalKey {
		k := totalKey{doctorID: r.Doctor.ID, sectionID: r.SectionID}
		if r.SpecialtyID != nil {
			k.hasSpecialty = true
			k.specialtyID = *r.SpecialtyID
		}
		return k
	}
	for _, r := range rows {
		totals[keyOf(r)] += r.DayHours
	}
	for i := range rows {
		rows[i].TotalHours = totals[keyOf(rows[i])]
	}
}

// Aggregate ejecuta todas las etapas y devuelve las filas ordenadas por
// apellido, nombre y día.
func Aggregate(schedules []models.MonthSchedule) ([]models.DayRow, error) {
	var segs []segment
	for _, a := range expandAssignments(schedules) {
		ss, err := segmentAssignment(a)
		if err != nil {
			return nil, err
		}
		for _, s := range ss {
			segs = append(segs, clampSegment(s))
		}
	}

	rows := aggregateSegments(segs)
	attachMonthTotals(rows)

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Doctor.LastName != b.Doctor.LastName {
			return a.Doctor.LastName < b.Doctor.LastName
		}
		if a.Doctor.FirstName != b.Doctor.FirstName {
			return a.Doctor.FirstName < b.Doctor.FirstName
		}
		if a.Doctor.ID != b.Doctor.ID {
			return a.Doctor.ID < b.Doctor.ID
		}
		if (a.SpecialtyID == nil) != (b.SpecialtyID == nil) {
			return a.SpecialtyID == nil
		}
		if a.SpecialtyID != nil && *a.SpecialtyID != *b.SpecialtyID {
			return *a.SpecialtyID < *b.SpecialtyID
		}
		return a.Day < b.Day
	})
	return rows, nil
}
