package services

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Adagu69/calendario-medico-sub000/internal/reportes/models"
)

var testClinic = ClinicHeader{Code: "00012345", Name: "CLINICA SUB000", Network: "RED LIMA NORTE"}

func testDayRow(day int, start, end string, spills bool, dayHours, totalHours float64) models.DayRow {
	return models.DayRow{
		Doctor: models.DoctorInfo{
			ID: 1, DocumentType: "DNI", DocumentNumber: "12345678",
			FirstName: "Ana", LastName: "Quispe", Profession: "MEDICO", License: "CMP-1001",
		},
		SectionID: 1, SectionName: "Consulta Externa",
		Year: 2025, Month: 3, Day: day,
		FirstStart: start, LastEnd: end, SpillsNextDay: spills,
		DayHours: dayHours, TotalHours: totalHours,
	}
}

func openWorkbook(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("abriendo libro generado: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, col, row int) string {
	t.Helper()
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		t.Fatalf("columna %d: %v", col, err)
	}
	v, err := f.GetCellValue(sheetName, fmt.Sprintf("%s%d", name, row))
	if err != nil {
		t.Fatalf("leyendo celda %s%d: %v", name, row, err)
	}
	return v
}

func TestBuildWorkbookLayout(t *testing.T) {
	rows := []models.DayRow{testDayRow(15, "08:00", "14:00", false, 6, 6)}
	buf, err := BuildWorkbook(rows, "2025-03", testClinic)
	if err != nil {
		t.Fatalf("BuildWorkbook: %v", err)
	}
	f := openWorkbook(t, buf)

	if got := cell(t, f, 1, 1); got != "COD_IPRESS" {
		t.Errorf("primera columna de cabecera = %q", got)
	}
	if got := cell(t, f, 12, 1); got != "PERIODO" {
		t.Errorf("columna 12 = %q, esperaba PERIODO", got)
	}
	if got := cell(t, f, 13, 1); got != "DIA01_INGRESO" {
		t.Errorf("columna 13 = %q, esperaba DIA01_INGRESO", got)
	}
	if got := cell(t, f, totalColumns, 1); got != "TOTAL_HORAS" {
		t.Errorf("última columna = %q, esperaba TOTAL_HORAS", got)
	}
	// Nada después de la columna 75.
	if got := cell(t, f, totalColumns+1, 1); got != "" {
		t.Errorf("hay contenido más allá de la última columna: %q", got)
	}

	if got := cell(t, f, 1, 2); got != testClinic.Code {
		t.Errorf("COD_IPRESS = %q", got)
	}
	if got := cell(t, f, 8, 2); got != "Quispe" {
		t.Errorf("APELLIDOS = %q", got)
	}
	if got := cell(t, f, 12, 2); got != "2025-03" {
		t.Errorf("PERIODO = %q", got)
	}
}

func TestBuildWorkbookDayColumns(t *testing.T) {
	rows := []models.DayRow{testDayRow(15, "08:00", "14:00", false, 6, 6)}
	buf, err := BuildWorkbook(rows, "2025-03", testClinic)
	if err != nil {
		t.Fatalf("BuildWorkbook: %v", err)
	}
	f := openWorkbook(t, buf)

	ingreso := baseColumns + (15-1)*2 + 1 // numeración 1-based de excelize
	if got := cell(t, f, ingreso, 2); got != "08:00" {
		t.Errorf("DIA15_INGRESO = %q", got)
	}
	if got := cell(t, f, ingreso+1, 2); got != "14:00" {
		t.Errorf("DIA15_SALIDA = %q", got)
	}
	// Un día sin turnos queda en blanco.
	otro := baseColumns + (10-1)*2 + 1
	if got := cell(t, f, otro, 2); got != "" {
		t.Errorf("DIA10_INGRESO = %q, esperaba vacío", got)
	}
	if got := cell(t, f, totalColumns, 2); got != "6.00" {
		t.Errorf("TOTAL_HORAS = %q, esperaba 6.00", got)
	}
}

func TestBuildWorkbookMidnightShownAs2359(t *testing.T) {
	rows := []models.DayRow{testDayRow(15, "22:00", "00:00", true, 2, 8)}
	buf, err := BuildWorkbook(rows, "2025-03", testClinic)
	if err != nil {
		t.Fatalf("BuildWorkbook: %v", err)
	}
	f := openWorkbook(t, buf)

	salida := baseColumns + (15-1)*2 + 2
	if got := cell(t, f, salida, 2); got != "23:59" {
		t.Errorf("la salida a medianoche debe mostrarse 23:59, obtuve %q", got)
	}
}

func TestBuildWorkbookGroupsDaysIntoOneRow(t *testing.T) {
	rows := []models.DayRow{
		testDayRow(3, "08:00", "14:00", false, 6, 12),
		testDayRow(7, "08:00", "14:00", false, 6, 12),
	}
	buf, err := BuildWorkbook(rows, "2025-03", testClinic)
	if err != nil {
		t.Fatalf("BuildWorkbook: %v", err)
	}
	f := openWorkbook(t, buf)

	if got := cell(t, f, 1, 3); got != "" {
		t.Errorf("los días del mismo doctor deben compartir fila, la fila 3 tiene %q", got)
	}
	d3 := baseColumns + (3-1)*2 + 1
	d7 := baseColumns + (7-1)*2 + 1
	if cell(t, f, d3, 2) != "08:00" || cell(t, f, d7, 2) != "08:00" {
		t.Error("ambos días deben estar rellenos en la misma fila")
	}
	if got := cell(t, f, totalColumns, 2); got != "12.00" {
		t.Errorf("TOTAL_HORAS = %q, esperaba 12.00", got)
	}
}

// Escenario completo: un turno nocturno 22:00-06:00 el día 15 atraviesa la
// agregación y el exportador; el día 15 sale 22:00-23:59, el 16 sale
// 00:00-06:00 y el total es de 8 horas.
func TestNightShiftThroughPipelineAndExport(t *testing.T) {
	ms := testSchedule(1, 2025, 3,
		[]models.TimeSlot{{ID: 1, Name: "NOCHE", Start: "22:00", End: "06:00"}},
		[]models.MonthDay{{Day: 15, SlotIDs: []int{1}}})

	rows, err := Aggregate([]models.MonthSchedule{ms})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	buf, err := BuildWorkbook(rows, "2025-03", testClinic)
	if err != nil {
		t.Fatalf("BuildWorkbook: %v", err)
	}
	f := openWorkbook(t, buf)

	d15 := baseColumns + (15-1)*2 + 1
	if got := cell(t, f, d15, 2); got != "22:00" {
		t.Errorf("DIA15_INGRESO = %q, esperaba 22:00", got)
	}
	if got := cell(t, f, d15+1, 2); got != "23:59" {
		t.Errorf("DIA15_SALIDA = %q, esperaba 23:59", got)
	}
	d16 := baseColumns + (16-1)*2 + 1
	if got := cell(t, f, d16, 2); got != "00:00" {
		t.Errorf("DIA16_INGRESO = %q, esperaba 00:00", got)
	}
	if got := cell(t, f, d16+1, 2); got != "06:00" {
		t.Errorf("DIA16_SALIDA = %q, esperaba 06:00", got)
	}
	if got := cell(t, f, totalColumns, 2); got != "8.00" {
		t.Errorf("TOTAL_HORAS = %q, esperaba 8.00", got)
	}
}

func TestBuildWorkbookEmptyRowsFails(t *testing.T) {
	if _, err := BuildWorkbook(nil, "2025-03", testClinic); err == nil {
		t.Error("sin filas debe devolver error")
	}
}
