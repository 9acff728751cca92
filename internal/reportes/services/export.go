package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Adagu69/calendario-medico-sub000/internal/reportes/models"
)

const (
	sheetName  = "TURNOS"
	daysInGrid = 31
	// 12 columnas de identidad + 31 pares ingreso/salida + total mensual.
	baseColumns  = 12
	totalColumns = baseColumns + daysInGrid*2 + 1
)

// ClinicHeader son los datos institucionales que van repetidos en cada fila
// del formato IPRESS.
type ClinicHeader struct {
	Code    string
	Name    string
	Network string
}

// exportKey agrupa las filas diarias en una sola fila de salida.
type exportKey struct {
	doctorID     int
	hasSpecialty bool
	specialtyID  int
	sectionID    int
}

// BuildWorkbook arma el libro con una fila por doctor/especialidad/sección y
// 31 pares de columnas ingreso/salida. rows debe venir ordenado (salida de
// Aggregate); el orden de filas del libro respeta esa primera aparición.
func BuildWorkbook(rows []models.DayRow, period string, clinic ClinicHeader) (*bytes.Buffer, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no hay filas para exportar")
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetName)

	header := []string{
		"COD_IPRESS", "IPRESS", "RED", "TIPO_DOC", "NRO_DOC", "PROFESION",
		"COLEGIATURA", "APELLIDOS", "NOMBRES", "ESPECIALIDAD", "SERVICIO", "PERIODO",
	}
	for d := 1; d <= daysInGrid; d++ {
		header = append(header, fmt.Sprintf("DIA%02d_INGRESO", d), fmt.Sprintf("DIA%02d_SALIDA", d))
	}
	header = append(header, "TOTAL_HORAS")
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	// Una pasada sobre las filas agregadas: primera aparición del grupo fija
	// el orden, los días se van rellenando en su par de columnas.
	order := make([]exportKey, 0)
	grouped := make(map[exportKey][]models.DayRow)
	for _, r := range rows {
		k := exportKey{doctorID: r.Doctor.ID, sectionID: r.SectionID}
		if r.SpecialtyID != nil {
			k.hasSpecialty = true
			k.specialtyID = *r.SpecialtyID
		}
		if _, seen := grouped[k]; !seen {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], r)
	}

	for i, k := range order {
		group := grouped[k]
		first := group[0]

		specialty := ""
		if first.SpecialtyName != nil {
			specialty = *first.SpecialtyName
		}
		cells := make([]interface{}, totalColumns)
		copy(cells, []interface{}{
			clinic.Code, clinic.Name, clinic.Network,
			first.Doctor.DocumentType, first.Doctor.DocumentNumber,
			first.Doctor.Profession, first.Doctor.License,
			first.Doctor.LastName, first.Doctor.FirstName,
			specialty, first.SectionName, period,
		})
		for c := baseColumns; c < totalColumns; c++ {
			cells[c] = ""
		}

		for _, r := range group {
			if r.Day < 1 || r.Day > daysInGrid {
				continue
			}
			checkOut := r.LastEnd
			// Un turno que termina exactamente a medianoche se calcula como
			// "00:00"; en el formato se muestra 23:59 para que no parezca
			// que salió a la medianoche del día equivocado.
			if r.SpillsNextDay && checkOut == "00:00" {
				checkOut = "23:59"
			}
			col := baseColumns + (r.Day-1)*2
			cells[col] = r.FirstStart
			cells[col+1] = checkOut
		}
		cells[totalColumns-1] = fmt.Sprintf("%.2f", first.TotalHours)

		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", i+2), &cells); err != nil {
			return nil, err
		}
	}

	// Fila de encabezado congelada y autofiltro sobre todas las columnas.
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze: true, Split: false, XSplit: 0, YSplit: 1,
		TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(totalColumns)
	if err != nil {
		return nil, err
	}
	if err := f.AutoFilter(sheetName, fmt.Sprintf("A1:%s1", lastCol), nil); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}
