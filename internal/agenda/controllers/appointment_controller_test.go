package controllers

import "testing"

func TestAppointmentRequestValidate(t *testing.T) {
	valid := appointmentRequest{
		DoctorID: 1, OfficeID: 2, SlotLabel: "MAÑANA",
		Date: "2025-03-15", PatientName: "Juan Pérez",
	}
	if errs := valid.validate(); len(errs) > 0 {
		t.Fatalf("una solicitud completa no debe tener errores: %+v", errs)
	}

	cases := []struct {
		name  string
		mut   func(*appointmentRequest)
		field string
	}{
		{"sin doctor", func(r *appointmentRequest) { r.DoctorID = 0 }, "doctor_id"},
		{"sin consultorio", func(r *appointmentRequest) { r.OfficeID = 0 }, "office_id"},
		{"sin turno", func(r *appointmentRequest) { r.SlotLabel = "" }, "slot_label"},
		{"fecha inválida", func(r *appointmentRequest) { r.Date = "15/03/2025" }, "date"},
		{"sin paciente", func(r *appointmentRequest) { r.PatientName = "" }, "patient_name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mut(&req)
			errs := req.validate()
			if len(errs) == 0 {
				t.Fatal("esperaba error de validación")
			}
			found := false
			for _, e := range errs {
				if e.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Errorf("el error debe señalar el campo %s: %+v", tc.field, errs)
			}
		})
	}
}
