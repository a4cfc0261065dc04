package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicd/m/domain"
)

func (e *testEnv) createDoctor(t *testing.T, token, name string) int64 {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/doctors/", token, map[string]any{
		"full_name": name,
		"specialty": "Ophthalmology",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var doc domain.Doctor
	decodeBody(t, rec, &doc)
	return doc.ID
}

func (e *testEnv) createAppointment(t *testing.T, token string, patientID, doctorID int64) int64 {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/appointments/", token, map[string]any{
		"patient_id":           patientID,
		"doctor_id":            doctorID,
		"appointment_datetime": "2026-09-15T10:30:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var appt domain.Appointment
	decodeBody(t, rec, &appt)
	return appt.ID
}

func TestDeleteDoctor_BlockedByAppointments(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	patientID := env.createPatient(t, admin, "Jamie Rivera", "555-0100")
	doctorID := env.createDoctor(t, admin, "Dr. Priya Nair")
	apptID := env.createAppointment(t, admin, patientID, doctorID)

	rec := env.do(t, http.MethodDelete, "/doctors/"+itoa(doctorID), admin, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	var resp struct {
		Code string `json:"error"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Conflict", resp.Code)

	// Once the appointment is removed the doctor can go.
	rec = env.do(t, http.MethodDelete, "/appointments/"+itoa(apptID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/doctors/"+itoa(doctorID), admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeletePatient_CascadesToAppointmentsAndBills(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	patientID := env.createPatient(t, admin, "Jamie Rivera", "555-0100")
	doctorID := env.createDoctor(t, admin, "Dr. Priya Nair")
	env.createAppointment(t, admin, patientID, doctorID)

	rec := env.do(t, http.MethodPost, "/bills/", admin, map[string]any{
		"patient_id": patientID,
		"bill_items": []map[string]any{
			{"service_description": "Consultation", "quantity": 1, "unit_price": "20.00"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodDelete, "/patients/"+itoa(patientID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, table := range []string{"appointments", "bills", "bill_items"} {
		var count int64
		require.NoError(t, env.db.Get(&count, `SELECT COUNT(*) FROM `+table))
		assert.Zero(t, count, "expected %s to be emptied", table)
	}
}

func TestDeleteInventoryItem_BlockedWhenBilled(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	patientID := env.createPatient(t, admin, "Jamie Rivera", "555-0100")
	itemID := env.createInventoryItem(t, admin, "Lens", 10, "5.00")

	rec := env.do(t, http.MethodPost, "/bills/", admin, map[string]any{
		"patient_id": patientID,
		"bill_items": []map[string]any{
			{"inventory_item_id": itemID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var bill domain.Bill
	decodeBody(t, rec, &bill)

	rec = env.do(t, http.MethodDelete, "/inventory/"+itoa(itemID), admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Removing the bill frees the item for deletion.
	rec = env.do(t, http.MethodDelete, "/bills/"+itoa(bill.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, "/inventory/"+itoa(itemID), admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAppointment_UnknownReferences(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	patientID := env.createPatient(t, admin, "Jamie Rivera", "555-0100")

	rec := env.do(t, http.MethodPost, "/appointments/", admin, map[string]any{
		"patient_id":           patientID,
		"doctor_id":            999,
		"appointment_datetime": "2026-09-15T10:30:00Z",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/appointments/", admin, map[string]any{
		"patient_id":           999,
		"doctor_id":            1,
		"appointment_datetime": "2026-09-15T10:30:00Z",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminOnlyMutations(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	staff := env.staffToken(t)
	doctorID := env.createDoctor(t, admin, "Dr. Priya Nair")
	itemID := env.createInventoryItem(t, admin, "Lens", 10, "5.00")

	cases := []struct {
		method, path string
		body         map[string]any
	}{
		{http.MethodPost, "/doctors/", map[string]any{"full_name": "Dr. New"}},
		{http.MethodPut, "/doctors/" + itoa(doctorID), map[string]any{"full_name": "Dr. Renamed"}},
		{http.MethodDelete, "/doctors/" + itoa(doctorID), nil},
		{http.MethodPost, "/inventory/", map[string]any{"name": "Frames", "quantity_on_hand": 5, "unit_price": "9.99"}},
		{http.MethodPut, "/inventory/" + itoa(itemID), map[string]any{"quantity_on_hand": 3}},
		{http.MethodDelete, "/inventory/" + itoa(itemID), nil},
	}
	for _, tc := range cases {
		rec := env.do(t, tc.method, tc.path, staff, tc.body)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", tc.method, tc.path)
		var resp struct {
			Code string `json:"error"`
		}
		decodeBody(t, rec, &resp)
		assert.Equal(t, "Forbidden", resp.Code)
	}

	// Reads stay open to any authenticated role.
	rec := env.do(t, http.MethodGet, "/doctors/", staff, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/inventory/", staff, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStaffCanManagePatientsAndBills(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	staff := env.staffToken(t)
	itemID := env.createInventoryItem(t, admin, "Lens", 10, "5.00")

	patientID := env.createPatient(t, staff, "Jamie Rivera", "555-0100")

	rec := env.do(t, http.MethodPost, "/bills/", staff, map[string]any{
		"patient_id": patientID,
		"bill_items": []map[string]any{
			{"inventory_item_id": itemID, "quantity": 2},
		},
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestDuplicatePatientContactRejected(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	env.createPatient(t, admin, "Jamie Rivera", "555-0100")

	rec := env.do(t, http.MethodPost, "/patients/", admin, map[string]any{
		"full_name": "Other Person",
		"phone":     "555-0100",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
