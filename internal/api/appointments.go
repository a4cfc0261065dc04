package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"clinicd/m/domain"
	"clinicd/m/internal/schema"
)

const appointmentColumns = `id, patient_id, doctor_id, appointment_datetime, status, notes, created_at, updated_at`

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	var payload schema.AppointmentPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	if fe := payload.Validate(false); fe != nil {
		h.respondValidation(w, fe)
		return
	}
	if !h.checkAppointmentRefs(w, r, payload.PatientID, payload.DoctorID) {
		return
	}

	status := domain.AppointmentScheduled
	if payload.Status != nil {
		status = *payload.Status
	}

	res, err := h.db.ExecContext(r.Context(),
		`INSERT INTO appointments (patient_id, doctor_id, appointment_datetime, status, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		*payload.PatientID, *payload.DoctorID, *payload.AppointmentDatetime, status, payload.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	id, _ := res.LastInsertId()
	h.respondAppointment(w, r, id, http.StatusCreated)
}

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	var (
		clauses []string
		args    []any
	)
	if raw := r.URL.Query().Get("patient_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, codeValidation, "patient_id must be an integer")
			return
		}
		clauses = append(clauses, "patient_id = ?")
		args = append(args, id)
	}
	if raw := r.URL.Query().Get("doctor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, codeValidation, "doctor_id must be an integer")
			return
		}
		clauses = append(clauses, "doctor_id = ?")
		args = append(args, id)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, status)
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY appointment_datetime"

	appointments := []domain.Appointment{}
	if err := h.db.SelectContext(r.Context(), &appointments, query, args...); err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, appointments)
}

func (h *Handler) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, "invalid appointment id")
		return
	}
	h.respondAppointment(w, r, id, http.StatusOK)
}

func (h *Handler) updateAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, "invalid appointment id")
		return
	}
	var payload schema.AppointmentPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	if fe := payload.Validate(true); fe != nil {
		h.respondValidation(w, fe)
		return
	}
	if !h.checkAppointmentRefs(w, r, payload.PatientID, payload.DoctorID) {
		return
	}

	var (
		sets []string
		args []any
	)
	if payload.PatientID != nil {
		sets, args = append(sets, "patient_id = ?"), append(args, *payload.PatientID)
	}
	if payload.DoctorID != nil {
		sets, args = append(sets, "doctor_id = ?"), append(args, *payload.DoctorID)
	}
	if payload.AppointmentDatetime != nil {
		sets, args = append(sets, "appointment_datetime = ?"), append(args, *payload.AppointmentDatetime)
	}
	if payload.Status != nil {
		sets, args = append(sets, "status = ?"), append(args, *payload.Status)
	}
	if payload.Notes != nil {
		sets, args = append(sets, "notes = ?"), append(args, *payload.Notes)
	}
	if len(sets) == 0 {
		h.respondError(w, http.StatusBadRequest, codeValidation, "no fields to update")
		return
	}
	sets = append(sets, "updated_at = datetime('now')")
	args = append(args, id)

	res, err := h.db.ExecContext(r.Context(),
		`UPDATE appointments SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		h.respondError(w, http.StatusNotFound, codeNotFound, "appointment not found")
		return
	}
	h.respondAppointment(w, r, id, http.StatusOK)
}

func (h *Handler) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, "invalid appointment id")
		return
	}
	res, err := h.db.ExecContext(r.Context(), `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		h.respondError(w, http.StatusNotFound, codeNotFound, "appointment not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "appointment deleted"})
}

// checkAppointmentRefs verifies referenced patient and doctor rows
// exist for the ids that are present, writing a 404 when one is
// missing.
func (h *Handler) checkAppointmentRefs(w http.ResponseWriter, r *http.Request, patientID, doctorID *int64) bool {
	if patientID != nil {
		var exists bool
		if err := h.db.GetContext(r.Context(), &exists,
			`SELECT EXISTS(SELECT 1 FROM patients WHERE id = ?)`, *patientID); err != nil {
			h.writeError(w, err)
			return false
		}
		if !exists {
			h.respondError(w, http.StatusNotFound, codeNotFound, "patient not found")
			return false
		}
	}
	if doctorID != nil {
		var exists bool
		if err := h.db.GetContext(r.Context(), &exists,
			`SELECT EXISTS(SELECT 1 FROM doctors WHERE id = ?)`, *doctorID); err != nil {
			h.writeError(w, err)
			return false
		}
		if !exists {
			h.respondError(w, http.StatusNotFound, codeNotFound, "doctor not found")
			return false
		}
	}
	return true
}

func (h *Handler) respondAppointment(w http.ResponseWriter, r *http.Request, id int64, status int) {
	var appointment domain.Appointment
	err := h.db.GetContext(r.Context(), &appointment,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		h.respondError(w, http.StatusNotFound, codeNotFound, "appointment not found")
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, status, appointment)
}
