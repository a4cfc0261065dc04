package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"clinicd/m/domain"
	"clinicd/m/internal/schema"
)

const doctorColumns = `id, full_name, specialty, email, phone, availability_notes, created_at, updated_at`

func (h *Handler) createDoctor(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var payload schema.DoctorPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	if fe := payload.Validate(false); fe != nil {
		h.respondValidation(w, fe)
		return
	}

	res, err := h.db.ExecContext(r.Context(),
		`INSERT INTO doctors (full_name, specialty, email, phone, availability_notes)
		 VALUES (?, ?, ?, ?, ?)`,
		*payload.FullName, payload.Specialty, payload.Email, payload.Phone, payload.AvailabilityNotes)
	if err != nil {
		if isUniqueViolation(err) {
			h.respondError(w, http.StatusConflict, codeConflict, "doctor with this email already exists")
			return
		}
		h.writeError(w, err)
		return
	}
	id, _ := res.LastInsertId()
	h.respondDoctor(w, r, id, http.StatusCreated)
}

func (h *Handler) listDoctors(w http.ResponseWriter, r *http.Request) {
	doctors := []domain.Doctor{}
	if err := h.db.SelectContext(r.Context(), &doctors,
		`SELECT `+doctorColumns+` FROM doctors ORDER BY full_name`); err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doctors)
}

func (h *Handler) getDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, "invalid doctor id")
		return
	}
	h.respondDoctor(w, r, id, http.StatusOK)
}

func (h *Handler) updateDoctor(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, "invalid doctor id")
		return
	}
	var payload schema.DoctorPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	if fe := payload.Validate(true); fe != nil {
		h.respondValidation(w, fe)
		return
	}

	var (
		sets []string
		args []any
	)
	if payload.FullName != nil {
		sets, args = append(sets, "full_name = ?"), append(args, *payload.FullName)
	}
	if payload.Specialty != nil {
		sets, args = append(sets, "specialty = ?"), append(args, *payload.Specialty)
	}
	if payload.Email != nil {
		sets, args = append(sets, "email = ?"), append(args, *payload.Email)
	}
	if payload.Phone != nil {
		sets, args = append(sets, "phone = ?"), append(args, *payload.Phone)
	}
	if payload.AvailabilityNotes != nil {
		sets, args = append(sets, "availability_notes = ?"), append(args, *payload.AvailabilityNotes)
	}
	if len(sets) == 0 {
		h.respondError(w, http.StatusBadRequest, codeValidation, "no fields to update")
		return
	}
	sets = append(sets, "updated_at = datetime('now')")
	args = append(args, id)

	res, err := h.db.ExecContext(r.Context(),
		`UPDATE doctors SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if isUniqueViolation(err) {
			h.respondError(w, http.StatusConflict, codeConflict, "another doctor with this email already exists")
			return
		}
		h.writeError(w, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		h.respondError(w, http.StatusNotFound, codeNotFound, "doctor not found")
		return
	}
	h.respondDoctor(w, r, id, http.StatusOK)
}

// deleteDoctor is blocked while appointments still reference the
// doctor; the appointment relation does not cascade.
func (h *Handler) deleteDoctor(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, "invalid doctor id")
		return
	}

	var referenced bool
	if err := h.db.GetContext(r.Context(), &referenced,
		`SELECT EXISTS(SELECT 1 FROM appointments WHERE doctor_id = ?)`, id); err != nil {
		h.writeError(w, err)
		return
	}
	if referenced {
		h.respondError(w, http.StatusConflict, codeConflict,
			"cannot delete doctor: appointments reference this doctor")
		return
	}

	res, err := h.db.ExecContext(r.Context(), `DELETE FROM doctors WHERE id = ?`, id)
	if err != nil {
		if isFKViolation(err) {
			h.respondError(w, http.StatusConflict, codeConflict,
				"cannot delete doctor: appointments reference this doctor")
			return
		}
		h.writeError(w, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		h.respondError(w, http.StatusNotFound, codeNotFound, "doctor not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "doctor deleted"})
}

func (h *Handler) respondDoctor(w http.ResponseWriter, r *http.Request, id int64, status int) {
	var doctor domain.Doctor
	err := h.db.GetContext(r.Context(), &doctor,
		`SELECT `+doctorColumns+` FROM doctors WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		h.respondError(w, http.StatusNotFound, codeNotFound, "doctor not found")
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, status, doctor)
}
