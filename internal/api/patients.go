package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"clinicd/m/domain"
	"clinicd/m/internal/schema"
)

const patientColumns = `id, full_name, email, phone, date_of_birth, address, medical_history_summary, created_at, updated_at`

func (h *Handler) createPatient(w http.ResponseWriter, r *http.Request) {
	var payload schema.PatientPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	if fe := payload.Validate(false); fe != nil {
		h.respondValidation(w, fe)
		return
	}

	var exists bool
	if err := h.db.GetContext(r.Context(), &exists,
		`SELECT EXISTS(SELECT 1 FROM patients WHERE phone = ? OR (email IS NOT NULL AND email = ?))`,
		*payload.Phone, payload.Email); err != nil {
		h.writeError(w, err)
		return
	}
	if exists {
		h.respondError(w, http.StatusConflict, codeConflict, "patient with this email or phone already exists")
		return
	}

	res, err := h.db.ExecContext(r.Context(),
		`INSERT INTO patients (full_name, email, phone, date_of_birth, address, medical_history_summary)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		*payload.FullName, payload.Email, *payload.Phone,
		payload.DateOfBirth, payload.Address, payload.MedicalHistorySummary)
	if err != nil {
		if isUniqueViolation(err) {
			h.respondError(w, http.StatusConflict, codeConflict, "patient with this email already exists")
			return
		}
		h.writeError(w, err)
		return
	}
	id, _ := res.LastInsertId()
	h.respondPatient(w, r, id, http.StatusCreated)
}

func (h *Handler) listPatients(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	patients := []domain.Patient{}
	var err error
	if search != "" {
		like := "%" + search + "%"
		err = h.db.SelectContext(r.Context(), &patients,
			`SELECT `+patientColumns+` FROM patients
			 WHERE full_name LIKE ? OR email LIKE ? OR phone LIKE ?
			 ORDER BY full_name`, like, like, like)
	} else {
		err = h.db.SelectContext(r.Context(), &patients,
			`SELECT `+patientColumns+` FROM patients ORDER BY full_name`)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, patients)
}

func (h *Handler) getPatient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, "invalid patient id")
		return
	}
	h.respondPatient(w, r, id, http.StatusOK)
}

func (h *Handler) updatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, "invalid patient id")
		return
	}
	var payload schema.PatientPayload
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
	if payload.Email != nil {
		sets, args = append(sets, "email = ?"), append(args, *payload.Email)
	}
	if payload.Phone != nil {
		sets, args = append(sets, "phone = ?"), append(args, *payload.Phone)
	}
	if payload.DateOfBirth != nil {
		sets, args = append(sets, "date_of_birth = ?"), append(args, *payload.DateOfBirth)
	}
	if payload.Address != nil {
		sets, args = append(sets, "address = ?"), append(args, *payload.Address)
	}
	if payload.MedicalHistorySummary != nil {
		sets, args = append(sets, "medical_history_summary = ?"), append(args, *payload.MedicalHistorySummary)
	}
	if len(sets) == 0 {
		h.respondError(w, http.StatusBadRequest, codeValidation, "no fields to update")
		return
	}
	sets = append(sets, "updated_at = datetime('now')")
	args = append(args, id)

	res, err := h.db.ExecContext(r.Context(),
		`UPDATE patients SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if isUniqueViolation(err) {
			h.respondError(w, http.StatusConflict, codeConflict, "another patient with this email already exists")
			return
		}
		h.writeError(w, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		h.respondError(w, http.StatusNotFound, codeNotFound, "patient not found")
		return
	}
	h.respondPatient(w, r, id, http.StatusOK)
}

// deletePatient is destructive: appointments, bills and bill items for
// the patient go with it.
func (h *Handler) deletePatient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, "invalid patient id")
		return
	}
	res, err := h.db.ExecContext(r.Context(), `DELETE FROM patients WHERE id = ?`, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		h.respondError(w, http.StatusNotFound, codeNotFound, "patient not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "patient deleted"})
}

func (h *Handler) respondPatient(w http.ResponseWriter, r *http.Request, id int64, status int) {
	var patient domain.Patient
	err := h.db.GetContext(r.Context(), &patient,
		`SELECT `+patientColumns+` FROM patients WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		h.respondError(w, http.StatusNotFound, codeNotFound, "patient not found")
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, status, patient)
}
