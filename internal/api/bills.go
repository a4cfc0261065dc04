package api

import (
	"net/http"
	"strconv"
	"time"

	"clinicd/m/internal/billing"
	"clinicd/m/internal/schema"
)

func (h *Handler) createBill(w http.ResponseWriter, r *http.Request) {
	var payload schema.BillPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	if fe := payload.Validate(); fe != nil {
		h.respondValidation(w, fe)
		return
	}

	bill, err := h.billing.CreateBill(r.Context(), payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, bill)
}

func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	var filter billing.ListFilter
	if raw := r.URL.Query().Get("patient_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, codeValidation, "patient_id must be an integer")
			return
		}
		filter.PatientID = id
	}
	filter.PaymentStatus = r.URL.Query().Get("payment_status")
	for param, dest := range map[string]*string{
		"start_date": &filter.StartDate,
		"end_date":   &filter.EndDate,
	} {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			h.respondError(w, http.StatusBadRequest, codeValidation, param+" must be in YYYY-MM-DD format")
			return
		}
		*dest = raw
	}

	bills, err := h.billing.ListBills(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bills)
}

func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, "invalid bill id")
		return
	}
	bill, err := h.billing.GetBill(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bill)
}

func (h *Handler) updateBill(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, "invalid bill id")
		return
	}
	var payload schema.BillUpdatePayload
	if err := decodeJSON(r, &payload); err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	if fe := payload.Validate(); fe != nil {
		h.respondValidation(w, fe)
		return
	}

	bill, err := h.billing.UpdateBill(r.Context(), id, payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bill)
}

func (h *Handler) deleteBill(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, "invalid bill id")
		return
	}
	if err := h.billing.DeleteBill(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "bill deleted and stock restored"})
}
