package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"clinicd/m/domain"
	"clinicd/m/internal/schema"
)

const inventoryColumns = `id, name, category, description, quantity_on_hand, reorder_level, unit_price, supplier_info, created_at, updated_at`

func (h *Handler) createInventoryItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var payload schema.InventoryItemPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	if fe := payload.Validate(false); fe != nil {
		h.respondValidation(w, fe)
		return
	}

	reorderLevel := int64(0)
	if payload.ReorderLevel != nil {
		reorderLevel = *payload.ReorderLevel
	}

	res, err := h.db.ExecContext(r.Context(),
		`INSERT INTO inventory_items (name, category, description, quantity_on_hand, reorder_level, unit_price, supplier_info)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		*payload.Name, payload.Category, payload.Description,
		*payload.QuantityOnHand, reorderLevel, payload.UnitPrice.StringFixed(2), payload.SupplierInfo)
	if err != nil {
		if isUniqueViolation(err) {
			h.respondError(w, http.StatusConflict, codeConflict, "inventory item with this name already exists")
			return
		}
		h.writeError(w, err)
		return
	}
	id, _ := res.LastInsertId()
	h.respondInventoryItem(w, r, id, http.StatusCreated)
}

func (h *Handler) listInventoryItems(w http.ResponseWriter, r *http.Request) {
	var (
		clauses []string
		args    []any
	)
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		clauses = append(clauses, "category LIKE ?")
		args = append(args, "%"+category+"%")
	}
	if strings.EqualFold(r.URL.Query().Get("low_stock"), "true") {
		clauses = append(clauses, "quantity_on_hand <= reorder_level")
	}

	query := `SELECT ` + inventoryColumns + ` FROM inventory_items`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY name"

	items := []domain.InventoryItem{}
	if err := h.db.SelectContext(r.Context(), &items, query, args...); err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) getInventoryItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, "invalid inventory item id")
		return
	}
	h.respondInventoryItem(w, r, id, http.StatusOK)
}

func (h *Handler) updateInventoryItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, "invalid inventory item id")
		return
	}
	var payload schema.InventoryItemPayload
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
	if payload.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *payload.Name)
	}
	if payload.Category != nil {
		sets, args = append(sets, "category = ?"), append(args, *payload.Category)
	}
	if payload.Description != nil {
		sets, args = append(sets, "description = ?"), append(args, *payload.Description)
	}
	if payload.QuantityOnHand != nil {
		sets, args = append(sets, "quantity_on_hand = ?"), append(args, *payload.QuantityOnHand)
	}
	if payload.ReorderLevel != nil {
		sets, args = append(sets, "reorder_level = ?"), append(args, *payload.ReorderLevel)
	}
	if payload.UnitPrice != nil {
		sets, args = append(sets, "unit_price = ?"), append(args, payload.UnitPrice.StringFixed(2))
	}
	if payload.SupplierInfo != nil {
		sets, args = append(sets, "supplier_info = ?"), append(args, *payload.SupplierInfo)
	}
	if len(sets) == 0 {
		h.respondError(w, http.StatusBadRequest, codeValidation, "no fields to update")
		return
	}
	sets = append(sets, "updated_at = datetime('now')")
	args = append(args, id)

	res, err := h.db.ExecContext(r.Context(),
		`UPDATE inventory_items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if isUniqueViolation(err) {
			h.respondError(w, http.StatusConflict, codeConflict, "another inventory item with this name already exists")
			return
		}
		h.writeError(w, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		h.respondError(w, http.StatusNotFound, codeNotFound, "inventory item not found")
		return
	}
	h.respondInventoryItem(w, r, id, http.StatusOK)
}

// deleteInventoryItem is blocked while bill items still reference the
// item: bills keep their price snapshots, so the referenced row must
// survive.
func (h *Handler) deleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, "invalid inventory item id")
		return
	}

	var referenced bool
	if err := h.db.GetContext(r.Context(), &referenced,
		`SELECT EXISTS(SELECT 1 FROM bill_items WHERE inventory_item_id = ?)`, id); err != nil {
		h.writeError(w, err)
		return
	}
	if referenced {
		h.respondError(w, http.StatusConflict, codeConflict,
			"cannot delete inventory item: bill items reference this item")
		return
	}

	res, err := h.db.ExecContext(r.Context(), `DELETE FROM inventory_items WHERE id = ?`, id)
	if err != nil {
		if isFKViolation(err) {
			h.respondError(w, http.StatusConflict, codeConflict,
				"cannot delete inventory item: bill items reference this item")
			return
		}
		h.writeError(w, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		h.respondError(w, http.StatusNotFound, codeNotFound, "inventory item not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "inventory item deleted"})
}

func (h *Handler) respondInventoryItem(w http.ResponseWriter, r *http.Request, id int64, status int) {
	var item domain.InventoryItem
	err := h.db.GetContext(r.Context(), &item,
		`SELECT `+inventoryColumns+` FROM inventory_items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		h.respondError(w, http.StatusNotFound, codeNotFound, "inventory item not found")
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, status, item)
}
