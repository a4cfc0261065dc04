// Package billing owns the bill lifecycle and the inventory stock
// adjustments tied to it. Every operation that touches stock runs in a
// single transaction: either the bill, its items and all decrements
// commit together, or none of them do.
package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"clinicd/m/domain"
	"clinicd/m/internal/schema"
)

// Service executes billing transactions against the database.
type Service struct {
	db  *sqlx.DB
	log *zap.Logger
}

// New constructs a Service.
func New(db *sqlx.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// ListFilter narrows ListBills results. Zero values mean no filter.
type ListFilter struct {
	PatientID     int64
	PaymentStatus string
	StartDate     string
	EndDate       string
}

// CreateBill creates a bill with its line items, decrementing stock
// for every inventory-backed line. The payload must already have
// passed schema validation. Stock-backed lines are priced from the
// inventory item's current unit price; any client-supplied price on
// them is ignored.
func (s *Service) CreateBill(ctx context.Context, payload schema.BillPayload) (*domain.Bill, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin billing transaction: %w", err)
	}
	defer tx.Rollback()

	patientID := *payload.PatientID
	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM patients WHERE id = ?)`, patientID); err != nil {
		return nil, fmt.Errorf("look up patient: %w", err)
	}
	if !exists {
		return nil, &NotFoundError{Entity: "patient", ID: patientID}
	}

	billDate := time.Now().UTC().Format("2006-01-02")
	if payload.BillDate != nil && *payload.BillDate != "" {
		billDate = *payload.BillDate
	}
	paymentStatus := domain.BillUnpaid
	if payload.PaymentStatus != nil {
		paymentStatus = *payload.PaymentStatus
	}

	total := decimal.Zero
	items := make([]domain.BillItem, 0, len(payload.Items))
	for _, line := range payload.Items {
		quantity := *line.Quantity
		var unitPrice decimal.Decimal

		if line.Stocked() {
			itemID := *line.InventoryItemID
			var inv struct {
				ID             int64           `db:"id"`
				Name           string          `db:"name"`
				QuantityOnHand int64           `db:"quantity_on_hand"`
				UnitPrice      decimal.Decimal `db:"unit_price"`
			}
			err := tx.GetContext(ctx, &inv,
				`SELECT id, name, quantity_on_hand, unit_price FROM inventory_items WHERE id = ?`, itemID)
			if errors.Is(err, sql.ErrNoRows) {
				return nil, &NotFoundError{Entity: "inventory item", ID: itemID}
			}
			if err != nil {
				return nil, fmt.Errorf("look up inventory item %d: %w", itemID, err)
			}
			if inv.QuantityOnHand < quantity {
				return nil, &InsufficientStockError{
					ItemID:    itemID,
					Name:      inv.Name,
					Requested: quantity,
					Available: inv.QuantityOnHand,
				}
			}
			// The guard repeats the stock check inside the UPDATE so a
			// concurrent decrement between the read and the write can
			// never push quantity_on_hand below zero.
			res, err := tx.ExecContext(ctx,
				`UPDATE inventory_items
				 SET quantity_on_hand = quantity_on_hand - ?, updated_at = datetime('now')
				 WHERE id = ? AND quantity_on_hand >= ?`,
				quantity, itemID, quantity)
			if err != nil {
				return nil, fmt.Errorf("decrement stock for item %d: %w", itemID, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return nil, &InsufficientStockError{
					ItemID:    itemID,
					Name:      inv.Name,
					Requested: quantity,
					Available: inv.QuantityOnHand,
				}
			}
			unitPrice = inv.UnitPrice
		} else {
			unitPrice = *line.UnitPrice
		}

		subTotal := unitPrice.Mul(decimal.NewFromInt(quantity))
		total = total.Add(subTotal)
		// A stocked line never carries a service description, even a
		// blank one the client echoed along.
		serviceDescription := line.ServiceDescription
		if line.Stocked() {
			serviceDescription = nil
		}
		items = append(items, domain.BillItem{
			InventoryItemID:    line.InventoryItemID,
			ServiceDescription: serviceDescription,
			Quantity:           quantity,
			UnitPrice:          unitPrice,
			SubTotal:           subTotal,
		})
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bills (patient_id, bill_date, total_amount, payment_status, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		patientID, billDate, total.StringFixed(2), paymentStatus, payload.Notes)
	if err != nil {
		return nil, fmt.Errorf("insert bill: %w", err)
	}
	billID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read bill id: %w", err)
	}

	for i := range items {
		items[i].BillID = billID
		res, err := tx.ExecContext(ctx,
			`INSERT INTO bill_items (bill_id, inventory_item_id, service_description, quantity, unit_price, sub_total)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			billID, items[i].InventoryItemID, items[i].ServiceDescription,
			items[i].Quantity, items[i].UnitPrice.StringFixed(2), items[i].SubTotal.StringFixed(2))
		if err != nil {
			return nil, fmt.Errorf("insert bill item: %w", err)
		}
		items[i].ID, _ = res.LastInsertId()
	}

	var bill domain.Bill
	if err := tx.GetContext(ctx, &bill,
		`SELECT id, patient_id, bill_date, total_amount, payment_status, notes, created_at, updated_at
		 FROM bills WHERE id = ?`, billID); err != nil {
		return nil, fmt.Errorf("reload bill: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bill: %w", err)
	}

	bill.Items = items
	s.log.Info("bill created",
		zap.Int64("bill_id", bill.ID),
		zap.Int64("patient_id", bill.PatientID),
		zap.Int("items", len(items)),
		zap.String("total", bill.TotalAmount.StringFixed(2)),
	)
	return &bill, nil
}

// GetBill loads one bill with its items.
func (s *Service) GetBill(ctx context.Context, id int64) (*domain.Bill, error) {
	var bill domain.Bill
	err := s.db.GetContext(ctx, &bill,
		`SELECT id, patient_id, bill_date, total_amount, payment_status, notes, created_at, updated_at
		 FROM bills WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "bill", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load bill %d: %w", id, err)
	}
	if err := s.db.SelectContext(ctx, &bill.Items,
		`SELECT id, bill_id, inventory_item_id, service_description, quantity, unit_price, sub_total
		 FROM bill_items WHERE bill_id = ? ORDER BY id`, id); err != nil {
		return nil, fmt.Errorf("load bill items: %w", err)
	}
	return &bill, nil
}

// ListBills returns bills matching the filter, newest first, each with
// its items attached.
func (s *Service) ListBills(ctx context.Context, filter ListFilter) ([]domain.Bill, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.PatientID > 0 {
		clauses = append(clauses, "patient_id = ?")
		args = append(args, filter.PatientID)
	}
	if filter.PaymentStatus != "" {
		clauses = append(clauses, "payment_status = ?")
		args = append(args, filter.PaymentStatus)
	}
	if filter.StartDate != "" {
		clauses = append(clauses, "bill_date >= ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		clauses = append(clauses, "bill_date <= ?")
		args = append(args, filter.EndDate)
	}

	query := `SELECT id, patient_id, bill_date, total_amount, payment_status, notes, created_at, updated_at FROM bills`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY bill_date DESC, id DESC"

	bills := []domain.Bill{}
	if err := s.db.SelectContext(ctx, &bills, query, args...); err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	if len(bills) == 0 {
		return bills, nil
	}

	ids := make([]int64, len(bills))
	index := make(map[int64]int, len(bills))
	for i, bill := range bills {
		ids[i] = bill.ID
		index[bill.ID] = i
		bills[i].Items = []domain.BillItem{}
	}

	itemsQuery, itemsArgs, err := sqlx.In(
		`SELECT id, bill_id, inventory_item_id, service_description, quantity, unit_price, sub_total
		 FROM bill_items WHERE bill_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("prepare bill items query: %w", err)
	}
	itemsQuery = s.db.Rebind(itemsQuery)

	var items []domain.BillItem
	if err := s.db.SelectContext(ctx, &items, itemsQuery, itemsArgs...); err != nil {
		return nil, fmt.Errorf("load bill items: %w", err)
	}
	for _, item := range items {
		i := index[item.BillID]
		bills[i].Items = append(bills[i].Items, item)
	}
	return bills, nil
}

// UpdateBill applies a partial update of the mutable fields, payment
// status and notes. Line items and the total are frozen at creation.
func (s *Service) UpdateBill(ctx context.Context, id int64, payload schema.BillUpdatePayload) (*domain.Bill, error) {
	var (
		sets []string
		args []any
	)
	if payload.PaymentStatus != nil {
		sets = append(sets, "payment_status = ?")
		args = append(args, *payload.PaymentStatus)
	}
	if payload.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *payload.Notes)
	}
	sets = append(sets, "updated_at = datetime('now')")
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE bills SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update bill %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, &NotFoundError{Entity: "bill", ID: id}
	}
	return s.GetBill(ctx, id)
}

// DeleteBill restores stock for every inventory-backed line and then
// deletes the bill, cascading to its items. Restoration and deletion
// share one transaction so the bill can never disappear while the
// inventory stays undercounted.
func (s *Service) DeleteBill(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	var items []domain.BillItem
	if err := tx.SelectContext(ctx, &items,
		`SELECT id, bill_id, inventory_item_id, service_description, quantity, unit_price, sub_total
		 FROM bill_items WHERE bill_id = ?`, id); err != nil {
		return fmt.Errorf("load bill items: %w", err)
	}

	for _, item := range items {
		if item.InventoryItemID == nil {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE inventory_items
			 SET quantity_on_hand = quantity_on_hand + ?, updated_at = datetime('now')
			 WHERE id = ?`, item.Quantity, *item.InventoryItemID); err != nil {
			return fmt.Errorf("restore stock for item %d: %w", *item.InventoryItemID, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bill %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "bill", ID: id}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bill deletion: %w", err)
	}
	s.log.Info("bill deleted", zap.Int64("bill_id", id), zap.Int("restored_lines", len(items)))
	return nil
}
