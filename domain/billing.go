package domain

import "github.com/shopspring/decimal"

// Bill payment statuses.
const (
	BillUnpaid        = "Unpaid"
	BillPaid          = "Paid"
	BillPartiallyPaid = "Partially Paid"
)

// PaymentStatuses lists every accepted value for bills.payment_status.
var PaymentStatuses = []string{BillUnpaid, BillPaid, BillPartiallyPaid}

// Bill owns its items; total_amount is always the server-computed sum
// of the items' sub_totals.
type Bill struct {
	ID            int64           `db:"id" json:"id"`
	PatientID     int64           `db:"patient_id" json:"patient_id"`
	BillDate      string          `db:"bill_date" json:"bill_date"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaymentStatus string          `db:"payment_status" json:"payment_status"`
	Notes         *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt     string          `db:"created_at" json:"created_at"`
	UpdatedAt     string          `db:"updated_at" json:"updated_at"`
	Items         []BillItem      `db:"-" json:"bill_items"`
}

// BillItem is one priced line: either a stock-backed reference to an
// inventory item or a free-text service, never both. UnitPrice and
// SubTotal are snapshotted at billing time and never recomputed.
type BillItem struct {
	ID                 int64           `db:"id" json:"id"`
	BillID             int64           `db:"bill_id" json:"bill_id"`
	InventoryItemID    *int64          `db:"inventory_item_id" json:"inventory_item_id,omitempty"`
	ServiceDescription *string         `db:"service_description" json:"service_description,omitempty"`
	Quantity           int64           `db:"quantity" json:"quantity"`
	UnitPrice          decimal.Decimal `db:"unit_price" json:"unit_price"`
	SubTotal           decimal.Decimal `db:"sub_total" json:"sub_total"`
}
