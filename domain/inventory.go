package domain

import "github.com/shopspring/decimal"

type InventoryItem struct {
	ID             int64           `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Category       *string         `db:"category" json:"category,omitempty"`
	Description    *string         `db:"description" json:"description,omitempty"`
	QuantityOnHand int64           `db:"quantity_on_hand" json:"quantity_on_hand"`
	ReorderLevel   int64           `db:"reorder_level" json:"reorder_level"`
	UnitPrice      decimal.Decimal `db:"unit_price" json:"unit_price"`
	SupplierInfo   *string         `db:"supplier_info" json:"supplier_info,omitempty"`
	CreatedAt      string          `db:"created_at" json:"created_at"`
	UpdatedAt      string          `db:"updated_at" json:"updated_at"`
}
