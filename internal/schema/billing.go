package schema

import (
	"strconv"

	"github.com/shopspring/decimal"

	"clinicd/m/domain"
)

// BillItemPayload is one requested line item. Exactly one of
// InventoryItemID and ServiceDescription must be set: stock-backed
// lines are priced from inventory, service lines from the payload.
type BillItemPayload struct {
	InventoryItemID    *int64           `json:"inventory_item_id"`
	ServiceDescription *string          `json:"service_description"`
	Quantity           *int64           `json:"quantity"`
	UnitPrice          *decimal.Decimal `json:"unit_price"`
}

// Stocked reports whether the line references inventory.
func (p *BillItemPayload) Stocked() bool {
	return p.InventoryItemID != nil
}

func (p *BillItemPayload) Validate() FieldErrors {
	fe := FieldErrors{}
	hasItem := p.InventoryItemID != nil
	hasService := p.ServiceDescription != nil && *p.ServiceDescription != ""
	switch {
	case hasItem && hasService:
		fe["inventory_item_id"] = "cannot be combined with service_description"
	case !hasItem && !hasService:
		fe["inventory_item_id"] = "either inventory_item_id or service_description is required"
	case hasItem && *p.InventoryItemID < 1:
		fe["inventory_item_id"] = "must be at least 1"
	}
	checkMaxLen(fe, "service_description", p.ServiceDescription, 255)
	checkMin(fe, "quantity", p.Quantity, 1, false)
	if hasService {
		// Client prices apply to service lines only; inventory lines
		// are priced server side.
		checkMoney(fe, "unit_price", p.UnitPrice, false)
	} else if p.UnitPrice != nil {
		checkMoney(fe, "unit_price", p.UnitPrice, true)
	}
	return fe.orNil()
}

// BillPayload covers POST /bills input.
type BillPayload struct {
	PatientID     *int64            `json:"patient_id"`
	BillDate      *string           `json:"bill_date"`
	PaymentStatus *string           `json:"payment_status"`
	Notes         *string           `json:"notes"`
	Items         []BillItemPayload `json:"bill_items"`
}

func (p *BillPayload) Validate() FieldErrors {
	fe := FieldErrors{}
	checkMin(fe, "patient_id", p.PatientID, 1, false)
	checkDate(fe, "bill_date", p.BillDate)
	checkOneOf(fe, "payment_status", p.PaymentStatus, domain.PaymentStatuses)
	if len(p.Items) == 0 {
		fe["bill_items"] = "at least one bill item is required"
	}
	for i, item := range p.Items {
		if itemErrs := item.Validate(); itemErrs != nil {
			for field, msg := range itemErrs {
				fe["bill_items."+strconv.Itoa(i)+"."+field] = msg
			}
		}
	}
	return fe.orNil()
}

// BillUpdatePayload covers PUT /bills/{id}: payment status and notes
// only. Line items and the total are immutable after creation.
type BillUpdatePayload struct {
	PaymentStatus *string `json:"payment_status"`
	Notes         *string `json:"notes"`
}

func (p *BillUpdatePayload) Validate() FieldErrors {
	fe := FieldErrors{}
	if p.PaymentStatus == nil && p.Notes == nil {
		fe["payment_status"] = "no updatable fields provided (payment_status, notes)"
		return fe
	}
	checkOneOf(fe, "payment_status", p.PaymentStatus, domain.PaymentStatuses)
	return fe.orNil()
}
