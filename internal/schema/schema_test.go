package schema

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func intPtr(n int64) *int64 { return &n }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestBillItemValidate_StockedLine(t *testing.T) {
	item := BillItemPayload{
		InventoryItemID: intPtr(3),
		Quantity:        intPtr(2),
	}
	assert.Nil(t, item.Validate())
	assert.True(t, item.Stocked())
}

func TestBillItemValidate_ServiceLine(t *testing.T) {
	item := BillItemPayload{
		ServiceDescription: strPtr("Consultation"),
		Quantity:           intPtr(1),
		UnitPrice:          decPtr("50.00"),
	}
	assert.Nil(t, item.Validate())
	assert.False(t, item.Stocked())
}

func TestBillItemValidate_BothSourcesRejected(t *testing.T) {
	item := BillItemPayload{
		InventoryItemID:    intPtr(3),
		ServiceDescription: strPtr("Consultation"),
		Quantity:           intPtr(1),
		UnitPrice:          decPtr("50.00"),
	}
	fe := item.Validate()
	assert.Contains(t, fe, "inventory_item_id")
}

func TestBillItemValidate_NeitherSourceRejected(t *testing.T) {
	item := BillItemPayload{Quantity: intPtr(1)}
	fe := item.Validate()
	assert.Contains(t, fe, "inventory_item_id")
}

func TestBillItemValidate_QuantityBelowOne(t *testing.T) {
	item := BillItemPayload{
		InventoryItemID: intPtr(3),
		Quantity:        intPtr(0),
	}
	fe := item.Validate()
	assert.Contains(t, fe, "quantity")
}

func TestBillItemValidate_ServiceRequiresPrice(t *testing.T) {
	item := BillItemPayload{
		ServiceDescription: strPtr("Consultation"),
		Quantity:           intPtr(1),
	}
	fe := item.Validate()
	assert.Contains(t, fe, "unit_price")
}

func TestBillItemValidate_ExcessPrecisionRejected(t *testing.T) {
	item := BillItemPayload{
		ServiceDescription: strPtr("Consultation"),
		Quantity:           intPtr(1),
		UnitPrice:          decPtr("9.999"),
	}
	fe := item.Validate()
	assert.Equal(t, "must have at most 2 decimal places", fe["unit_price"])
}

func TestBillItemValidate_NegativePriceRejected(t *testing.T) {
	item := BillItemPayload{
		ServiceDescription: strPtr("Refund"),
		Quantity:           intPtr(1),
		UnitPrice:          decPtr("-5.00"),
	}
	fe := item.Validate()
	assert.Equal(t, "must not be negative", fe["unit_price"])
}

func TestBillValidate_RequiresItems(t *testing.T) {
	bill := BillPayload{PatientID: intPtr(1)}
	fe := bill.Validate()
	assert.Contains(t, fe, "bill_items")
}

func TestBillValidate_ItemErrorsAreIndexed(t *testing.T) {
	bill := BillPayload{
		PatientID: intPtr(1),
		Items: []BillItemPayload{
			{InventoryItemID: intPtr(1), Quantity: intPtr(1)},
			{Quantity: intPtr(1)},
		},
	}
	fe := bill.Validate()
	assert.NotContains(t, fe, "bill_items.0.inventory_item_id")
	assert.Contains(t, fe, "bill_items.1.inventory_item_id")
}

func TestBillValidate_UnknownPaymentStatusRejected(t *testing.T) {
	bill := BillPayload{
		PatientID:     intPtr(1),
		PaymentStatus: strPtr("Maybe Later"),
		Items: []BillItemPayload{
			{InventoryItemID: intPtr(1), Quantity: intPtr(1)},
		},
	}
	fe := bill.Validate()
	assert.Contains(t, fe, "payment_status")
}

func TestBillUpdateValidate_NoFields(t *testing.T) {
	update := BillUpdatePayload{}
	fe := update.Validate()
	assert.Contains(t, fe, "payment_status")
}

func TestBillUpdateValidate_StatusOnly(t *testing.T) {
	update := BillUpdatePayload{PaymentStatus: strPtr("Paid")}
	assert.Nil(t, update.Validate())
}

func TestPatientValidate_FullMode(t *testing.T) {
	payload := PatientPayload{}
	fe := payload.Validate(false)
	assert.Contains(t, fe, "full_name")
	assert.Contains(t, fe, "phone")
}

func TestPatientValidate_PartialModeSkipsOmitted(t *testing.T) {
	payload := PatientPayload{Phone: strPtr("555-0100")}
	assert.Nil(t, payload.Validate(true))
}

func TestPatientValidate_BadDateOfBirth(t *testing.T) {
	payload := PatientPayload{
		FullName:    strPtr("Jamie Rivera"),
		Phone:       strPtr("555-0100"),
		DateOfBirth: strPtr("31-12-1990"),
	}
	fe := payload.Validate(false)
	assert.Contains(t, fe, "date_of_birth")
}

func TestAppointmentValidate_UnknownStatusRejected(t *testing.T) {
	payload := AppointmentPayload{
		PatientID:           intPtr(1),
		DoctorID:            intPtr(1),
		AppointmentDatetime: strPtr("2026-09-01T10:00:00Z"),
		Status:              strPtr("Pencilled In"),
	}
	fe := payload.Validate(false)
	assert.Contains(t, fe, "status")
}

func TestAppointmentValidate_BadTimestamp(t *testing.T) {
	payload := AppointmentPayload{
		PatientID:           intPtr(1),
		DoctorID:            intPtr(1),
		AppointmentDatetime: strPtr("tomorrow at noon"),
	}
	fe := payload.Validate(false)
	assert.Contains(t, fe, "appointment_datetime")
}

func TestInventoryItemValidate(t *testing.T) {
	payload := InventoryItemPayload{
		Name:           strPtr("Lens"),
		QuantityOnHand: intPtr(-1),
		UnitPrice:      decPtr("5.00"),
	}
	fe := payload.Validate(false)
	assert.Contains(t, fe, "quantity_on_hand")

	payload.QuantityOnHand = intPtr(10)
	assert.Nil(t, payload.Validate(false))
}

func TestUserValidate(t *testing.T) {
	payload := UserPayload{
		Username: strPtr("al"),
		Email:    strPtr("not-an-email"),
		Password: strPtr("short"),
		Role:     strPtr("superuser"),
	}
	fe := payload.Validate()
	assert.Contains(t, fe, "username")
	assert.Contains(t, fe, "email")
	assert.Contains(t, fe, "password")
	assert.Contains(t, fe, "role")

	payload = UserPayload{
		Username: strPtr("alice"),
		Email:    strPtr("alice@clinic.test"),
		Password: strPtr("secret123"),
	}
	assert.Nil(t, payload.Validate())
}
