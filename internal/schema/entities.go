package schema

import (
	"github.com/shopspring/decimal"

	"clinicd/m/domain"
)

// UserPayload covers /auth/register input.
type UserPayload struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

func (p *UserPayload) Validate() FieldErrors {
	fe := FieldErrors{}
	checkRequired(fe, "username", p.Username, false)
	checkMinLen(fe, "username", p.Username, 3)
	checkMaxLen(fe, "username", p.Username, 80)
	checkRequired(fe, "email", p.Email, false)
	checkEmail(fe, "email", p.Email)
	checkMaxLen(fe, "email", p.Email, 120)
	checkRequired(fe, "password", p.Password, false)
	checkMinLen(fe, "password", p.Password, 6)
	checkOneOf(fe, "role", p.Role, domain.UserRoles)
	return fe.orNil()
}

type PatientPayload struct {
	FullName              *string `json:"full_name"`
	Email                 *string `json:"email"`
	Phone                 *string `json:"phone"`
	DateOfBirth           *string `json:"date_of_birth"`
	Address               *string `json:"address"`
	MedicalHistorySummary *string `json:"medical_history_summary"`
}

func (p *PatientPayload) Validate(partial bool) FieldErrors {
	fe := FieldErrors{}
	checkRequired(fe, "full_name", p.FullName, partial)
	checkMaxLen(fe, "full_name", p.FullName, 150)
	checkEmail(fe, "email", p.Email)
	checkMaxLen(fe, "email", p.Email, 120)
	checkRequired(fe, "phone", p.Phone, partial)
	checkMaxLen(fe, "phone", p.Phone, 20)
	checkDate(fe, "date_of_birth", p.DateOfBirth)
	return fe.orNil()
}

type DoctorPayload struct {
	FullName          *string `json:"full_name"`
	Specialty         *string `json:"specialty"`
	Email             *string `json:"email"`
	Phone             *string `json:"phone"`
	AvailabilityNotes *string `json:"availability_notes"`
}

func (p *DoctorPayload) Validate(partial bool) FieldErrors {
	fe := FieldErrors{}
	checkRequired(fe, "full_name", p.FullName, partial)
	checkMaxLen(fe, "full_name", p.FullName, 150)
	checkMaxLen(fe, "specialty", p.Specialty, 100)
	checkEmail(fe, "email", p.Email)
	checkMaxLen(fe, "email", p.Email, 120)
	checkMaxLen(fe, "phone", p.Phone, 20)
	return fe.orNil()
}

type AppointmentPayload struct {
	PatientID           *int64  `json:"patient_id"`
	DoctorID            *int64  `json:"doctor_id"`
	AppointmentDatetime *string `json:"appointment_datetime"`
	Status              *string `json:"status"`
	Notes               *string `json:"notes"`
}

func (p *AppointmentPayload) Validate(partial bool) FieldErrors {
	fe := FieldErrors{}
	checkMin(fe, "patient_id", p.PatientID, 1, partial)
	checkMin(fe, "doctor_id", p.DoctorID, 1, partial)
	checkDatetime(fe, "appointment_datetime", p.AppointmentDatetime, partial)
	checkOneOf(fe, "status", p.Status, domain.AppointmentStatuses)
	return fe.orNil()
}

type InventoryItemPayload struct {
	Name           *string          `json:"name"`
	Category       *string          `json:"category"`
	Description    *string          `json:"description"`
	QuantityOnHand *int64           `json:"quantity_on_hand"`
	ReorderLevel   *int64           `json:"reorder_level"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	SupplierInfo   *string          `json:"supplier_info"`
}

func (p *InventoryItemPayload) Validate(partial bool) FieldErrors {
	fe := FieldErrors{}
	checkRequired(fe, "name", p.Name, partial)
	checkMaxLen(fe, "name", p.Name, 150)
	checkMaxLen(fe, "category", p.Category, 100)
	checkMin(fe, "quantity_on_hand", p.QuantityOnHand, 0, partial)
	checkMin(fe, "reorder_level", p.ReorderLevel, 0, true)
	checkMoney(fe, "unit_price", p.UnitPrice, partial)
	checkMaxLen(fe, "supplier_info", p.SupplierInfo, 255)
	return fe.orNil()
}
