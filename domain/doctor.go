package domain

type Doctor struct {
	ID                int64   `db:"id" json:"id"`
	FullName          string  `db:"full_name" json:"full_name"`
	Specialty         *string `db:"specialty" json:"specialty,omitempty"`
	Email             *string `db:"email" json:"email,omitempty"`
	Phone             *string `db:"phone" json:"phone,omitempty"`
	AvailabilityNotes *string `db:"availability_notes" json:"availability_notes,omitempty"`
	CreatedAt         string  `db:"created_at" json:"created_at"`
	UpdatedAt         string  `db:"updated_at" json:"updated_at"`
}
