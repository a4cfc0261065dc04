package domain

type Patient struct {
	ID                    int64   `db:"id" json:"id"`
	FullName              string  `db:"full_name" json:"full_name"`
	Email                 *string `db:"email" json:"email,omitempty"`
	Phone                 string  `db:"phone" json:"phone"`
	DateOfBirth           *string `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Address               *string `db:"address" json:"address,omitempty"`
	MedicalHistorySummary *string `db:"medical_history_summary" json:"medical_history_summary,omitempty"`
	CreatedAt             string  `db:"created_at" json:"created_at"`
	UpdatedAt             string  `db:"updated_at" json:"updated_at"`
}
