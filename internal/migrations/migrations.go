package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required for the clinic backend.
func Run(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'receptionist',
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS patients (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			full_name TEXT NOT NULL,
			email TEXT UNIQUE,
			phone TEXT NOT NULL,
			date_of_birth TEXT,
			address TEXT,
			medical_history_summary TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS doctors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			full_name TEXT NOT NULL,
			specialty TEXT,
			email TEXT UNIQUE,
			phone TEXT,
			availability_notes TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			patient_id INTEGER NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
			doctor_id INTEGER NOT NULL REFERENCES doctors(id) ON DELETE RESTRICT,
			appointment_datetime TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Scheduled',
			notes TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS inventory_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			category TEXT,
			description TEXT,
			quantity_on_hand INTEGER NOT NULL DEFAULT 0 CHECK (quantity_on_hand >= 0),
			reorder_level INTEGER NOT NULL DEFAULT 0,
			unit_price TEXT NOT NULL,
			supplier_info TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS bills (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			patient_id INTEGER NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
			bill_date TEXT NOT NULL,
			total_amount TEXT NOT NULL DEFAULT '0.00',
			payment_status TEXT NOT NULL DEFAULT 'Unpaid',
			notes TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS bill_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bill_id INTEGER NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
			inventory_item_id INTEGER REFERENCES inventory_items(id) ON DELETE RESTRICT,
			service_description TEXT,
			quantity INTEGER NOT NULL CHECK (quantity >= 1),
			unit_price TEXT NOT NULL,
			sub_total TEXT NOT NULL,
			CHECK ((inventory_item_id IS NULL) <> (service_description IS NULL))
		);`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_patient ON appointments(patient_id);`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_doctor ON appointments(doctor_id);`,
		`CREATE INDEX IF NOT EXISTS idx_bills_patient ON bills(patient_id);`,
		`CREATE INDEX IF NOT EXISTS idx_bill_items_bill ON bill_items(bill_id);`,
		`CREATE INDEX IF NOT EXISTS idx_bill_items_item ON bill_items(inventory_item_id);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
