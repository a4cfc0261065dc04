// Package reports runs the read-only aggregation queries behind
// /reports/generate.
package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"clinicd/m/domain"
)

// Report type names accepted by Generate.
const (
	TypeRevenue             = "revenue"
	TypeAppointmentsSummary = "appointments_summary"
	TypeLowStockInventory   = "low_stock_inventory"
	TypePatientDemographics = "patient_demographics"
)

var (
	ErrUnknownReportType = errors.New("unknown report_type")
	ErrBadDateFilter     = errors.New("date filters must be in YYYY-MM-DD format")
)

// Report is the envelope returned for every report type.
type Report struct {
	ReportType string            `json:"report_type"`
	Filters    map[string]string `json:"filters"`
	Data       any               `json:"data"`
}

// Generator runs report queries.
type Generator struct {
	db *sqlx.DB
}

// New constructs a Generator.
func New(db *sqlx.DB) *Generator {
	return &Generator{db: db}
}

// Generate dispatches on reportType. Empty date filters mean no bound.
func (g *Generator) Generate(ctx context.Context, reportType, startDate, endDate string) (*Report, error) {
	for _, d := range []string{startDate, endDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, ErrBadDateFilter
		}
	}

	report := &Report{
		ReportType: reportType,
		Filters:    map[string]string{"start_date": startDate, "end_date": endDate},
	}

	var err error
	switch reportType {
	case TypeRevenue:
		report.Data, err = g.revenue(ctx, startDate, endDate)
	case TypeAppointmentsSummary:
		report.Data, err = g.appointmentsSummary(ctx, startDate, endDate)
	case TypeLowStockInventory:
		report.Data, err = g.lowStock(ctx)
	case TypePatientDemographics:
		report.Data, err = g.patientDemographics(ctx, startDate, endDate)
	default:
		return nil, ErrUnknownReportType
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

// revenue sums total_amount over paid bills in the date range. The sum
// runs in Go with decimals because the column is stored as text.
func (g *Generator) revenue(ctx context.Context, startDate, endDate string) (any, error) {
	query := `SELECT total_amount FROM bills WHERE payment_status = ?`
	args := []any{domain.BillPaid}
	if startDate != "" {
		query += " AND bill_date >= ?"
		args = append(args, startDate)
	}
	if endDate != "" {
		query += " AND bill_date <= ?"
		args = append(args, endDate)
	}

	var totals []decimal.Decimal
	if err := g.db.SelectContext(ctx, &totals, query, args...); err != nil {
		return nil, fmt.Errorf("revenue query: %w", err)
	}
	revenue := decimal.Zero
	for _, t := range totals {
		revenue = revenue.Add(t)
	}
	return map[string]any{"total_revenue": revenue.StringFixed(2)}, nil
}

func (g *Generator) appointmentsSummary(ctx context.Context, startDate, endDate string) (any, error) {
	query := `SELECT status, COUNT(*) AS count FROM appointments`
	var (
		clauses []string
		args    []any
	)
	if startDate != "" {
		clauses = append(clauses, "date(appointment_datetime) >= ?")
		args = append(args, startDate)
	}
	if endDate != "" {
		clauses = append(clauses, "date(appointment_datetime) <= ?")
		args = append(args, endDate)
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " GROUP BY status"

	var rows []struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}
	if err := g.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("appointments summary query: %w", err)
	}

	counts := map[string]int64{}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	data := map[string]any{"status_counts": counts}

	upcoming := []domain.Appointment{}
	if err := g.db.SelectContext(ctx, &upcoming,
		`SELECT id, patient_id, doctor_id, appointment_datetime, status, notes, created_at, updated_at
		 FROM appointments
		 WHERE appointment_datetime >= ?
		 ORDER BY appointment_datetime ASC LIMIT 5`,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("upcoming appointments query: %w", err)
	}
	data["upcoming_appointments_sample"] = upcoming
	return data, nil
}

func (g *Generator) lowStock(ctx context.Context) (any, error) {
	items := []domain.InventoryItem{}
	if err := g.db.SelectContext(ctx, &items,
		`SELECT id, name, category, description, quantity_on_hand, reorder_level, unit_price, supplier_info, created_at, updated_at
		 FROM inventory_items
		 WHERE quantity_on_hand <= reorder_level
		 ORDER BY name`); err != nil {
		return nil, fmt.Errorf("low stock query: %w", err)
	}
	return map[string]any{"low_stock_items": items}, nil
}

func (g *Generator) patientDemographics(ctx context.Context, startDate, endDate string) (any, error) {
	query := `SELECT COUNT(*) FROM patients`
	var (
		clauses []string
		args    []any
	)
	if startDate != "" {
		clauses = append(clauses, "date(created_at) >= ?")
		args = append(args, startDate)
	}
	if endDate != "" {
		clauses = append(clauses, "date(created_at) <= ?")
		args = append(args, endDate)
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}

	var count int64
	if err := g.db.GetContext(ctx, &count, query, args...); err != nil {
		return nil, fmt.Errorf("patient demographics query: %w", err)
	}
	return map[string]any{"new_patients_count": count}, nil
}
