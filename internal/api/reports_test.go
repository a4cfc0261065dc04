package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicd/m/domain"
)

func TestGenerateReport_Revenue(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	patientID := env.createPatient(t, admin, "Jamie Rivera", "555-0100")

	// Two bills, only the one marked paid counts toward revenue.
	var paidID int64
	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, "/bills/", admin, map[string]any{
			"patient_id": patientID,
			"bill_items": []map[string]any{
				{"service_description": "Consultation", "quantity": 1, "unit_price": "20.50"},
			},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		var bill domain.Bill
		decodeBody(t, rec, &bill)
		if i == 0 {
			paidID = bill.ID
		}
	}
	rec := env.do(t, http.MethodPut, "/bills/"+itoa(paidID), admin, map[string]any{
		"payment_status": "Paid",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/reports/generate?report_type=revenue", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report struct {
		ReportType string            `json:"report_type"`
		Filters    map[string]string `json:"filters"`
		Data       struct {
			TotalRevenue string `json:"total_revenue"`
		} `json:"data"`
	}
	decodeBody(t, rec, &report)
	assert.Equal(t, "revenue", report.ReportType)
	assert.Equal(t, "20.50", report.Data.TotalRevenue)
}

func TestGenerateReport_LowStock(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)

	rec := env.do(t, http.MethodPost, "/inventory/", admin, map[string]any{
		"name":             "Lens",
		"quantity_on_hand": 2,
		"reorder_level":    5,
		"unit_price":       "5.00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, http.MethodPost, "/inventory/", admin, map[string]any{
		"name":             "Frames",
		"quantity_on_hand": 50,
		"reorder_level":    5,
		"unit_price":       "9.99",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/reports/generate?report_type=low_stock_inventory", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report struct {
		Data struct {
			LowStockItems []domain.InventoryItem `json:"low_stock_items"`
		} `json:"data"`
	}
	decodeBody(t, rec, &report)
	require.Len(t, report.Data.LowStockItems, 1)
	assert.Equal(t, "Lens", report.Data.LowStockItems[0].Name)
}

func TestGenerateReport_AppointmentsSummary(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	patientID := env.createPatient(t, admin, "Jamie Rivera", "555-0100")
	doctorID := env.createDoctor(t, admin, "Dr. Priya Nair")
	apptID := env.createAppointment(t, admin, patientID, doctorID)
	env.createAppointment(t, admin, patientID, doctorID)

	rec := env.do(t, http.MethodPut, "/appointments/"+itoa(apptID), admin, map[string]any{
		"status": "Cancelled",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/reports/generate?report_type=appointments_summary", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report struct {
		Data struct {
			StatusCounts map[string]int64 `json:"status_counts"`
		} `json:"data"`
	}
	decodeBody(t, rec, &report)
	assert.Equal(t, int64(1), report.Data.StatusCounts["Scheduled"])
	assert.Equal(t, int64(1), report.Data.StatusCounts["Cancelled"])
}

func TestGenerateReport_PatientDemographics(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	env.createPatient(t, admin, "Jamie Rivera", "555-0100")
	env.createPatient(t, admin, "Morgan Lee", "555-0101")

	rec := env.do(t, http.MethodGet, "/reports/generate?report_type=patient_demographics", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report struct {
		Data struct {
			NewPatientsCount int64 `json:"new_patients_count"`
		} `json:"data"`
	}
	decodeBody(t, rec, &report)
	assert.Equal(t, int64(2), report.Data.NewPatientsCount)

	// A range in the far past filters everyone out.
	rec = env.do(t, http.MethodGet, "/reports/generate?report_type=patient_demographics&end_date=2000-01-01", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &report)
	assert.Equal(t, int64(0), report.Data.NewPatientsCount)
}

func TestGenerateReport_BadRequests(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)

	rec := env.do(t, http.MethodGet, "/reports/generate", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/reports/generate?report_type=profit_margins", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/reports/generate?report_type=revenue&start_date=01/02/2026", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
