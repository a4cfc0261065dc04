package seed

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LoadInventory ingests a CSV catalog into the inventory_items table,
// ignoring duplicates. Expected columns: name, category, description,
// quantity_on_hand, reorder_level, unit_price, supplier_info.
func LoadInventory(db *sqlx.DB, csvPath string, log *zap.Logger) {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Warn("unable to open inventory catalog", zap.String("path", csvPath), zap.Error(err))
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Warn("unable to read inventory header", zap.Error(err))
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Warn("unable to start inventory seed transaction", zap.Error(err))
		return
	}
	stmt, err := tx.Preparex(`INSERT OR IGNORE INTO inventory_items
		(name, category, description, quantity_on_hand, reorder_level, unit_price, supplier_info)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		log.Warn("unable to prepare inventory insert", zap.Error(err))
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn("unable to read inventory row", zap.Error(err))
			continue
		}
		if len(record) < 6 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		category := strings.TrimSpace(record[1])
		description := strings.TrimSpace(record[2])
		quantity, err := strconv.ParseInt(strings.TrimSpace(record[3]), 10, 64)
		if err != nil || quantity < 0 {
			continue
		}
		reorder, err := strconv.ParseInt(strings.TrimSpace(record[4]), 10, 64)
		if err != nil || reorder < 0 {
			reorder = 0
		}
		price, err := decimal.NewFromString(strings.TrimSpace(record[5]))
		if err != nil || price.IsNegative() || price.Exponent() < -2 {
			continue
		}
		supplier := ""
		if len(record) > 6 {
			supplier = strings.TrimSpace(record[6])
		}

		if _, err := stmt.Exec(name, category, description, quantity, reorder, price.StringFixed(2), supplier); err != nil {
			log.Warn("unable to insert inventory item", zap.String("name", name), zap.Error(err))
		} else {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Warn("unable to commit inventory seed", zap.Error(err))
		return
	}
	log.Info("seeded inventory catalog", zap.Int("rows", rows))
}
