package repository

import (
	"fmt"

	"CropPulse/internal/domain/models"
)

// priceRows is the cursor shared by pgx.Rows and *sql.Rows.
type priceRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// priceSelect reads the price columns in chronological order. Postgres allows
// null rainfall and demand; the ClickHouse schema does not.
func priceSelect(table string, nullable bool) string {
	cols := "date, crop, state, price, rainfall, demand"
	if nullable {
		cols = "date, crop, state, price, COALESCE(rainfall, 0), COALESCE(demand, 0)"
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY date ASC", cols, table)
}

// scanPrices drains rows into records; dates come back in UTC.
func scanPrices(rows priceRows) ([]models.PriceRecord, error) {
	out := make([]models.PriceRecord, 0, 4096)
	for rows.Next() {
		var r models.PriceRecord
		if err := rows.Scan(&r.Date, &r.Crop, &r.State, &r.Price, &r.Rainfall, &r.Demand); err != nil {
			return nil, fmt.Errorf("scan price row %d: %w", len(out)+1, err)
		}
		r.Date = r.Date.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
