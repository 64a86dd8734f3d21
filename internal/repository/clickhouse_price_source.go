package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"CropPulse/internal/domain/models"
	domrepo "CropPulse/internal/domain/repository"
	pkgch "CropPulse/pkg/clickhouse"
	applogger "CropPulse/pkg/logger"
)

// CHPriceSource loads historical prices from a ClickHouse table.
type CHPriceSource struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHPriceSource(ch *pkgch.Client, table string) *CHPriceSource {
	return &CHPriceSource{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHPriceSource) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHPriceSource) Name() string { return "clickhouse:" + s.table }

// CHPriceSchema returns the DDL for the price table.
func CHPriceSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            date Date,
            crop LowCardinality(String),
            state LowCardinality(String),
            price Float64,
            rainfall Float64,
            demand Float64
        ) ENGINE = MergeTree ORDER BY (crop, state, date)`, database, table),
	}
}

func (s *CHPriceSource) LoadAll(ctx context.Context) ([]models.PriceRecord, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, priceSelect(s.table, false))
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse load_prices query error",
				applogger.String("table", s.table),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("load prices: %w", err)
	}
	defer rows.Close()

	out, err := scanPrices(rows)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse load_prices scan error",
				applogger.String("table", s.table),
				applogger.Error(err),
			)
		}
		return nil, err
	}
	if s.l != nil {
		s.l.Info("clickhouse load_prices ok",
			applogger.String("table", s.table),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

var _ domrepo.PriceSource = (*CHPriceSource)(nil)
