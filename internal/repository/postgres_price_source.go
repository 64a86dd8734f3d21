package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"CropPulse/internal/domain/models"
	domrepo "CropPulse/internal/domain/repository"
	applogger "CropPulse/pkg/logger"
	pkgpg "CropPulse/pkg/postgres"
)

type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PGPriceSource loads historical prices from a Postgres table.
type PGPriceSource struct {
	q     pgQuerier
	table string
	l     *applogger.Logger
}

func NewPGPriceSource(pg *pkgpg.Client, table string) *PGPriceSource {
	return &PGPriceSource{q: pg.Pool(), table: table}
}

// SetLogger injects a structured logger.
func (s *PGPriceSource) SetLogger(l *applogger.Logger) { s.l = l }

func (s *PGPriceSource) Name() string { return "postgres:" + s.table }

func (s *PGPriceSource) LoadAll(ctx context.Context) ([]models.PriceRecord, error) {
	start := time.Now()
	rows, err := s.q.Query(ctx, priceSelect(s.table, true))
	if err != nil {
		if s.l != nil {
			s.l.Error("postgres load_prices query error",
				applogger.String("table", s.table),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("load prices: %w", err)
	}
	defer rows.Close()

	out, err := scanPrices(rows)
	if err != nil {
		return nil, err
	}
	if s.l != nil {
		s.l.Info("postgres load_prices ok",
			applogger.String("table", s.table),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

var _ domrepo.PriceSource = (*PGPriceSource)(nil)
