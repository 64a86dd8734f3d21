package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"CropPulse/internal/domain/models"
	domrepo "CropPulse/internal/domain/repository"
	"CropPulse/pkg/util"
)

// CSV column names; Rainfall and Demand are optional.
const (
	colDate     = "date"
	colCrop     = "crop"
	colState    = "state"
	colPrice    = "price"
	colRainfall = "rainfall"
	colDemand   = "demand"
)

// CSVPriceSource reads the flat historical export (Date,Crop,State,Price,Rainfall,Demand).
type CSVPriceSource struct {
	path string
}

func NewCSVPriceSource(path string) *CSVPriceSource {
	return &CSVPriceSource{path: path}
}

func (s *CSVPriceSource) Name() string { return "csv:" + s.path }

func (s *CSVPriceSource) LoadAll(ctx context.Context) ([]models.PriceRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()
	return ReadPriceCSV(ctx, f)
}

// ReadPriceCSV parses price records from r. The header row is required and
// matched case-insensitively.
func ReadPriceCSV(ctx context.Context, r io.Reader) ([]models.PriceRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty csv")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, req := range []string{colDate, colCrop, colState, colPrice} {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("missing column %q", req)
		}
	}

	out := make([]models.PriceRecord, 0, 4096)
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRow(row []string, cols map[string]int) (models.PriceRecord, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, ok := util.ParseTime(get(colDate))
	if !ok {
		return models.PriceRecord{}, fmt.Errorf("invalid date %q", get(colDate))
	}
	price, err := strconv.ParseFloat(get(colPrice), 64)
	if err != nil {
		return models.PriceRecord{}, fmt.Errorf("invalid price %q", get(colPrice))
	}
	rainfall, err := optionalFloat(get(colRainfall))
	if err != nil {
		return models.PriceRecord{}, fmt.Errorf("invalid rainfall: %w", err)
	}
	demand, err := optionalFloat(get(colDemand))
	if err != nil {
		return models.PriceRecord{}, fmt.Errorf("invalid demand: %w", err)
	}

	return models.PriceRecord{
		Date:     util.TruncateDay(date),
		Crop:     get(colCrop),
		State:    get(colState),
		Price:    price,
		Rainfall: rainfall,
		Demand:   demand,
	}, nil
}

func optionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

var _ domrepo.PriceSource = (*CSVPriceSource)(nil)
