package database

import (
	"context"
	"fmt"

	"github.com/dodgedlol2/KaspaMetrics/internal/models"
	"github.com/jackc/pgx/v5"
)

// QueryPool is the subset of pool operations the price repository needs.
// It allows both a real pgxpool and a pgxmock pool in tests.
type QueryPool interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// PriceRepository reads the KAS/USD price history. It is the engine's input
// collaborator: the regression packages only ever see the validated
// PriceSeries this repository returns.
type PriceRepository struct {
	pool QueryPool
}

// NewPriceRepository creates a repository over the given pool.
func NewPriceRepository(pool QueryPool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

const priceWindowQuery = `
	SELECT timestamp, price, volume, open, high, low, close
	FROM kaspa_prices
	WHERE timestamp > NOW() - make_interval(days => $1)
	ORDER BY timestamp ASC
`

const priceAllQuery = `
	SELECT timestamp, price, volume, open, high, low, close
	FROM kaspa_prices
	ORDER BY timestamp ASC
`

// FetchSeries returns the price series for a lookback window in days,
// ordered ascending by time. windowDays <= 0 (models.WindowAll) selects the
// full history. The rows are validated into a PriceSeries before returning.
func (r *PriceRepository) FetchSeries(ctx context.Context, windowDays int) (*models.PriceSeries, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if windowDays <= 0 {
		rows, err = r.pool.Query(ctx, priceAllQuery)
	} else {
		rows, err = r.pool.Query(ctx, priceWindowQuery, windowDays)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Timestamp, &p.Price, &p.Volume, &p.Open, &p.High, &p.Low, &p.Close); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read price rows: %w", err)
	}

	series, err := models.NewPriceSeries(points)
	if err != nil {
		return nil, fmt.Errorf("price history for %d-day window is unusable: %w", windowDays, err)
	}
	return series, nil
}
