package ticker

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/TickerUpdater/internal/tickers/models"
	"github.com/shopspring/decimal"
)

type Repository interface {
	ensureSchema(ctx context.Context) error
	bulkInsertOrUpdate(ctx context.Context, runID uuid.UUID, tickers []models.Ticker) error
	getLastUpdatedAt(ctx context.Context) (time.Time, error)
	getBySymbol(ctx context.Context, symbol string) (*models.Ticker, error)
}

type tickerRepository struct {
	db *sql.DB
}

func NewTickerRepository(db *sql.DB) Repository {
	return &tickerRepository{db: db}
}

func (r *tickerRepository) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS tickers (
            symbol      TEXT PRIMARY KEY,
            name        TEXT NOT NULL DEFAULT '',
            price       NUMERIC,
            market_cap  NUMERIC,
            volume      BIGINT,
            industry    TEXT NOT NULL DEFAULT '',
            run_id      UUID NOT NULL,
            updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )
    `)
	return err
}

func (r *tickerRepository) getLastUpdatedAt(ctx context.Context) (time.Time, error) {
	var lastUpdated sql.NullTime
	err := r.db.QueryRowContext(ctx, `
        SELECT MAX(updated_at) FROM tickers
    `).Scan(&lastUpdated)
	if err != nil {
		return time.Time{}, err
	}

	if !lastUpdated.Valid {
		return time.Time{}, nil
	}

	return lastUpdated.Time, nil
}

func (r *tickerRepository) bulkInsertOrUpdate(ctx context.Context, runID uuid.UUID, tickers []models.Ticker) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO tickers (symbol, name, price, market_cap, volume, industry, run_id, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        ON CONFLICT (symbol) DO UPDATE SET
            name = EXCLUDED.name,
            price = EXCLUDED.price,
            market_cap = EXCLUDED.market_cap,
            volume = EXCLUDED.volume,
            industry = EXCLUDED.industry,
            run_id = EXCLUDED.run_id,
            updated_at = NOW();
    `)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, t := range tickers {
		_, err := stmt.ExecContext(ctx,
			t.Symbol,
			t.Name,
			nullDecimal(t.Price),
			nullDecimal(t.MarketCap),
			nullInt64(t.Volume),
			t.Industry,
			runID.String(),
		)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (r *tickerRepository) getBySymbol(ctx context.Context, symbol string) (*models.Ticker, error) {
	var (
		t         models.Ticker
		price     decimal.NullDecimal
		marketCap decimal.NullDecimal
		volume    sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
        SELECT symbol, name, price, market_cap, volume, industry
        FROM tickers WHERE symbol = $1
    `, symbol).Scan(&t.Symbol, &t.Name, &price, &marketCap, &volume, &t.Industry)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		t.Price = &price.Decimal
	}
	if marketCap.Valid {
		t.MarketCap = &marketCap.Decimal
	}
	if volume.Valid {
		t.Volume = &volume.Int64
	}
	return &t, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
