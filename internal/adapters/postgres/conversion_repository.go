package postgres

import (
	"context"
	"fmt"
	"fxconvert/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ConversionRepository struct {
	pool *pgxpool.Pool
}

func (r *ConversionRepository) Save(ctx context.Context, rec domain.ConversionRecord) error {
	const q = `
		insert into conversions (id, requested_date, snapshot_date, base, quote, amount, converted_amount, rate, error, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`

	_, err := r.pool.Exec(ctx, q,
		rec.ID,
		rec.RequestedDate,
		nullIfEmpty(rec.SnapshotDate),
		rec.Base,
		rec.Quote,
		rec.Amount,
		rec.ConvertedAmount,
		rec.Rate,
		nullIfEmpty(rec.Error),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversion %s: %w", rec.ID, err)
	}
	return nil
}

func (r *ConversionRepository) ListRecent(ctx context.Context, limit int) ([]domain.ConversionRecord, error) {
	const q = `
		select id, requested_date, snapshot_date, base, quote, amount, converted_amount, rate, error, created_at
		from conversions
		order by created_at desc, id
		limit $1;
	`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}
	defer rows.Close()

	records := make([]domain.ConversionRecord, 0, limit)
	for rows.Next() {
		var (
			rec          domain.ConversionRecord
			snapshotDate *string
			errMsg       *string
		)
		if err = rows.Scan(
			&rec.ID,
			&rec.RequestedDate,
			&snapshotDate,
			&rec.Base,
			&rec.Quote,
			&rec.Amount,
			&rec.ConvertedAmount,
			&rec.Rate,
			&errMsg,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		if snapshotDate != nil {
			rec.SnapshotDate = *snapshotDate
		}
		if errMsg != nil {
			rec.Error = *errMsg
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversions: %w", err)
	}
	return records, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func NewConversionRepository(pool *pgxpool.Pool) *ConversionRepository {
	return &ConversionRepository{pool: pool}
}
