package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"esg-brsr/internal/domain"
)

// ExtractionRepository persiste lotes de indicadores extraídos.
type ExtractionRepository interface {
	PersistBatch(ctx context.Context, items []domain.ExtractedIndicator) (int, error)
}

type PgExtractionRepository struct {
	pool *pgxpool.Pool
}

func NewPgExtractionRepository(pool *pgxpool.Pool) *PgExtractionRepository {
	return &PgExtractionRepository{pool: pool}
}

// PersistBatch inserta el lote completo en una sola transacción.
// Todo o nada: un fallo parcial del batch nunca deja un set de indicadores a medias.
func (r *PgExtractionRepository) PersistBatch(ctx context.Context, items []domain.ExtractedIndicator) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const query = `
		INSERT INTO extracted_indicators (
			id, document_key, company_id, report_year, indicator_code,
			extracted_value, numeric_value, confidence, validation_status,
			source_pages, source_chunk_ids, extracted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	for _, item := range items {
		var numeric interface{}
		if item.NumericValue != nil {
			numeric = *item.NumericValue
		}
		if _, err := tx.Exec(ctx, query,
			item.ID,
			item.DocumentKey,
			item.CompanyID,
			item.ReportYear,
			item.IndicatorCode,
			item.ExtractedValue,
			numeric,
			item.Confidence,
			item.ValidationStatus,
			item.SourcePages,
			item.SourceChunkIDs,
			item.ExtractedAt,
		); err != nil {
			return 0, fmt.Errorf("insert indicator %s: %w", item.IndicatorCode, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return len(items), nil
}
