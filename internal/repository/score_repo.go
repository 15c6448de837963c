package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"esg-brsr/internal/domain"
)

// ScoreRepository persiste los agregados empresa-año.
type ScoreRepository interface {
	Upsert(ctx context.Context, record domain.ScoreRecord) error
}

type PgScoreRepository struct {
	pool *pgxpool.Pool
}

func NewPgScoreRepository(pool *pgxpool.Pool) *PgScoreRepository {
	return &PgScoreRepository{pool: pool}
}

// Upsert inserta o reemplaza por completo el registro de una empresa-año.
// Recalcular = reemplazo total, nunca actualización parcial.
func (r *PgScoreRepository) Upsert(ctx context.Context, record domain.ScoreRecord) error {
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("marshal calculation metadata: %w", err)
	}

	const query = `
		INSERT INTO esg_scores (
			id, company_id, report_year,
			environmental_score, social_score, governance_score, overall_score,
			calculation_metadata, calculated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (company_id, report_year) DO UPDATE SET
			environmental_score = EXCLUDED.environmental_score,
			social_score = EXCLUDED.social_score,
			governance_score = EXCLUDED.governance_score,
			overall_score = EXCLUDED.overall_score,
			calculation_metadata = EXCLUDED.calculation_metadata,
			calculated_at = EXCLUDED.calculated_at
	`
	_, err = r.pool.Exec(ctx, query,
		record.ID,
		record.CompanyID,
		record.ReportYear,
		record.EnvironmentalScore,
		record.SocialScore,
		record.GovernanceScore,
		record.OverallScore,
		metadata,
		record.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}
