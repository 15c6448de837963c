package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository lleva el registro de documentos ya procesados.
// La deduplicación vive aquí, no en el extractor.
type DocumentRepository interface {
	IsAlreadyProcessed(ctx context.Context, documentKey string) (bool, error)
	MarkProcessed(ctx context.Context, documentKey string, companyID int64, reportYear int) error
}

type PgDocumentRepository struct {
	pool *pgxpool.Pool
}

func NewPgDocumentRepository(pool *pgxpool.Pool) *PgDocumentRepository {
	return &PgDocumentRepository{pool: pool}
}

func (r *PgDocumentRepository) IsAlreadyProcessed(ctx context.Context, documentKey string) (bool, error) {
	const query = `
		SELECT EXISTS (SELECT 1 FROM processed_documents WHERE document_key = $1)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, documentKey).Scan(&exists); err != nil {
		return false, fmt.Errorf("check processed document: %w", err)
	}
	return exists, nil
}

func (r *PgDocumentRepository) MarkProcessed(ctx context.Context, documentKey string, companyID int64, reportYear int) error {
	const query = `
		INSERT INTO processed_documents (document_key, company_id, report_year, processed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (document_key) DO UPDATE SET processed_at = EXCLUDED.processed_at
	`
	_, err := r.pool.Exec(ctx, query, documentKey, companyID, reportYear, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}
