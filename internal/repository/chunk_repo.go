package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"esg-brsr/internal/domain"
)

// ChunkRepository accede al store vectorial de fragmentos de documentos.
type ChunkRepository interface {
	Search(ctx context.Context, companyName string, reportYear int, queryEmbedding pgvector.Vector, k int) ([]domain.RetrievedChunk, error)
	ResolveChunkIDs(ctx context.Context, companyName string, reportYear int, pages []int) ([]int64, error)
}

type PgChunkRepository struct {
	pool *pgxpool.Pool
}

func NewPgChunkRepository(pool *pgxpool.Pool) *PgChunkRepository {
	return &PgChunkRepository{pool: pool}
}

// Search hace KNN por coseno pre-filtrando por empresa y año dentro del WHERE.
// El pre-filtro reduce el espacio de búsqueda de todo el corpus a unos cientos de chunks.
func (r *PgChunkRepository) Search(ctx context.Context, companyName string, reportYear int, queryEmbedding pgvector.Vector, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		k = 5
	}
	const query = `
		SELECT content, page_number, id, embedding <=> $3 AS distance
		FROM document_chunks
		WHERE company_name = $1 AND report_year = $2
		ORDER BY embedding <=> $3
		LIMIT $4
	`
	rows, err := r.pool.Query(ctx, query, companyName, reportYear, queryEmbedding, k)
	if err != nil {
		return nil, fmt.Errorf("chunk search: %w", err)
	}
	defer rows.Close()

	return scanRetrievedChunks(rows)
}

// ResolveChunkIDs mapea números de página citados por el modelo a ids de chunk.
// El modelo solo reporta páginas; los ids internos se resuelven aquí.
func (r *PgChunkRepository) ResolveChunkIDs(ctx context.Context, companyName string, reportYear int, pages []int) ([]int64, error) {
	if len(pages) == 0 {
		return nil, nil
	}
	const query = `
		SELECT id
		FROM document_chunks
		WHERE company_name = $1 AND report_year = $2 AND page_number = ANY($3)
		ORDER BY page_number, chunk_index
	`
	rows, err := r.pool.Query(ctx, query, companyName, reportYear, pages)
	if err != nil {
		return nil, fmt.Errorf("resolve chunk ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chunk id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func scanRetrievedChunks(rows pgxRows) ([]domain.RetrievedChunk, error) {
	var chunks []domain.RetrievedChunk
	for rows.Next() {
		var c domain.RetrievedChunk
		if err := rows.Scan(&c.Content, &c.PageNumber, &c.ChunkID, &c.Distance); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// pgxRows is a minimal interface to allow scanning from pgx rows and simplify testing.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
