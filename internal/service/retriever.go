package service

import (
	"context"
	"errors"
	"fmt"

	"esg-brsr/internal/domain"
	"esg-brsr/internal/llm"
	"esg-brsr/internal/repository"
)

// ErrNoResults indica que la búsqueda filtrada no devolvió ningún chunk relevante.
// La ausencia total de datos de una empresa/año es una precondición que se
// detecta antes, en los lookups de repositorio.
var ErrNoResults = errors.New("no results for filtered query")

// Límites de k: menos de 5 empobrece el contexto, más de 10 lo diluye.
const (
	minTopK = 5
	maxTopK = 10
)

// FilteredRetriever devuelve los chunks más relevantes restringidos a una empresa/año.
type FilteredRetriever interface {
	Retrieve(ctx context.Context, companyName string, reportYear int, query string, k int) ([]domain.RetrievedChunk, error)
}

// PgVectorRetriever implementa la recuperación sobre pgvector: embebe la consulta
// y delega el KNN pre-filtrado al repositorio de chunks.
type PgVectorRetriever struct {
	embedder llm.Embedder
	chunks   repository.ChunkRepository
}

func NewPgVectorRetriever(embedder llm.Embedder, chunks repository.ChunkRepository) *PgVectorRetriever {
	return &PgVectorRetriever{embedder: embedder, chunks: chunks}
}

func (r *PgVectorRetriever) Retrieve(ctx context.Context, companyName string, reportYear int, query string, k int) ([]domain.RetrievedChunk, error) {
	if k < minTopK {
		k = minTopK
	}
	if k > maxTopK {
		k = maxTopK
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := r.chunks.Search(ctx, companyName, reportYear, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("retrieve %s/%d: %w", companyName, reportYear, ErrNoResults)
	}
	return chunks, nil
}
