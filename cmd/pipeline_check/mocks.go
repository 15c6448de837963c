package main

import (
	"context"
	"fmt"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"

	"esg-brsr/internal/domain"
	"esg-brsr/internal/repository"
)

// Repositorios en memoria para correr el pipeline sin Postgres ni Redis.

type memoryCompanyRepo struct {
	companies map[string]int64
}

func (r *memoryCompanyRepo) ResolveIDByName(_ context.Context, name string) (int64, error) {
	if id, ok := r.companies[strings.ToUpper(name)]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("resolve company %q: %w", name, repository.ErrCompanyNotFound)
}

type memoryDocumentRepo struct {
	processed map[string]bool
}

func newMemoryDocumentRepo() *memoryDocumentRepo {
	return &memoryDocumentRepo{processed: make(map[string]bool)}
}

func (r *memoryDocumentRepo) IsAlreadyProcessed(_ context.Context, documentKey string) (bool, error) {
	return r.processed[documentKey], nil
}

func (r *memoryDocumentRepo) MarkProcessed(_ context.Context, documentKey string, _ int64, _ int) error {
	r.processed[documentKey] = true
	return nil
}

type memoryExtractionRepo struct {
	persisted []domain.ExtractedIndicator
}

func (r *memoryExtractionRepo) PersistBatch(_ context.Context, items []domain.ExtractedIndicator) (int, error) {
	r.persisted = append(r.persisted, items...)
	return len(items), nil
}

type memoryScoreRepo struct {
	records []domain.ScoreRecord
}

func (r *memoryScoreRepo) Upsert(_ context.Context, record domain.ScoreRecord) error {
	r.records = append(r.records, record)
	return nil
}

// memoryChunkRepo devuelve siempre los mismos chunks para la empresa/año cargados.
type memoryChunkRepo struct {
	companyName string
	reportYear  int
	chunks      []domain.RetrievedChunk
	idsByPage   map[int][]int64
}

func (r *memoryChunkRepo) Search(_ context.Context, companyName string, reportYear int, _ pgvector.Vector, k int) ([]domain.RetrievedChunk, error) {
	if companyName != r.companyName || reportYear != r.reportYear {
		return nil, nil
	}
	if k > len(r.chunks) {
		k = len(r.chunks)
	}
	return r.chunks[:k], nil
}

func (r *memoryChunkRepo) ResolveChunkIDs(_ context.Context, _ string, _ int, pages []int) ([]int64, error) {
	var ids []int64
	for _, p := range pages {
		ids = append(ids, r.idsByPage[p]...)
	}
	return ids, nil
}
