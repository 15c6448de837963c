package service

import (
	"context"
	"fmt"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"

	"esg-brsr/internal/domain"
	"esg-brsr/internal/repository"
)

// Dobles en memoria compartidos por los tests del paquete.

type fakeRetriever struct {
	chunks   []domain.RetrievedChunk
	errs     []error
	calls    int
	lastK    int
	lastText string
}

func (r *fakeRetriever) Retrieve(_ context.Context, _ string, _ int, query string, k int) ([]domain.RetrievedChunk, error) {
	call := r.calls
	r.calls++
	r.lastK = k
	r.lastText = query
	if call < len(r.errs) && r.errs[call] != nil {
		return nil, r.errs[call]
	}
	return r.chunks, nil
}

type fakeChunkRepo struct {
	chunks    []domain.RetrievedChunk
	idsByPage map[int][]int64
	searchErr error
	lastK     int
}

func (r *fakeChunkRepo) Search(_ context.Context, _ string, _ int, _ pgvector.Vector, k int) ([]domain.RetrievedChunk, error) {
	r.lastK = k
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	if k > len(r.chunks) {
		k = len(r.chunks)
	}
	return r.chunks[:k], nil
}

func (r *fakeChunkRepo) ResolveChunkIDs(_ context.Context, _ string, _ int, pages []int) ([]int64, error) {
	var ids []int64
	for _, p := range pages {
		ids = append(ids, r.idsByPage[p]...)
	}
	return ids, nil
}

// fakeExtractor falla para los códigos listados y devuelve una extracción fija
// para el resto.
type fakeExtractor struct {
	failCodes  map[string]bool
	extraction domain.LLMExtraction
	extracted  []string
}

func (e *fakeExtractor) Extract(_ context.Context, _ string, _ int, def domain.IndicatorDefinition) (domain.LLMExtraction, error) {
	e.extracted = append(e.extracted, def.Code)
	if e.failCodes[def.Code] {
		return domain.LLMExtraction{}, fmt.Errorf("generate extraction for %s: boom", def.Code)
	}
	return e.extraction, nil
}

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
	persisted  []domain.ExtractedIndicator
	persistErr error
}

func (r *memoryExtractionRepo) PersistBatch(_ context.Context, items []domain.ExtractedIndicator) (int, error) {
	if r.persistErr != nil {
		return 0, r.persistErr
	}
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

func floatPtr(f float64) *float64 {
	return &f
}
