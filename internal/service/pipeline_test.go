package service

import (
	"context"
	"errors"
	"testing"

	"esg-brsr/internal/domain"
	"esg-brsr/internal/repository"
)

type pipelineFixture struct {
	pipeline    *DocumentPipeline
	companies   *memoryCompanyRepo
	documents   *memoryDocumentRepo
	extractions *memoryExtractionRepo
	scores      *memoryScoreRepo
	extractor   *fakeExtractor
}

func newPipelineFixture(extraction domain.LLMExtraction, catalog []domain.IndicatorDefinition) *pipelineFixture {
	f := &pipelineFixture{
		companies:   &memoryCompanyRepo{companies: map[string]int64{"RELIANCE": 1}},
		documents:   newMemoryDocumentRepo(),
		extractions: &memoryExtractionRepo{},
		scores:      &memoryScoreRepo{},
		extractor:   &fakeExtractor{extraction: extraction},
	}
	chunks := &fakeChunkRepo{idsByPage: map[int][]int64{45: {9001}}}
	batch := NewBatchExtractor(f.extractor, chunks, nil)
	f.pipeline = NewDocumentPipeline(
		f.companies,
		f.documents,
		f.extractions,
		f.scores,
		batch,
		NewValidator(nil),
		NewScoreCalculator(DefaultPillarWeights()),
		catalog,
		nil,
	)
	return f
}

func TestDocumentPipeline_EndToEnd(t *testing.T) {
	extraction := domain.LLMExtraction{
		Value:        "1,250 MT CO2e",
		NumericValue: floatPtr(1250),
		Confidence:   0.95,
		SourcePages:  []int{45},
	}
	catalog := []domain.IndicatorDefinition{
		{Code: "GHG_SCOPE1_TOTAL", AttributeGroup: 6, Name: "Scope 1 emissions", ExpectedUnit: "MT CO2e", Pillar: domain.PillarEnvironmental, Weight: 1},
	}
	f := newPipelineFixture(extraction, catalog)

	result, err := f.pipeline.Process(context.Background(), "RELIANCE/2024_BRSR.pdf")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Extracted != 1 || result.Valid != 1 || result.Invalid != 0 {
		t.Fatalf("unexpected counters: %+v", result)
	}

	if len(f.extractions.persisted) != 1 {
		t.Fatalf("expected 1 persisted extraction, got %d", len(f.extractions.persisted))
	}
	persisted := f.extractions.persisted[0]
	if persisted.ValidationStatus != domain.ValidationValid {
		t.Fatalf("expected valid status, got %s", persisted.ValidationStatus)
	}
	if persisted.CompanyID != 1 || persisted.ReportYear != 2024 {
		t.Fatalf("document context missing: %+v", persisted)
	}
	if len(persisted.SourceChunkIDs) != 1 || persisted.SourceChunkIDs[0] != 9001 {
		t.Fatalf("citation not resolved: %v", persisted.SourceChunkIDs)
	}

	if len(f.scores.records) != 1 {
		t.Fatalf("expected 1 score record, got %d", len(f.scores.records))
	}
	record := f.scores.records[0]
	if record.EnvironmentalScore != 1250 {
		t.Fatalf("environmental score = %v, want 1250", record.EnvironmentalScore)
	}
	if record.GovernanceScore != 0 || len(record.Metadata.Governance.IndicatorCodes) != 0 {
		t.Fatalf("empty governance pillar malformed: %+v", record.Metadata.Governance)
	}

	if !f.documents.processed["RELIANCE/2024_BRSR.pdf"] {
		t.Fatal("document not marked as processed")
	}
	if result.Score == nil || result.Score.OverallScore != record.OverallScore {
		t.Fatalf("score not surfaced in result: %+v", result.Score)
	}
}

func TestDocumentPipeline_DuplicateDelivery(t *testing.T) {
	catalog := []domain.IndicatorDefinition{
		{Code: "GHG_SCOPE1_TOTAL", AttributeGroup: 6, ExpectedUnit: "MT CO2e", Pillar: domain.PillarEnvironmental, Weight: 1},
	}
	f := newPipelineFixture(domain.LLMExtraction{Value: "10", NumericValue: floatPtr(10), Confidence: 0.9}, catalog)
	f.documents.processed["RELIANCE/2024_BRSR.pdf"] = true

	_, err := f.pipeline.Process(context.Background(), "RELIANCE/2024_BRSR.pdf")
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	if len(f.extractor.extracted) != 0 {
		t.Fatal("duplicate must not reach extraction")
	}
}

func TestDocumentPipeline_MalformedKey(t *testing.T) {
	f := newPipelineFixture(domain.LLMExtraction{}, nil)

	_, err := f.pipeline.Process(context.Background(), "no-slash-here.pdf")
	if !errors.Is(err, ErrInvalidDocumentKey) {
		t.Fatalf("expected ErrInvalidDocumentKey, got %v", err)
	}
}

func TestDocumentPipeline_UnknownCompany(t *testing.T) {
	f := newPipelineFixture(domain.LLMExtraction{}, nil)

	_, err := f.pipeline.Process(context.Background(), "UNKNOWN/2024_BRSR.pdf")
	if !errors.Is(err, repository.ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
}

func TestDocumentPipeline_PersistFailurePropagates(t *testing.T) {
	catalog := []domain.IndicatorDefinition{
		{Code: "GHG_SCOPE1_TOTAL", AttributeGroup: 6, ExpectedUnit: "MT CO2e", Pillar: domain.PillarEnvironmental, Weight: 1},
	}
	f := newPipelineFixture(domain.LLMExtraction{Value: "10", NumericValue: floatPtr(10), Confidence: 0.9}, catalog)
	f.extractions.persistErr = errors.New("tx aborted")

	_, err := f.pipeline.Process(context.Background(), "RELIANCE/2024_BRSR.pdf")
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if f.documents.processed["RELIANCE/2024_BRSR.pdf"] {
		t.Fatal("failed document must not be marked processed")
	}
	if len(f.scores.records) != 0 {
		t.Fatal("score must not be written after persistence failure")
	}
}

func TestDocumentPipeline_InvalidIndicatorsStillPersisted(t *testing.T) {
	// Confianza fuera de rango: inválido pero persistido con su status.
	catalog := []domain.IndicatorDefinition{
		{Code: "GHG_SCOPE1_TOTAL", AttributeGroup: 6, ExpectedUnit: "MT CO2e", Pillar: domain.PillarEnvironmental, Weight: 1},
	}
	f := newPipelineFixture(domain.LLMExtraction{Value: "10 MT", NumericValue: floatPtr(10), Confidence: 1.5}, catalog)

	result, err := f.pipeline.Process(context.Background(), "RELIANCE/2024_BRSR.pdf")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Valid != 0 || result.Invalid != 1 {
		t.Fatalf("unexpected counters: %+v", result)
	}
	if len(f.extractions.persisted) != 1 || f.extractions.persisted[0].ValidationStatus != domain.ValidationInvalid {
		t.Fatalf("invalid indicator must be persisted with its status: %+v", f.extractions.persisted)
	}
	// Inválido no puntúa: pilar ambiental queda en cero.
	if f.scores.records[0].EnvironmentalScore != 0 {
		t.Fatalf("invalid indicator must not score, got %v", f.scores.records[0].EnvironmentalScore)
	}
}
