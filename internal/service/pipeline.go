package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"esg-brsr/internal/domain"
	"esg-brsr/internal/repository"
)

// ErrAlreadyProcessed indica una entrega duplicada: el documento ya fue procesado.
var ErrAlreadyProcessed = errors.New("document already processed")

// PipelineResult resume el procesamiento de un documento.
type PipelineResult struct {
	DocumentKey string
	Extracted   int
	Valid       int
	Invalid     int
	Score       *domain.ScoreRecord
}

// DocumentPipeline orquesta el procesamiento completo de un documento:
// precondiciones -> extracción por lotes -> validación -> persistencia atómica
// -> cálculo de puntajes.
//
// El catálogo llega en la construcción, cargado una sola vez por vida del
// worker; nunca se muta.
type DocumentPipeline struct {
	companies   repository.CompanyRepository
	documents   repository.DocumentRepository
	extractions repository.ExtractionRepository
	scores      repository.ScoreRepository
	extractor   *BatchExtractor
	validator   *Validator
	calculator  *ScoreCalculator
	catalog     []domain.IndicatorDefinition
	logger      *zap.Logger
}

func NewDocumentPipeline(
	companies repository.CompanyRepository,
	documents repository.DocumentRepository,
	extractions repository.ExtractionRepository,
	scores repository.ScoreRepository,
	extractor *BatchExtractor,
	validator *Validator,
	calculator *ScoreCalculator,
	catalog []domain.IndicatorDefinition,
	logger *zap.Logger,
) *DocumentPipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentPipeline{
		companies:   companies,
		documents:   documents,
		extractions: extractions,
		scores:      scores,
		extractor:   extractor,
		validator:   validator,
		calculator:  calculator,
		catalog:     catalog,
		logger:      logger,
	}
}

// Process ejecuta el pipeline para una clave de documento.
// Solo las precondiciones y las fallas de persistencia suben como error;
// las fallas por indicador ya fueron absorbidas por el batch. Un documento
// con cero indicadores extraídos es un resultado válido, aunque degenerado.
func (p *DocumentPipeline) Process(ctx context.Context, documentKey string) (PipelineResult, error) {
	ref, err := ParseDocumentKey(documentKey)
	if err != nil {
		return PipelineResult{}, err
	}

	processed, err := p.documents.IsAlreadyProcessed(ctx, ref.Key)
	if err != nil {
		return PipelineResult{}, fmt.Errorf("check processed: %w", err)
	}
	if processed {
		return PipelineResult{DocumentKey: ref.Key}, fmt.Errorf("%s: %w", ref.Key, ErrAlreadyProcessed)
	}

	companyID, err := p.companies.ResolveIDByName(ctx, ref.CompanyName)
	if err != nil {
		return PipelineResult{}, err
	}

	p.logger.Info("processing document",
		zap.String("document_key", ref.Key),
		zap.String("company", ref.CompanyName),
		zap.Int("report_year", ref.ReportYear),
		zap.Int("catalog_size", len(p.catalog)),
	)

	extracted := p.extractor.ExtractAll(ctx, BatchRequest{
		DocumentKey: ref.Key,
		CompanyName: ref.CompanyName,
		CompanyID:   companyID,
		ReportYear:  ref.ReportYear,
	}, p.catalog)

	defsByCode := make(map[string]domain.IndicatorDefinition, len(p.catalog))
	for _, def := range p.catalog {
		defsByCode[def.Code] = def
	}

	var validCount, invalidCount int
	for i := range extracted {
		verdict := p.validator.Validate(extracted[i], defsByCode[extracted[i].IndicatorCode])
		// El veredicto solo toca el status; los valores crudos no se modifican.
		extracted[i].ValidationStatus = verdict.Status
		if verdict.IsValid {
			validCount++
		} else {
			invalidCount++
			p.logger.Warn("indicator invalid",
				zap.String("indicator_code", extracted[i].IndicatorCode),
				zap.Strings("errors", verdict.Errors),
			)
		}
		if len(verdict.Warnings) > 0 {
			p.logger.Debug("indicator warnings",
				zap.String("indicator_code", extracted[i].IndicatorCode),
				zap.Strings("warnings", verdict.Warnings),
			)
		}
	}

	if _, err := p.extractions.PersistBatch(ctx, extracted); err != nil {
		return PipelineResult{}, fmt.Errorf("persist extracted indicators: %w", err)
	}

	record := p.calculator.Calculate(companyID, ref.ReportYear, extracted, p.catalog)
	if err := p.scores.Upsert(ctx, record); err != nil {
		return PipelineResult{}, fmt.Errorf("persist score record: %w", err)
	}

	if err := p.documents.MarkProcessed(ctx, ref.Key, companyID, ref.ReportYear); err != nil {
		return PipelineResult{}, fmt.Errorf("mark processed: %w", err)
	}

	p.logger.Info("document processed",
		zap.String("document_key", ref.Key),
		zap.Int("extracted", len(extracted)),
		zap.Int("valid", validCount),
		zap.Int("invalid", invalidCount),
		zap.Float64("overall_score", record.OverallScore),
	)

	return PipelineResult{
		DocumentKey: ref.Key,
		Extracted:   len(extracted),
		Valid:       validCount,
		Invalid:     invalidCount,
		Score:       &record,
	}, nil
}
