package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"esg-brsr/internal/domain"
	"esg-brsr/internal/repository"
)

// IndicatorExtractor abstrae la cadena de extracción para poder probar el batch
// con mocks.
type IndicatorExtractor interface {
	Extract(ctx context.Context, companyName string, reportYear int, def domain.IndicatorDefinition) (domain.LLMExtraction, error)
}

// BatchRequest identifica el documento en proceso con la empresa ya resuelta.
type BatchRequest struct {
	DocumentKey string
	CompanyName string
	CompanyID   int64
	ReportYear  int
}

// BatchExtractor recorre el catálogo por grupos de atributo (1-9) en secuencia
// y aísla las fallas por indicador: una extracción fallida se registra y se
// excluye, el resto del batch continúa.
type BatchExtractor struct {
	extractor IndicatorExtractor
	chunks    repository.ChunkRepository
	logger    *zap.Logger
}

func NewBatchExtractor(extractor IndicatorExtractor, chunks repository.ChunkRepository, logger *zap.Logger) *BatchExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchExtractor{
		extractor: extractor,
		chunks:    chunks,
		logger:    logger,
	}
}

// ExtractAll procesa todos los indicadores del catálogo recibido.
// Una lista vacía de resultados es un resultado válido, no un error.
func (b *BatchExtractor) ExtractAll(ctx context.Context, req BatchRequest, catalog []domain.IndicatorDefinition) []domain.ExtractedIndicator {
	groups := partitionByGroup(catalog)

	groupNumbers := make([]int, 0, len(groups))
	for g := range groups {
		groupNumbers = append(groupNumbers, g)
	}
	sort.Ints(groupNumbers)

	var results []domain.ExtractedIndicator
	for _, group := range groupNumbers {
		for _, def := range groups[group] {
			extraction, err := b.extractor.Extract(ctx, req.CompanyName, req.ReportYear, def)
			if err != nil {
				b.logger.Warn("indicator extraction failed",
					zap.String("indicator_code", def.Code),
					zap.Int("attribute_group", group),
					zap.String("document_key", req.DocumentKey),
					zap.Error(err),
				)
				continue
			}

			results = append(results, domain.ExtractedIndicator{
				ID:               uuid.New(),
				DocumentKey:      req.DocumentKey,
				CompanyID:        req.CompanyID,
				ReportYear:       req.ReportYear,
				IndicatorCode:    def.Code,
				ExtractedValue:   extraction.Value,
				NumericValue:     extraction.NumericValue,
				Confidence:       extraction.Confidence,
				ValidationStatus: domain.ValidationPending,
				SourcePages:      extraction.SourcePages,
				SourceChunkIDs:   b.resolveCitations(ctx, req, def.Code, extraction.SourcePages),
				ExtractedAt:      time.Now().UTC(),
			})
		}
	}
	return results
}

// resolveCitations traduce páginas citadas a ids de chunk. Una falla aquí no
// invalida la extracción: la cita queda vacía y se registra el aviso.
func (b *BatchExtractor) resolveCitations(ctx context.Context, req BatchRequest, code string, pages []int) []int64 {
	if len(pages) == 0 {
		return nil
	}
	ids, err := b.chunks.ResolveChunkIDs(ctx, req.CompanyName, req.ReportYear, pages)
	if err != nil {
		b.logger.Warn("citation resolution failed",
			zap.String("indicator_code", code),
			zap.Ints("pages", pages),
			zap.Error(err),
		)
		return nil
	}
	return ids
}

func partitionByGroup(catalog []domain.IndicatorDefinition) map[int][]domain.IndicatorDefinition {
	groups := make(map[int][]domain.IndicatorDefinition)
	for _, def := range catalog {
		groups[def.AttributeGroup] = append(groups[def.AttributeGroup], def)
	}
	return groups
}
