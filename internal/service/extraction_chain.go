package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"esg-brsr/internal/domain"
	"esg-brsr/internal/llm"
)

// ExtractionChain ejecuta recuperación + prompt + generación + parseo para un indicador.
// Las dos patas de I/O (retrieval y modelo) se reintentan de forma independiente
// bajo la misma política.
type ExtractionChain struct {
	retriever FilteredRetriever
	llmClient llm.LLMClient
	builder   ExtractionPromptBuilder
	parser    ExtractionParser
	policy    RetryPolicy
	topK      int
	logger    *zap.Logger
}

func NewExtractionChain(
	retriever FilteredRetriever,
	llmClient llm.LLMClient,
	policy RetryPolicy,
	topK int,
	logger *zap.Logger,
) *ExtractionChain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractionChain{
		retriever: retriever,
		llmClient: llmClient,
		policy:    policy,
		topK:      topK,
		logger:    logger,
	}
}

// Extract obtiene el valor de un indicador para una empresa/año.
// Tras agotar los reintentos devuelve el error al llamador: esto es lo que
// permite el éxito parcial del batch.
func (c *ExtractionChain) Extract(ctx context.Context, companyName string, reportYear int, def domain.IndicatorDefinition) (domain.LLMExtraction, error) {
	query := c.builder.BuildSearchQuery(def)

	var chunks []domain.RetrievedChunk
	err := c.policy.Do(ctx, "retrieve "+def.Code, func() error {
		var retrieveErr error
		chunks, retrieveErr = c.retriever.Retrieve(ctx, companyName, reportYear, query, c.topK)
		return retrieveErr
	})
	if err != nil {
		return domain.LLMExtraction{}, fmt.Errorf("retrieve context for %s: %w", def.Code, err)
	}

	prompt := c.builder.BuildExtractionPrompt(companyName, reportYear, def, chunks)

	var extraction domain.LLMExtraction
	err = c.policy.Do(ctx, "generate "+def.Code, func() error {
		raw, genErr := c.llmClient.Generate(ctx, prompt)
		if genErr != nil {
			return genErr
		}
		parsed, parseErr := c.parser.Parse(raw)
		if parseErr != nil {
			// Salida malformada = transitorio: el siguiente intento puede parsear bien.
			c.logger.Debug("extraction parse failed",
				zap.String("indicator_code", def.Code),
				zap.Error(parseErr),
			)
			return parseErr
		}
		extraction = parsed
		return nil
	})
	if err != nil {
		return domain.LLMExtraction{}, fmt.Errorf("generate extraction for %s: %w", def.Code, err)
	}

	return extraction, nil
}
