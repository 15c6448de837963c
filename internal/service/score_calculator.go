package service

import (
	"time"

	"github.com/google/uuid"

	"esg-brsr/internal/domain"
)

// PillarWeights pondera los tres pilares para el puntaje global.
type PillarWeights struct {
	Environmental float64
	Social        float64
	Governance    float64
}

// DefaultPillarWeights reparte en tercios iguales.
func DefaultPillarWeights() PillarWeights {
	return PillarWeights{Environmental: 1, Social: 1, Governance: 1}
}

func (w PillarWeights) total() float64 {
	return w.Environmental + w.Social + w.Governance
}

// ScoreCalculator agrega indicadores validados en puntajes por pilar y uno global.
// Solo participan indicadores con status valid y valor numérico no nulo.
type ScoreCalculator struct {
	weights PillarWeights
}

func NewScoreCalculator(weights PillarWeights) *ScoreCalculator {
	if weights.total() <= 0 {
		weights = DefaultPillarWeights()
	}
	return &ScoreCalculator{weights: weights}
}

// Calculate produce el ScoreRecord de una empresa-año con procedencia completa.
// Un pilar sin indicadores calificados vale 0 y queda registrado así en la
// metadata, nunca omitido.
func (c *ScoreCalculator) Calculate(
	companyID int64,
	reportYear int,
	indicators []domain.ExtractedIndicator,
	definitions []domain.IndicatorDefinition,
) domain.ScoreRecord {
	defsByCode := make(map[string]domain.IndicatorDefinition, len(definitions))
	for _, def := range definitions {
		defsByCode[def.Code] = def
	}

	total := c.weights.total()
	envWeight := c.weights.Environmental / total
	socWeight := c.weights.Social / total
	govWeight := c.weights.Governance / total

	envScore, envCalc := pillarScore(domain.PillarEnvironmental, envWeight, indicators, defsByCode)
	socScore, socCalc := pillarScore(domain.PillarSocial, socWeight, indicators, defsByCode)
	govScore, govCalc := pillarScore(domain.PillarGovernance, govWeight, indicators, defsByCode)

	overall := envScore*envWeight + socScore*socWeight + govScore*govWeight

	return domain.ScoreRecord{
		ID:                 uuid.New(),
		CompanyID:          companyID,
		ReportYear:         reportYear,
		EnvironmentalScore: envScore,
		SocialScore:        socScore,
		GovernanceScore:    govScore,
		OverallScore:       overall,
		Metadata: domain.CalculationMetadata{
			Environmental: envCalc,
			Social:        socCalc,
			Governance:    govCalc,
		},
		CalculatedAt: time.Now().UTC(),
	}
}

// pillarScore hace el promedio ponderado del pilar usando el peso de cada
// definición, y registra qué códigos y pesos participaron.
func pillarScore(
	pillar string,
	pillarWeight float64,
	indicators []domain.ExtractedIndicator,
	defsByCode map[string]domain.IndicatorDefinition,
) (float64, domain.PillarCalculation) {
	calc := domain.PillarCalculation{
		IndicatorCodes: []string{},
		Weights:        map[string]float64{},
		PillarWeight:   pillarWeight,
	}

	for _, ind := range indicators {
		if ind.ValidationStatus != domain.ValidationValid || ind.NumericValue == nil {
			continue
		}
		def, ok := defsByCode[ind.IndicatorCode]
		if !ok || def.Pillar != pillar {
			continue
		}

		calc.WeightedSum += *ind.NumericValue * def.Weight
		calc.TotalWeight += def.Weight
		calc.IndicatorCodes = append(calc.IndicatorCodes, ind.IndicatorCode)
		calc.Weights[ind.IndicatorCode] = def.Weight
	}

	if calc.TotalWeight == 0 {
		return 0, calc
	}
	return calc.WeightedSum / calc.TotalWeight, calc
}
