package domain

import (
	"time"

	"github.com/google/uuid"
)

// PillarCalculation registra qué indicadores y pesos produjeron el puntaje de un pilar.
// Permite explicar el puntaje hacia atrás hasta el nivel de indicador.
type PillarCalculation struct {
	IndicatorCodes []string           `json:"indicator_codes"`
	Weights        map[string]float64 `json:"weights"`
	WeightedSum    float64            `json:"weighted_sum"`
	TotalWeight    float64            `json:"total_weight"`
	PillarWeight   float64            `json:"pillar_weight"`
}

// CalculationMetadata es la procedencia completa de un ScoreRecord.
type CalculationMetadata struct {
	Environmental PillarCalculation `json:"environmental"`
	Social        PillarCalculation `json:"social"`
	Governance    PillarCalculation `json:"governance"`
}

// ScoreRecord es el agregado de una empresa-año. Inmutable salvo recálculo
// (reemplazo completo vía upsert).
type ScoreRecord struct {
	ID                 uuid.UUID           `json:"id"`
	CompanyID          int64               `json:"company_id"`
	ReportYear         int                 `json:"report_year"`
	EnvironmentalScore float64             `json:"environmental_score"`
	SocialScore        float64             `json:"social_score"`
	GovernanceScore    float64             `json:"governance_score"`
	OverallScore       float64             `json:"overall_score"`
	Metadata           CalculationMetadata `json:"calculation_metadata"`
	CalculatedAt       time.Time           `json:"calculated_at"`
}
