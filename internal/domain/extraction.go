package domain

import (
	"time"

	"github.com/google/uuid"
)

// Estados de validación de un indicador extraído.
// La única transición permitida es pending -> valid | invalid.
const (
	ValidationPending = "pending"
	ValidationValid   = "valid"
	ValidationInvalid = "invalid"
)

// ExtractedIndicator es el resultado de un intento de extracción.
// La confianza y los valores crudos nunca se revisan después de creados;
// el validador solo decide ValidationStatus.
type ExtractedIndicator struct {
	ID               uuid.UUID `json:"id"`
	DocumentKey      string    `json:"document_key"`
	CompanyID        int64     `json:"company_id"`
	ReportYear       int       `json:"report_year"`
	IndicatorCode    string    `json:"indicator_code"`
	ExtractedValue   string    `json:"extracted_value"`
	NumericValue     *float64  `json:"numeric_value,omitempty"`
	Confidence       float64   `json:"confidence"`
	ValidationStatus string    `json:"validation_status"`
	SourcePages      []int     `json:"source_pages"`
	SourceChunkIDs   []int64   `json:"source_chunk_ids"`
	ExtractedAt      time.Time `json:"extracted_at"`
}

// LLMExtraction representa la salida estructurada esperada del modelo extractor.
// NumericValue es opcional: hay indicadores cualitativos sin valor numérico.
type LLMExtraction struct {
	Value        string   `json:"value"`
	NumericValue *float64 `json:"numeric_value,omitempty"`
	Confidence   float64  `json:"confidence"`
	SourcePages  []int    `json:"source_pages"`
}
