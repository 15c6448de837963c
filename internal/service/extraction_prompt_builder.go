package service

import (
	"fmt"
	"strings"

	"esg-brsr/internal/domain"
)

// ExtractionPromptBuilder arma la consulta de búsqueda y el prompt de extracción
// para un indicador BRSR. Los reportes están en inglés, el prompt también.
type ExtractionPromptBuilder struct{}

// BuildSearchQuery construye la consulta vectorial desde la definición del indicador.
func (ExtractionPromptBuilder) BuildSearchQuery(def domain.IndicatorDefinition) string {
	parts := []string{def.Name, def.Description}
	if strings.TrimSpace(def.ExpectedUnit) != "" {
		parts = append(parts, def.ExpectedUnit)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// BuildExtractionPrompt embebe empresa, año, definición del indicador y los
// extractos recuperados, e instruye al modelo a responder con el esquema fijo.
func (ExtractionPromptBuilder) BuildExtractionPrompt(
	companyName string,
	reportYear int,
	def domain.IndicatorDefinition,
	chunks []domain.RetrievedChunk,
) string {
	var sb strings.Builder

	sb.WriteString("You are an ESG analyst extracting BRSR (Business Responsibility and Sustainability Reporting) indicators from company disclosure documents.\n\n")
	sb.WriteString(fmt.Sprintf("Company: %s\n", companyName))
	sb.WriteString(fmt.Sprintf("Report year: %d\n\n", reportYear))

	sb.WriteString("=== INDICATOR ===\n")
	sb.WriteString(fmt.Sprintf("Code: %s\n", def.Code))
	sb.WriteString(fmt.Sprintf("Name: %s\n", def.Name))
	sb.WriteString(fmt.Sprintf("Description: %s\n", def.Description))
	sb.WriteString(fmt.Sprintf("Expected unit: %s\n", def.ExpectedUnit))
	sb.WriteString(fmt.Sprintf("Pillar: %s\n", def.Pillar))
	if strings.TrimSpace(def.BRSRReference) != "" {
		sb.WriteString(fmt.Sprintf("BRSR reference: %s\n", def.BRSRReference))
	}
	sb.WriteString("\n=== DOCUMENT EXCERPTS ===\n")
	for _, ch := range chunks {
		sb.WriteString(fmt.Sprintf("[Page %d]\n%s\n\n", ch.PageNumber, strings.TrimSpace(ch.Content)))
	}

	sb.WriteString("=== TASK ===\n")
	sb.WriteString("1. Locate the value of the indicator in the excerpts above. Quote the value as it appears in the document.\n")
	sb.WriteString("2. If the value is numeric, also report it as a plain number (no thousands separators, no unit).\n")
	sb.WriteString("3. Assign a confidence score using this rubric:\n")
	sb.WriteString("   - 0.9 to 1.0: value stated explicitly with the expected unit\n")
	sb.WriteString("   - 0.7 to 0.89: value stated, unit implied or converted\n")
	sb.WriteString("   - 0.4 to 0.69: value inferred from partial or tabular data\n")
	sb.WriteString("   - 0.0 to 0.39: weak or conflicting evidence\n")
	sb.WriteString("4. List EVERY page number you drew the value from.\n\n")
	sb.WriteString("Return ONLY a JSON object with this exact format:\n")
	sb.WriteString(`{"value": "1,250 MT CO2e", "numeric_value": 1250.0, "confidence": 0.95, "source_pages": [45]}` + "\n\n")
	sb.WriteString("If the indicator cannot be found in the excerpts, return:\n")
	sb.WriteString(`{"value": "NOT_FOUND", "numeric_value": null, "confidence": 0.0, "source_pages": []}` + "\n")

	return sb.String()
}
