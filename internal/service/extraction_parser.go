package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"esg-brsr/internal/domain"
)

// ErrMalformedExtraction marca una respuesta del modelo que no cumple el esquema.
// Es un error transitorio: el llamador puede reintentar la generación.
var ErrMalformedExtraction = errors.New("malformed extraction response")

// ExtractionParser centraliza la limpieza y el parseo de la salida estructurada del LLM.
// La validación ocurre en la frontera de deserialización: nada con tipos flojos
// sigue corriente abajo.
type ExtractionParser struct{}

// Parse intenta obtener un LLMExtraction desde la respuesta cruda del modelo.
func (ExtractionParser) Parse(raw string) (domain.LLMExtraction, error) {
	cleaned := cleanModelJSONResponse(raw)

	candidate := extractFirstJSONObject(cleaned)
	if candidate == "" {
		candidate = extractFirstJSONObject(raw)
	}
	if candidate == "" {
		return domain.LLMExtraction{}, fmt.Errorf("%w: no JSON object found", ErrMalformedExtraction)
	}

	var tmp struct {
		Value        string   `json:"value"`
		NumericValue *float64 `json:"numeric_value"`
		Confidence   *float64 `json:"confidence"`
		SourcePages  []int    `json:"source_pages"`
	}
	if err := json.Unmarshal([]byte(candidate), &tmp); err != nil {
		return domain.LLMExtraction{}, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}

	value := strings.TrimSpace(tmp.Value)
	if value == "" {
		return domain.LLMExtraction{}, fmt.Errorf("%w: empty value", ErrMalformedExtraction)
	}
	if tmp.Confidence == nil {
		return domain.LLMExtraction{}, fmt.Errorf("%w: missing confidence", ErrMalformedExtraction)
	}
	confidence := *tmp.Confidence
	if confidence < 0.0 || confidence > 1.0 {
		return domain.LLMExtraction{}, fmt.Errorf("%w: confidence %v outside [0,1]", ErrMalformedExtraction, confidence)
	}

	numeric := tmp.NumericValue
	if numeric == nil {
		// El modelo a veces omite numeric_value aunque el texto sea un número.
		if n, ok := parseNumericFromText(value); ok {
			numeric = &n
		}
	}

	return domain.LLMExtraction{
		Value:        value,
		NumericValue: numeric,
		Confidence:   confidence,
		SourcePages:  normalizePages(tmp.SourcePages),
	}, nil
}

// cleanModelJSONResponse quita fences ```json ... ``` y BOM, dejando el contenido usable.
func cleanModelJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = strings.TrimPrefix(s, "\uFEFF")

	reStart := regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	reEnd := regexp.MustCompile("(?is)\\s*```\\s*$")
	s = reStart.ReplaceAllString(s, "")
	s = reEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// extractFirstJSONObject devuelve el primer objeto JSON balanceado del input,
// respetando strings con escapes.
func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}

	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]

		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
			if depth < 0 {
				return ""
			}
		}
	}

	return ""
}

var reNumber = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?`)

// parseNumericFromText extrae el primer número del texto, tolerando separadores de miles.
func parseNumericFromText(text string) (float64, bool) {
	m := reNumber.FindString(text)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// normalizePages filtra páginas no positivas y deduplica preservando el orden.
func normalizePages(pages []int) []int {
	if len(pages) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(pages))
	out := make([]int, 0, len(pages))
	for _, p := range pages {
		if p <= 0 || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
