package service

import (
	"fmt"
	"strings"

	"esg-brsr/internal/domain"
)

// Magnitudes mayores a esto se marcan como advertencia de rango, no como error:
// pueden ser totales monetarios genuinos.
const magnitudeWarnThreshold = 1e15

// ValidationVerdict es el resultado de validar un indicador extraído.
// Los errores son fatales (status invalid); las advertencias nunca degradan el status.
type ValidationVerdict struct {
	IsValid  bool     `json:"is_valid"`
	Status   string   `json:"status"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validator aplica cinco chequeos independientes por indicador.
// Es puro y sin estado: no muta el registro, solo calcula el veredicto.
type Validator struct {
	rules RangeRuleTable
}

func NewValidator(rules RangeRuleTable) *Validator {
	if rules == nil {
		rules = DefaultRangeRules()
	}
	return &Validator{rules: rules}
}

// Validate evalúa un indicador extraído contra su definición de catálogo.
func (v *Validator) Validate(ext domain.ExtractedIndicator, def domain.IndicatorDefinition) ValidationVerdict {
	var errs, warns []string

	// 1. Cota de confianza. Fuera de [0,1] es bug de integridad de datos,
	// no una extracción legítima.
	if ext.Confidence < 0.0 || ext.Confidence > 1.0 {
		errs = append(errs, fmt.Sprintf("confidence %g outside [0.0, 1.0]", ext.Confidence))
	}

	// 2. Campos requeridos.
	if strings.TrimSpace(ext.ExtractedValue) == "" {
		errs = append(errs, "extracted value is empty")
	}
	if strings.TrimSpace(ext.IndicatorCode) == "" {
		errs = append(errs, "indicator code is missing")
	}
	if strings.TrimSpace(ext.DocumentKey) == "" {
		errs = append(errs, "document key is missing")
	}
	if ext.CompanyID <= 0 {
		errs = append(errs, "company id is missing or non-positive")
	}
	if ext.ReportYear <= 0 {
		errs = append(errs, "report year is missing or non-positive")
	}

	// 3. Consistencia de tipo (advertencia).
	expectsNumeric := unitExpectsNumeric(def.ExpectedUnit)
	if expectsNumeric && ext.NumericValue == nil {
		warns = append(warns, fmt.Sprintf("numeric value expected for unit %q but none was parsed", def.ExpectedUnit))
	}
	if !expectsNumeric && ext.NumericValue != nil {
		warns = append(warns, "qualitative answer expected but a numeric value is present")
	}

	// 4. Rango numérico según la tabla configurable.
	if ext.NumericValue != nil {
		rule := v.rules.RuleFor(ext.IndicatorCode, def.ExpectedUnit)
		n := *ext.NumericValue
		if rule.DisallowZero && n == 0 {
			errs = append(errs, fmt.Sprintf("zero not allowed for %s", ext.IndicatorCode))
		}
		if rule.Min != nil && n < *rule.Min {
			errs = append(errs, fmt.Sprintf("value %g below minimum %g", n, *rule.Min))
		}
		if rule.Max != nil && n > *rule.Max {
			errs = append(errs, fmt.Sprintf("value %g exceeds maximum %g", n, *rule.Max))
		}
		if n > magnitudeWarnThreshold {
			warns = append(warns, fmt.Sprintf("implausibly large magnitude %g, verify currency totals", n))
		}
	}

	// 5. Presencia de la unidad en el texto (advertencia, nunca error):
	// rechazar números pelados correctamente extraídos sería peor.
	if strings.TrimSpace(def.ExpectedUnit) != "" && !containsUnit(ext.ExtractedValue, def.ExpectedUnit) {
		warns = append(warns, fmt.Sprintf("expected unit %q not found in extracted text", def.ExpectedUnit))
	}

	status := domain.ValidationValid
	if len(errs) > 0 {
		status = domain.ValidationInvalid
	}
	return ValidationVerdict{
		IsValid:  len(errs) == 0,
		Status:   status,
		Errors:   errs,
		Warnings: warns,
	}
}

// unitExpectsNumeric decide si la unidad declarada implica valor numérico.
func unitExpectsNumeric(unit string) bool {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		return false
	}
	switch u {
	case "text", "qualitative", "yes/no", "boolean", "narrative":
		return false
	}
	return true
}

// Sinónimos reconocidos por familia de unidad. La primera palabra de la unidad
// esperada elige la familia ("MT CO2e" -> familia "mt").
var unitSynonyms = map[string][]string{
	"mt":    {"mt", "metric ton", "metric tonne", "tonnes", "tonne", "tons"},
	"%":     {"%", "percent", "percentage", "pct"},
	"kwh":   {"kwh", "kilowatt hour", "kilowatt-hour"},
	"mwh":   {"mwh", "megawatt hour", "megawatt-hour"},
	"gj":    {"gj", "gigajoule", "gigajoules"},
	"kl":    {"kl", "kilolitre", "kiloliter", "kilolitres", "kiloliters"},
	"inr":   {"inr", "rs", "rs.", "rupees", "crore", "lakh", "₹"},
	"days":  {"days", "day"},
	"hours": {"hours", "hour", "hrs"},
}

func containsUnit(text, unit string) bool {
	t := strings.ToLower(text)
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		return true
	}
	if strings.Contains(t, u) {
		return true
	}

	fields := strings.Fields(u)
	if len(fields) == 0 {
		return true
	}
	for _, syn := range synonymsFor(fields[0]) {
		if strings.Contains(t, syn) {
			return true
		}
	}
	return false
}

func synonymsFor(token string) []string {
	if syns, ok := unitSynonyms[token]; ok {
		return syns
	}
	for _, syns := range unitSynonyms {
		for _, s := range syns {
			if s == token {
				return syns
			}
		}
	}
	return nil
}
