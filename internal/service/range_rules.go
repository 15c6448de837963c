package service

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// RangeRule define los límites de plausibilidad para un código de indicador.
type RangeRule struct {
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	DisallowZero bool     `json:"disallow_zero,omitempty"`
}

// RangeRuleTable mapea código de indicador -> regla. Es dato configurable,
// no lógica: las excepciones nuevas no requieren cambios de código.
type RangeRuleTable map[string]RangeRule

// DefaultRangeRules cubre las excepciones conocidas. Los contadores estilo
// días-de-pago no admiten cero: un promedio de cero días es dato corrupto.
func DefaultRangeRules() RangeRuleTable {
	zero := 0.0
	return RangeRuleTable{
		"MSME_PAYMENT_DAYS":   {Min: &zero, DisallowZero: true},
		"TRADE_PAYABLES_DAYS": {Min: &zero, DisallowZero: true},
	}
}

// RuleFor devuelve la regla del código, o una derivada de la unidad si no hay
// entrada explícita: porcentajes van a [0,100], el resto a cero-o-positivo.
func (t RangeRuleTable) RuleFor(code, unit string) RangeRule {
	if rule, ok := t[code]; ok {
		return rule
	}
	zero := 0.0
	if isPercentUnit(unit) {
		hundred := 100.0
		return RangeRule{Min: &zero, Max: &hundred}
	}
	return RangeRule{Min: &zero}
}

// LoadRangeRules mezcla overrides de un archivo JSON sobre los defaults.
// Path vacío devuelve solo los defaults.
func LoadRangeRules(path string) (RangeRuleTable, error) {
	table := DefaultRangeRules()
	if strings.TrimSpace(path) == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read range rules: %w", err)
	}

	var overrides RangeRuleTable
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse range rules: %w", err)
	}
	for code, rule := range overrides {
		table[code] = rule
	}
	return table, nil
}

func isPercentUnit(unit string) bool {
	u := strings.ToLower(strings.TrimSpace(unit))
	return u == "%" || strings.HasSuffix(u, "%") || strings.Contains(u, "percent")
}
