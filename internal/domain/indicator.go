package domain

// Pilares ESG.
const (
	PillarEnvironmental = "E"
	PillarSocial        = "S"
	PillarGovernance    = "G"
)

// Grupos de atributo BRSR validos (1-9).
const (
	MinAttributeGroup = 1
	MaxAttributeGroup = 9
)

// IndicatorDefinition es una entrada del catálogo BRSR.
// Datos de referencia inmutables: se cargan una vez por vida del worker.
type IndicatorDefinition struct {
	Code           string  `json:"code"`
	AttributeGroup int     `json:"attribute_group"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	ExpectedUnit   string  `json:"expected_unit"`
	Pillar         string  `json:"pillar"`
	Weight         float64 `json:"weight"`
	BRSRReference  string  `json:"brsr_reference,omitempty"`
}
