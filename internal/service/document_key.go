package service

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidDocumentKey indica una clave de documento malformada.
// Es una falla de precondición: no reintentable.
var ErrInvalidDocumentKey = errors.New("invalid document key")

// DocumentRef es la clave de tarea ya parseada.
type DocumentRef struct {
	Key         string
	CompanyName string
	ReportYear  int
	ReportType  string
	Extension   string
}

// Formato: {companyName}/{reportYear}_{reportType}.{ext}
// Ej: RELIANCE/2024_BRSR.pdf
var documentKeyPattern = regexp.MustCompile(`^([^/]+)/(\d{4})_([A-Za-z0-9-]+)\.([A-Za-z0-9]+)$`)

// ParseDocumentKey valida y descompone la clave recibida de la capa de orquestación.
func ParseDocumentKey(key string) (DocumentRef, error) {
	trimmed := strings.TrimSpace(key)
	m := documentKeyPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return DocumentRef{}, fmt.Errorf("%w: %q", ErrInvalidDocumentKey, key)
	}

	year, err := strconv.Atoi(m[2])
	if err != nil || year < 1900 {
		return DocumentRef{}, fmt.Errorf("%w: bad year in %q", ErrInvalidDocumentKey, key)
	}

	return DocumentRef{
		Key:         trimmed,
		CompanyName: m[1],
		ReportYear:  year,
		ReportType:  m[3],
		Extension:   m[4],
	}, nil
}
