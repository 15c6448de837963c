package llm

import (
	"context"

	pgvector "github.com/pgvector/pgvector-go"
)

// MockClient permite tests sin llamar a un LLM real.
// Si Responses tiene varias entradas, se consumen en orden (útil para probar reintentos).
type MockClient struct {
	Response  string
	Responses []string
	Err       error
	Errs      []error
	Prompts   []string
	calls     int
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	call := m.calls
	m.calls++

	if len(m.Errs) > 0 {
		if call < len(m.Errs) && m.Errs[call] != nil {
			return "", m.Errs[call]
		}
	} else if m.Err != nil {
		return "", m.Err
	}

	if len(m.Responses) > 0 {
		if call >= len(m.Responses) {
			call = len(m.Responses) - 1
		}
		return m.Responses[call], nil
	}
	return m.Response, nil
}

// Calls devuelve cuántas invocaciones recibió el mock.
func (m *MockClient) Calls() int {
	return m.calls
}

// MockEmbedder devuelve siempre el mismo vector.
type MockEmbedder struct {
	Vector pgvector.Vector
	Err    error
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	if m.Err != nil {
		return pgvector.Vector{}, m.Err
	}
	return m.Vector, nil
}
