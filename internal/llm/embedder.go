package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// Embedder genera el embedding de una consulta de búsqueda.
type Embedder interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
}

// HTTPEmbedder llama al endpoint /embeddings de la misma API OpenAI-compatible.
type HTTPEmbedder struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewHTTPEmbedder(baseURL, apiKey, model string) *HTTPEmbedder {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &HTTPEmbedder{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *HTTPEmbedder) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	reqBody := embeddingRequest{
		Model: e.model,
		Input: []string{text},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(bodyBytes))
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return pgvector.Vector{}, fmt.Errorf("embeddings http error: status=%d", resp.StatusCode)
	}

	var er embeddingResponse
	if err := json.Unmarshal(respBody, &er); err != nil {
		return pgvector.Vector{}, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(er.Data) == 0 || len(er.Data[0].Embedding) == 0 {
		return pgvector.Vector{}, fmt.Errorf("embeddings empty response")
	}

	return pgvector.NewVector(er.Data[0].Embedding), nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}
