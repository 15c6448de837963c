package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"esg-brsr/internal/domain"
	"esg-brsr/internal/llm"
)

func testDefinition() domain.IndicatorDefinition {
	return domain.IndicatorDefinition{
		Code:           "GHG_SCOPE1_TOTAL",
		AttributeGroup: 6,
		Name:           "Total Scope 1 GHG emissions",
		Description:    "Total direct greenhouse gas emissions (Scope 1)",
		ExpectedUnit:   "MT CO2e",
		Pillar:         domain.PillarEnvironmental,
		Weight:         1.0,
	}
}

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, Multiplier: 2.0}
}

func TestExtractionChain_HappyPath(t *testing.T) {
	retriever := &fakeRetriever{chunks: []domain.RetrievedChunk{
		{Content: "Scope 1 emissions were 1,250 MT CO2e.", PageNumber: 45, ChunkID: 9001, Distance: 0.1},
	}}
	client := &llm.MockClient{
		Response: `{"value": "1,250 MT CO2e", "numeric_value": 1250.0, "confidence": 0.95, "source_pages": [45]}`,
	}
	chain := NewExtractionChain(retriever, client, fastPolicy(3), 5, nil)

	got, err := chain.Extract(context.Background(), "RELIANCE", 2024, testDefinition())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.NumericValue == nil || *got.NumericValue != 1250.0 {
		t.Fatalf("unexpected numeric value %v", got.NumericValue)
	}
	if len(got.SourcePages) != 1 || got.SourcePages[0] != 45 {
		t.Fatalf("unexpected source pages %v", got.SourcePages)
	}
}

func TestExtractionChain_PromptEmbedsIndicatorAndContext(t *testing.T) {
	retriever := &fakeRetriever{chunks: []domain.RetrievedChunk{
		{Content: "emissions table", PageNumber: 45, ChunkID: 9001},
	}}
	client := &llm.MockClient{
		Response: `{"value": "1250 MT CO2e", "numeric_value": 1250, "confidence": 0.9, "source_pages": [45]}`,
	}
	chain := NewExtractionChain(retriever, client, fastPolicy(1), 5, nil)

	if _, err := chain.Extract(context.Background(), "RELIANCE", 2024, testDefinition()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(client.Prompts) != 1 {
		t.Fatalf("expected one prompt, got %d", len(client.Prompts))
	}
	prompt := client.Prompts[0]
	for _, want := range []string{"RELIANCE", "2024", "GHG_SCOPE1_TOTAL", "MT CO2e", "[Page 45]", "confidence"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestExtractionChain_RetriesMalformedOutput(t *testing.T) {
	retriever := &fakeRetriever{chunks: []domain.RetrievedChunk{
		{Content: "x", PageNumber: 1, ChunkID: 1},
	}}
	client := &llm.MockClient{Responses: []string{
		"sorry, I could not find any JSON",
		`{"value": "12%", "numeric_value": 12, "confidence": 0.8, "source_pages": [3]}`,
	}}
	chain := NewExtractionChain(retriever, client, fastPolicy(3), 5, nil)

	got, err := chain.Extract(context.Background(), "RELIANCE", 2024, testDefinition())
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if client.Calls() != 2 {
		t.Fatalf("expected 2 llm calls, got %d", client.Calls())
	}
	if got.Value != "12%" {
		t.Fatalf("unexpected value %q", got.Value)
	}
}

func TestExtractionChain_RetriesRetrievalIndependently(t *testing.T) {
	retriever := &fakeRetriever{
		chunks: []domain.RetrievedChunk{{Content: "x", PageNumber: 1, ChunkID: 1}},
		errs:   []error{errors.New("timeout"), nil},
	}
	client := &llm.MockClient{
		Response: `{"value": "ok", "numeric_value": null, "confidence": 0.5, "source_pages": []}`,
	}
	chain := NewExtractionChain(retriever, client, fastPolicy(3), 5, nil)

	if _, err := chain.Extract(context.Background(), "RELIANCE", 2024, testDefinition()); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if retriever.calls != 2 {
		t.Fatalf("expected 2 retrieval calls, got %d", retriever.calls)
	}
	if client.Calls() != 1 {
		t.Fatalf("expected 1 llm call, got %d", client.Calls())
	}
}

func TestExtractionChain_ExhaustedRetriesSurfaceToCaller(t *testing.T) {
	retriever := &fakeRetriever{chunks: []domain.RetrievedChunk{
		{Content: "x", PageNumber: 1, ChunkID: 1},
	}}
	client := &llm.MockClient{Err: errors.New("llm http error: status=500")}
	chain := NewExtractionChain(retriever, client, fastPolicy(3), 5, nil)

	_, err := chain.Extract(context.Background(), "RELIANCE", 2024, testDefinition())
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if client.Calls() != 3 {
		t.Fatalf("expected 3 llm calls, got %d", client.Calls())
	}
	if !strings.Contains(err.Error(), "GHG_SCOPE1_TOTAL") {
		t.Fatalf("error should name the indicator, got %v", err)
	}
}
