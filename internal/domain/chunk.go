package domain

import pgvector "github.com/pgvector/pgvector-go"

// DocumentChunk es un fragmento de texto de un reporte con su embedding.
// La ingesta (externa a este worker) es quien los escribe.
type DocumentChunk struct {
	ID          int64           `json:"id"`
	CompanyName string          `json:"company_name"`
	ReportYear  int             `json:"report_year"`
	PageNumber  int             `json:"page_number"`
	ChunkIndex  int             `json:"chunk_index"`
	Content     string          `json:"content"`
	Embedding   pgvector.Vector `json:"embedding"`
}

// RetrievedChunk es un chunk devuelto por la búsqueda filtrada, con su distancia.
type RetrievedChunk struct {
	Content    string  `json:"content"`
	PageNumber int     `json:"page_number"`
	ChunkID    int64   `json:"chunk_id"`
	Distance   float64 `json:"distance"`
}
