package storage

import "time"

// DocumentRecord is a normalized source text stored for traceability.
// Every chunk points back to exactly one document.
type DocumentRecord struct {
	ID        string // UUID
	Source    string // "quran" or "hadith"
	Reference string // e.g. "Quran 2:153" or "Sahih Bukhari 6114"
	Text      string // Full normalized document text
	CreatedAt time.Time
}

// ChunkRecord is a chunk of a document, indexed for vector search.
type ChunkRecord struct {
	ID         string // UUID (same as Qdrant point ID)
	DocumentID string // UUID (foreign key to documents.id)
	ChunkIndex int    // Index within document (starts at 0)
	Text       string // Chunk text content
}
