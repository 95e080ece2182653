package indexer

// IngestStats summarizes one startup ingestion run.
type IngestStats struct {
	// DocsProcessed is the total number of normalized documents indexed.
	DocsProcessed int `json:"docs_processed"`
	// QuranDocs is the number of Quran verse documents.
	QuranDocs int `json:"quran_docs"`
	// HadithDocs is the number of hadith documents.
	HadithDocs int `json:"hadith_docs"`
	// DocsWithZeroChunks is the number of documents that produced no chunks.
	DocsWithZeroChunks int `json:"docs_with_zero_chunks"`
	// ChunksEmbedded is the number of chunks embedded and stored.
	ChunksEmbedded int `json:"chunks_embedded"`
}
