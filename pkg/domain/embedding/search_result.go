package embedding

type SearchResult struct {
	ID      string
	Score   float32 // similarity score reported by the vector store
	Payload ChunkPayload
}
