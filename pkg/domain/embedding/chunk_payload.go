package embedding

// ChunkPayload is the metadata stored next to every chunk vector.
type ChunkPayload struct {
	Text          string `json:"text" mapstructure:"text"`
	ChapterID     string `json:"chapter_id" mapstructure:"chapter_id"`
	ChapterTitle  string `json:"chapter_title" mapstructure:"chapter_title"`
	ChapterNumber int    `json:"chapter_number" mapstructure:"chapter_number"`
	TextbookID    string `json:"textbook_id" mapstructure:"textbook_id"`
	TextbookTitle string `json:"textbook_title" mapstructure:"textbook_title"`
	ChunkNumber   int    `json:"chunk_number" mapstructure:"chunk_number"`
	TotalChunks   int    `json:"total_chunks" mapstructure:"total_chunks"`
}

func (p ChunkPayload) ToMap() map[string]any {
	return map[string]any{
		"text":           p.Text,
		"chapter_id":     p.ChapterID,
		"chapter_title":  p.ChapterTitle,
		"chapter_number": p.ChapterNumber,
		"textbook_id":    p.TextbookID,
		"textbook_title": p.TextbookTitle,
		"chunk_number":   p.ChunkNumber,
		"total_chunks":   p.TotalChunks,
	}
}
