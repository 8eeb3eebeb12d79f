// Package chunker splits chapter text into bounded chunks for embedding.
package chunker

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	paragraphSeparator = "\n\n"
	sentenceSeparator  = ". "
)

var ErrInvalidChunkSize = errors.New("chunk size must be positive")

type Chunk struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
	Total int    `json:"total"`
}

// Split packs paragraphs greedily into chunks of at most maxChunkSize
// characters. Paragraphs that cannot fit on their own are split on sentence
// boundaries; a single sentence longer than the limit is kept whole.
// Whitespace-only input yields no chunks.
func Split(text string, maxChunkSize int) ([]Chunk, error) {
	if maxChunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if strings.TrimSpace(text) == "" {
		return []Chunk{}, nil
	}
	if size(text) <= maxChunkSize {
		return number([]string{strings.TrimSpace(text)}), nil
	}

	p := packer{max: maxChunkSize}
	for _, paragraph := range strings.Split(text, paragraphSeparator) {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		p.addParagraph(paragraph)
	}
	p.flush()

	return number(p.chunks), nil
}

type packer struct {
	max     int
	current string
	chunks  []string
}

func (p *packer) addParagraph(paragraph string) {
	if p.current == "" && size(paragraph) <= p.max {
		p.current = paragraph
		return
	}
	if p.current != "" && size(p.current)+len(paragraphSeparator)+size(paragraph) <= p.max {
		p.current += paragraphSeparator + paragraph
		return
	}

	p.flush()
	if size(paragraph) <= p.max {
		p.current = paragraph
		return
	}
	p.current = p.packSentences(paragraph)
}

// packSentences emits full sentence buffers and returns the unfinished one,
// which seeds the next paragraph buffer.
func (p *packer) packSentences(paragraph string) string {
	var buf string
	for _, sentence := range sentences(paragraph) {
		if buf == "" {
			buf = sentence
			continue
		}
		if size(buf)+1+size(sentence) <= p.max {
			buf += " " + sentence
			continue
		}
		p.emit(buf)
		buf = sentence
	}
	return strings.TrimSpace(buf)
}

func (p *packer) flush() {
	p.emit(p.current)
	p.current = ""
}

func (p *packer) emit(text string) {
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		p.chunks = append(p.chunks, trimmed)
	}
}

// sentences splits on ". " and keeps the period with the sentence it closes.
func sentences(paragraph string) []string {
	parts := strings.Split(paragraph, sentenceSeparator)
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		if i < len(parts)-1 {
			part += "."
		}
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func number(texts []string) []Chunk {
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{Text: text, Index: i, Total: len(texts)}
	}
	return chunks
}

func size(s string) int {
	return utf8.RuneCountInString(s)
}
