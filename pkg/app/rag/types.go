package rag

import (
	"errors"
)

type Outcome string

const (
	OutcomeAnswered Outcome = "answered"
	OutcomeDenied   Outcome = "denied"
	OutcomeNotReady Outcome = "not_ready"
)

var (
	// ErrRetrievalFailure wraps any embedding, search or timeout error raised
	// while retrieving context. The cache is never populated on this path.
	ErrRetrievalFailure = errors.New("retrieval failed")
	// ErrGenerationFailure wraps errors from the answer generator.
	ErrGenerationFailure = errors.New("answer generation failed")
)

type QueryRequest struct {
	TextbookID string
	Query      string
	CallerKey  string
	UserID     string
}

type Source struct {
	ChapterID     string `json:"chapter_id"`
	ChapterTitle  string `json:"chapter_title"`
	PageReference string `json:"page_reference"`
}

type QueryResponse struct {
	Query      string   `json:"query"`
	Response   string   `json:"response"`
	Sources    []Source `json:"sources"`
	Confidence float64  `json:"confidence"`
}

// QueryResult carries the outcome of a query. Response is set only for
// OutcomeAnswered.
type QueryResult struct {
	Outcome  Outcome
	Response *QueryResponse
	Cached   bool
}
