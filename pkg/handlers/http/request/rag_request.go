package request

import (
	"strings"

	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/google/uuid"
)

type QueryRequest struct {
	Query  string `json:"query"` // @required
	UserID string `json:"user_id"`
}

type CreateRAGIndexRequest struct {
	TextbookID     string `json:"textbook_id"` // @required
	EmbeddingModel string `json:"embedding_model"`
}

func (r *QueryRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return domain.NewValidationError("query is required")
	}
	return nil
}

func (r *CreateRAGIndexRequest) Validate() error {
	if _, err := uuid.Parse(r.TextbookID); err != nil {
		return domain.NewValidationError("invalid textbook_id %q", r.TextbookID)
	}
	return nil
}
