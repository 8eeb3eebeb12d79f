package embedding

import (
	"context"
)

//go:generate mockery --name=Embedder --dir=. --output=./mocks --filename=embedder_mock.go --case=underscore --with-expecter
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, model string, texts []string) ([][]float32, error)
}
