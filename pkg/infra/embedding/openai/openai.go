package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/domain/embedding"
	"github.com/NeuralTrust/TrustBook/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fastjson"
)

const (
	vectorDimension       = 1536
	openAIEmbeddingsURL   = "https://api.openai.com/v1/embeddings"
	defaultRequestTimeout = 30 * time.Second
)

var (
	ErrMissingAPIKey         = errors.New("openai api key is not configured")
	ErrProviderNonOKResponse = errors.New("non-OK response from embeddings API")
)

//go:generate mockery --name=HTTPDoer --dir=. --output=./mocks --filename=http_doer_mock.go --case=underscore --with-expecter
type HTTPDoer interface {
	DoTimeout(req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error
}

type embeddingService struct {
	client HTTPDoer
	apiKey string
	url    string
	logger *logrus.Logger
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingData struct {
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type openAIEmbeddingResponse struct {
	Data []embeddingData `json:"data"`
}

func NewOpenAIEmbeddingService(client HTTPDoer, apiKey string, logger *logrus.Logger) embedding.Embedder {
	return &embeddingService{
		client: client,
		apiKey: apiKey,
		url:    openAIEmbeddingsURL,
		logger: logger,
	}
}

// Embed sends all texts in a single request and returns unit-length vectors.
func (s *embeddingService) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pBytes, err := json.Marshal(embeddingRequest{
		Model: model,
		Input: texts,
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to marshal embedding request payload")
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set(fasthttp.HeaderAcceptEncoding, httpx.AcceptEncoding)
	req.SetBody(pBytes)

	if err := s.client.DoTimeout(req, resp, requestTimeout(ctx)); err != nil {
		s.logger.WithError(err).Error("error performing HTTP request for embeddings")
		return nil, err
	}

	body, err := httpx.DecodeBody(resp)
	if err != nil {
		s.logger.WithError(err).Error("failed to decode embeddings response body")
		return nil, err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		s.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode(),
			"error":  providerErrorMessage(body),
		}).Error("non-OK response from embeddings API")
		return nil, fmt.Errorf("%w: %d", ErrProviderNonOKResponse, resp.StatusCode())
	}

	var embResp openAIEmbeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		s.logger.WithError(err).Error("failed to decode embeddings response")
		return nil, err
	}
	if len(embResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings from API, got %d", len(texts), len(embResp.Data))
	}

	sort.Slice(embResp.Data, func(i, j int) bool { return embResp.Data[i].Index < embResp.Data[j].Index })

	vectors := make([][]float32, len(embResp.Data))
	for i, d := range embResp.Data {
		if len(d.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding at index %d", d.Index)
		}
		if len(d.Embedding) != vectorDimension {
			s.logger.Debugf("embedding size %d does not match default dimension %d", len(d.Embedding), vectorDimension)
		}
		vectors[i] = normalize(d.Embedding)
	}
	return vectors, nil
}

// providerErrorMessage pulls error.message out of an API error body and falls
// back to the raw body.
func providerErrorMessage(body []byte) string {
	v, err := fastjson.ParseBytes(body)
	if err != nil {
		return string(body)
	}
	if msg := v.GetStringBytes("error", "message"); len(msg) > 0 {
		return string(msg)
	}
	return string(body)
}

// requestTimeout honours the context deadline when it is tighter than the default.
func requestTimeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < defaultRequestTimeout {
			return remaining
		}
	}
	return defaultRequestTimeout
}

func normalize(v []float64) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += val * val
	}
	norm := math.Sqrt(sumSquares)

	out := make([]float32, len(v))
	for i, val := range v {
		if norm == 0 {
			out[i] = float32(val)
			continue
		}
		out[i] = float32(val / norm)
	}
	return out
}
