package response

import "github.com/NeuralTrust/TrustBook/pkg/domain/chapter"

type ChaptersResponse struct {
	Chapters []chapter.Chapter `json:"chapters"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
