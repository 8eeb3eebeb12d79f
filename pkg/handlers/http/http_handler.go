package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// System
	RootHandler       Handler
	HealthHandler     Handler
	UsageHandler      Handler
	GetVersionHandler Handler

	// RAG
	QueryHandler          Handler
	CreateRAGIndexHandler Handler
	GetRAGIndexHandler    Handler

	// Textbook
	CreateTextbookHandler Handler
	GetTextbookHandler    Handler
	UpdateTextbookHandler Handler
	ListChaptersHandler   Handler

	// Chapter
	CreateChapterHandler Handler
	GetChapterHandler    Handler
	UpdateChapterHandler Handler
	DeleteChapterHandler Handler

	// User
	CreateUserHandler Handler
	GetUserHandler    Handler

	// Preferences
	GetPreferenceHandler    Handler
	SetPreferenceHandler    Handler
	FilteredChaptersHandler Handler
}
