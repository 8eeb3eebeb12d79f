package auditlogs

const (
	EventTypeTextbookCreated = "textbook.created"
	EventTypeTextbookUpdated = "textbook.updated"

	EventTypeChapterCreated = "chapter.created"
	EventTypeChapterUpdated = "chapter.updated"
	EventTypeChapterDeleted = "chapter.deleted"

	EventTypeRAGIndexBuilt = "rag_index.built"

	EventTypeUserCreated = "user.created"
)

const (
	CategoryContent = "content"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

const (
	TargetTypeTextbook = "textbook"
	TargetTypeChapter  = "chapter"
	TargetTypeRAGIndex = "rag_index"
	TargetTypeUser     = "user"
)

const (
	ActorTypeAdmin  = "admin"
	ActorTypeSystem = "system"

	RequestIDHeader = "X-Request-ID"
)
