package common

type contextKey string

const (
	CallerKeyContext contextKey = "caller_key"
	// AdminSubjectContext holds the subject of a verified admin token.
	AdminSubjectContext contextKey = "admin_subject"
)
