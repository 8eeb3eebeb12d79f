package common

const (
	AnonymousCallerKey  = "anonymous"
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)
