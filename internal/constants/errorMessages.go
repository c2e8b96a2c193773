package constants

const (
	MsgMissingAPIKey       = "Unauthorized. Missing API Key"
	MsgInvalidAPIKey       = "Unauthorized. Invalid API Key"
	MsgMissingClaims       = "Unauthorized. Missing request claims"
	MsgMissingTenantHeader = "Missing X-Server-Id or X-Discord-Id header"
	MsgAdminRequired       = "Administrator permission required."
	MsgInvalidRequestBody  = "Invalid request body"
	MsgEmptyRequestBody    = "Request body is required"
	MsgTooManyRequests     = "Too many requests"
	MsgInternalServerError = "Something went wrong. Please try again later."
)
