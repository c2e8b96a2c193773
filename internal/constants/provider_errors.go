package constants

// Platform provider error codes
// These constants define failure scenarios when calling the bot's asset webhook

const (
	ErrCodeInvalidAPIKey     = "INVALID_API_KEY"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeNetworkError      = "NETWORK_ERROR"
	ErrCodeResourceNotFound  = "RESOURCE_NOT_FOUND"
	ErrCodeInvalidDataFormat = "INVALID_DATA_FORMAT"
	ErrCodeNotConfigured     = "PROVIDER_NOT_CONFIGURED"
)

// ProviderErrorMessages maps error codes to human-readable messages
var ProviderErrorMessages = map[string]string{
	ErrCodeInvalidAPIKey:     "The platform webhook rejected our credentials",
	ErrCodeRateLimited:       "Rate limit exceeded. Please try again later",
	ErrCodeNetworkError:      "Unable to reach the platform webhook",
	ErrCodeResourceNotFound:  "The platform could not find the requested resource",
	ErrCodeInvalidDataFormat: "The platform rejected the request payload",
	ErrCodeNotConfigured:     "The platform webhook URL is not configured",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := ProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
