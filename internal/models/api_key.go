package models

import "time"

// ApiKey authenticates a bot instance against the HTTP API.
type ApiKey struct {
	ID     ID     `json:"id"`
	Key    string `json:"key"`
	Label  string `json:"label"`
	Active bool   `json:"active"`

	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

func ApiKeyDefaults() map[string]any {
	return map[string]any{
		"label":  "",
		"active": true,
	}
}
