package auth

import (
	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/models"
)

// UserClaims identifies who is calling through the bot.
type UserClaims interface {
	UserID() models.ID
	GuildID() models.ID
	IsAdmin() bool
	Source() string
	KeyLabel() string
}

// APIKeyClaims are built from the bot's headers once its API key checks out.
// The bot is trusted to report the platform user and their admin permission.
type APIKeyClaims struct {
	DiscordUserIDVal   models.ID
	DiscordServerIDVal models.ID
	AdminVal           bool
	KeyLabelVal        string
}

func (c *APIKeyClaims) UserID() models.ID  { return c.DiscordUserIDVal }
func (c *APIKeyClaims) GuildID() models.ID { return c.DiscordServerIDVal }
func (c *APIKeyClaims) IsAdmin() bool      { return c.AdminVal }
func (c *APIKeyClaims) Source() string     { return string(constants.RequestSourceAPIKey) }
func (c *APIKeyClaims) KeyLabel() string   { return c.KeyLabelVal }
