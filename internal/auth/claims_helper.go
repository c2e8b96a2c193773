package auth

import (
	"net/http"
	"strconv"
	"strings"

	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/models"
)

// MakeClaimsFromRequest reads the tenant, actor and admin headers.
func MakeClaimsFromRequest(r *http.Request, keyLabel string) *APIKeyClaims {
	admin, _ := strconv.ParseBool(strings.TrimSpace(r.Header.Get(constants.HeaderDiscordAdmin)))
	return &APIKeyClaims{
		DiscordUserIDVal:   models.ID(strings.TrimSpace(r.Header.Get(constants.HeaderDiscordID))),
		DiscordServerIDVal: models.ID(strings.TrimSpace(r.Header.Get(constants.HeaderServerID))),
		AdminVal:           admin,
		KeyLabelVal:        keyLabel,
	}
}
