package constants

type (
	RequestSource string
	APIStatus     string
	CachePrefix   string
)

const (
	RequestSourceAPIKey RequestSource = "API_KEY"

	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixAPIKey CachePrefix = "APIKEY_"
)

// Collection names in the document store.
const (
	CollectionClans        = "clans"
	CollectionUsers        = "users"
	CollectionGuildConfigs = "guildConfigs"
	CollectionAPIKeys      = "apiKeys"
)

// Clan and guild limits.
const (
	DefaultClanMemberLimit = 8
	MinClanMemberLimit     = 2
	MaxClanMemberLimit     = 100
	MaxClanNameLength      = 32
	ClanTagLength          = 8
)

// Redis stream names for collaborator output.
const (
	NotificationStream = "clanhall:notifications"
	AuditStream        = "clanhall:audit"
)

// Request headers set by the bot.
const (
	HeaderAPIKey       = "X-API-Key"
	HeaderServerID     = "X-Server-Id"
	HeaderDiscordID    = "X-Discord-Id"
	HeaderDiscordAdmin = "X-Discord-Admin"
	HeaderRequestID    = "X-Request-ID"
)
