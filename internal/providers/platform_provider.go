package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/logging"
	"infinite-experiment/clanhall/internal/models"
)

// PlatformProvider provisions clan roles and channels by calling the bot's
// asset webhook. Every call is a JSON POST; the bot does the platform work and
// answers with the handles it created.
type PlatformProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	logger  *zap.SugaredLogger
}

// NewPlatformProvider creates a provider for the webhook at baseURL.
func NewPlatformProvider(baseURL, apiKey string, timeout time.Duration) *PlatformProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PlatformProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logging.WithComponent("platform_provider"),
	}
}

type roleChangeRequest struct {
	RoleIDs []models.ID `json:"roleIds"`
}

type colorRequest struct {
	Color string `json:"color"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type visibilityRequest struct {
	Visible bool `json:"visible"`
}

// SetupGuild asks the bot to create the shared log channel, categories and
// leadership roles.
func (p *PlatformProvider) SetupGuild(ctx context.Context, guildID models.ID) (*models.GuildAssets, error) {
	var result models.GuildAssets
	if _, err := p.doPost(ctx, guildPath(guildID, "setup"), struct{}{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateClanAssets creates the clan role and channels.
func (p *PlatformProvider) CreateClanAssets(ctx context.Context, req models.ClanAssetRequest) (*models.ClanAssets, error) {
	if req.ClanName == "" || req.ClanTag == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "clan name and tag are required",
		}
	}

	var result models.ClanAssets
	if _, err := p.doPost(ctx, guildPath(req.GuildID, "clans"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteClanAssets removes every handle in assets. A 404 means the bot has
// nothing left to delete and counts as success.
func (p *PlatformProvider) DeleteClanAssets(ctx context.Context, guildID models.ID, assets models.ClanAssets) error {
	_, err := p.doPost(ctx, guildPath(guildID, "clans", "delete"), assets, nil)
	if HasCode(err, constants.ErrCodeResourceNotFound) {
		p.logger.Debugw("Clan assets already gone", "guild_id", guildID, "role_id", assets.RoleID)
		return nil
	}
	return err
}

func (p *PlatformProvider) GrantRoles(ctx context.Context, guildID, userID models.ID, roleIDs ...models.ID) error {
	return p.changeRoles(ctx, guildID, userID, "grant", roleIDs)
}

func (p *PlatformProvider) RevokeRoles(ctx context.Context, guildID, userID models.ID, roleIDs ...models.ID) error {
	return p.changeRoles(ctx, guildID, userID, "revoke", roleIDs)
}

func (p *PlatformProvider) changeRoles(ctx context.Context, guildID, userID models.ID, verb string, roleIDs []models.ID) error {
	if len(roleIDs) == 0 {
		return nil
	}
	if userID.IsZero() {
		return &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "user ID cannot be empty",
		}
	}
	_, err := p.doPost(ctx, guildPath(guildID, "members", string(userID), "roles", verb), roleChangeRequest{RoleIDs: roleIDs}, nil)
	return err
}

// SetClanColor recolors the clan role. color is a "#RRGGBB" string.
func (p *PlatformProvider) SetClanColor(ctx context.Context, guildID, roleID models.ID, color string) error {
	if roleID.IsZero() {
		return &ProviderError{
			Code:    constants.ErrCodeResourceNotFound,
			Message: "clan has no role to recolor",
		}
	}
	_, err := p.doPost(ctx, guildPath(guildID, "roles", string(roleID), "color"), colorRequest{Color: color}, nil)
	return err
}

func (p *PlatformProvider) RenameClanChannel(ctx context.Context, guildID, channelID models.ID, name string) error {
	if channelID.IsZero() {
		return nil
	}
	_, err := p.doPost(ctx, guildPath(guildID, "channels", string(channelID), "name"), renameRequest{Name: name}, nil)
	return err
}

func (p *PlatformProvider) SetClanVisibility(ctx context.Context, guildID, channelID models.ID, visible bool) error {
	if channelID.IsZero() {
		return &ProviderError{
			Code:    constants.ErrCodeResourceNotFound,
			Message: "clan has no channel",
		}
	}
	_, err := p.doPost(ctx, guildPath(guildID, "channels", string(channelID), "visibility"), visibilityRequest{Visible: visible}, nil)
	return err
}

func guildPath(guildID models.ID, parts ...string) string {
	segments := make([]string, 0, len(parts)+2)
	segments = append(segments, "guilds", url.PathEscape(string(guildID)))
	for _, part := range parts {
		segments = append(segments, url.PathEscape(part))
	}
	return "/" + strings.Join(segments, "/")
}

// doPost performs a POST request with authentication and JSON body. result may
// be nil when the caller only needs the status.
func (p *PlatformProvider) doPost(ctx context.Context, endpoint string, payload interface{}, result interface{}) (int, error) {
	if p.BaseURL == "" {
		return 0, &ProviderError{
			Code:    constants.ErrCodeNotConfigured,
			Message: constants.GetErrorMessage(constants.ErrCodeNotConfigured),
		}
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return 0, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to marshal request body",
			Err:     err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+endpoint, bytes.NewReader(payloadBytes))
	if err != nil {
		return 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}

	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.Client.Do(req)
	if err != nil {
		p.logger.Warnw("Platform request failed", "endpoint", endpoint, "error", err)
		return 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	bodyBytes, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return resp.StatusCode, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to read response body",
			Status:  resp.StatusCode,
			Err:     readErr,
		}
	}

	p.logger.Debugw("Platform request",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, buildHTTPError(resp.StatusCode, endpoint, string(bodyBytes))
	}

	if result == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return resp.StatusCode, nil
	}

	if err := json.Unmarshal(bodyBytes, result); err != nil {
		return resp.StatusCode, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to decode response",
			Details: string(bodyBytes),
			Status:  resp.StatusCode,
			Err:     err,
		}
	}

	return resp.StatusCode, nil
}

// buildHTTPError creates appropriate error based on status code
func buildHTTPError(statusCode int, endpoint string, body string) error {
	pe := &ProviderError{Details: body, Status: statusCode}
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		pe.Code = constants.ErrCodeInvalidAPIKey
		pe.Message = fmt.Sprintf("Authentication failed for endpoint %s", endpoint)
	case http.StatusNotFound:
		pe.Code = constants.ErrCodeResourceNotFound
		pe.Message = fmt.Sprintf("Resource not found: %s", endpoint)
	case http.StatusTooManyRequests:
		pe.Code = constants.ErrCodeRateLimited
		pe.Message = constants.GetErrorMessage(constants.ErrCodeRateLimited)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		pe.Code = constants.ErrCodeInvalidDataFormat
		pe.Message = fmt.Sprintf("Bad request to %s", endpoint)
	default:
		pe.Code = constants.ErrCodeNetworkError
		pe.Message = fmt.Sprintf("HTTP %d from %s: %s", statusCode, endpoint, body)
	}
	return pe
}
