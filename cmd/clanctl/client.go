package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/models/dtos"
	"infinite-experiment/clanhall/internal/services"
)

// adminClient calls the admin routes of a running server so writes go
// through the server's own store.
type adminClient struct {
	baseURL string
	apiKey  string
	guildID string
	actorID string
	client  *http.Client
}

func newAdminClient(baseURL, apiKey, guildID, actorID string) *adminClient {
	return &adminClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		guildID: guildID,
		actorID: actorID,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call sends an admin request and decodes the response data into out when
// out is non-nil. It returns the server's message.
func (c *adminClient) call(ctx context.Context, method, path string, query url.Values, out any) (string, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set(constants.HeaderAPIKey, c.apiKey)
	req.Header.Set(constants.HeaderServerID, c.guildID)
	req.Header.Set(constants.HeaderDiscordID, c.actorID)
	req.Header.Set(constants.HeaderDiscordAdmin, "true")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request to %s failed: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("unexpected response (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return env.Message, fmt.Errorf("%s (HTTP %d)", env.Message, resp.StatusCode)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env.Message, fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return env.Message, nil
}

func (c *adminClient) ForceDisband(ctx context.Context, clan string) (*dtos.DisbandResp, error) {
	var out dtos.DisbandResp
	if _, err := c.call(ctx, http.MethodPost, "/api/v1/admin/clans/"+url.PathEscape(clan)+"/force-disband", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *adminClient) ResetUser(ctx context.Context, userID string) error {
	_, err := c.call(ctx, http.MethodPost, "/api/v1/admin/users/"+url.PathEscape(userID)+"/reset", nil, nil)
	return err
}

func (c *adminClient) Repair(ctx context.Context, dryRun bool) (*services.RepairReport, error) {
	query := url.Values{}
	if dryRun {
		query.Set("dry_run", "true")
	}
	var out services.RepairReport
	if _, err := c.call(ctx, http.MethodPost, "/api/v1/admin/jobs/repair", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
