package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"infinite-experiment/clanhall/internal/common"
	"infinite-experiment/clanhall/internal/models"
	"infinite-experiment/clanhall/internal/models/dtos"
	"infinite-experiment/clanhall/internal/services"
)

// Setup handles POST /api/v1/admin/setup
//
// An empty body asks the bot to create every shared channel and role. IDs in
// the body are reused instead.
func (h *Handlers) Setup() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		var req dtos.SetupReq
		var overrides *models.GuildAssets
		err := decodeRequest(r, &req)
		switch {
		case errors.Is(err, errEmptyBody):
		case err != nil:
			respondBadRequest(w, initTime, err)
			return
		default:
			overrides = &models.GuildAssets{
				LogChannelID:           models.ID(req.LogChannelID),
				ClanChannelsCategoryID: models.ID(req.ClanChannelsCategoryID),
				ClanLogsCategoryID:     models.ID(req.ClanLogsCategoryID),
				LeaderRoleID:           models.ID(req.LeaderRoleID),
				CoLeaderRoleID:         models.ID(req.CoLeaderRoleID),
			}
		}

		cfg, err := h.deps.Services.Clans.Setup(r.Context(), actor, overrides)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Guild configured", cfg)
	})
}

// SetMemberLimit handles PUT /api/v1/admin/limit
func (h *Handlers) SetMemberLimit() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		var req dtos.MemberLimitReq
		if err := decodeRequest(r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		cfg, err := h.deps.Services.Clans.SetMemberLimit(r.Context(), actor, req.Limit)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Clan member limit set to "+strconv.Itoa(cfg.MemberLimit()), cfg)
	})
}

// SetBounty handles PUT /api/v1/admin/clans/{tag}/bounty
func (h *Handlers) SetBounty() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		var req dtos.BountyReq
		if err := decodeRequest(r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		clan, err := h.deps.Services.Clans.SetBounty(r.Context(), actor, chi.URLParam(r, "tag"), *req.Bounty)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Bounty updated", clan)
	})
}

// SetVisibility handles PUT /api/v1/admin/clans/{tag}/visibility
func (h *Handlers) SetVisibility() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		var req dtos.VisibilityReq
		if err := decodeRequest(r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		clan, err := h.deps.Services.Clans.SetVisibility(r.Context(), actor, chi.URLParam(r, "tag"), *req.Visible)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Visibility updated", clan)
	})
}

// ForceDisband handles POST /api/v1/admin/clans/{clan}/force-disband
//
// {clan} matches a clan name or tag.
func (h *Handlers) ForceDisband() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		res, err := h.deps.Services.Clans.ForceDisband(r.Context(), actor, chi.URLParam(r, "clan"))
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Clan disbanded", disbandResp(res))
	})
}

// ResetUser handles POST /api/v1/admin/users/{userId}/reset
func (h *Handlers) ResetUser() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		user, err := h.deps.Services.Clans.ResetUser(r.Context(), actor, models.ID(chi.URLParam(r, "userId")))
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "User reset", user)
	})
}

// ApproveDisband handles POST /api/v1/admin/disband/{clanId}/approve
func (h *Handlers) ApproveDisband() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		res, err := h.deps.Services.Clans.ApproveDisband(r.Context(), actor, models.ID(chi.URLParam(r, "clanId")))
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Clan disbanded", disbandResp(res))
	})
}

// DenyDisband handles POST /api/v1/admin/disband/{clanId}/deny
func (h *Handlers) DenyDisband() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		clan, err := h.deps.Services.Clans.DenyDisband(r.Context(), actor, models.ID(chi.URLParam(r, "clanId")))
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Disband request denied", clan)
	})
}

// TriggerRepair handles POST /api/v1/admin/jobs/repair
//
// Runs the consistency repair for the caller's guild now. ?dry_run=true
// reports without writing.
func (h *Handlers) TriggerRepair() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))

		report, err := h.deps.Services.Repair.RunGuild(r.Context(), actor.GuildID, dryRun)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Repair finished with "+strconv.Itoa(len(report.Actions))+" actions", report)
	})
}
