package api

import (
	"errors"
	"net/http"
	"time"

	"infinite-experiment/clanhall/internal/common"
	"infinite-experiment/clanhall/internal/models"
	"infinite-experiment/clanhall/internal/models/dtos"
	"infinite-experiment/clanhall/internal/services"
)

// CreateClan handles POST /api/v1/clans
//
// @Summary      Create a clan
// @Description  Founds a clan with the caller as leader and provisions its role and channels.
// @Tags         Clans
// @Accept       json
// @Produce      json
// @Param        X-API-Key     header  string              true  "API KEY"
// @Param        X-Server-Id   header  string              true  "Discord Server ID"
// @Param        X-Discord-Id  header  string              true  "Discord ID"
// @Param        input         body    dtos.CreateClanReq  true  "Clan name"
// @Success      201  {object}  dtos.APIResponse
// @Failure      409  {object}  dtos.APIResponse
// @Router       /api/v1/clans [post]
func (h *Handlers) CreateClan() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		var req dtos.CreateClanReq
		if err := decodeRequest(r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		clan, err := h.deps.Services.Clans.Create(r.Context(), actor, req.Name)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Clan "+clan.Label()+" created", clan, http.StatusCreated)
	})
}

// ListClans handles GET /api/v1/clans
func (h *Handlers) ListClans() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		clans, err := h.deps.Services.Clans.ListClans(r.Context(), actor.GuildID)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		if clans == nil {
			clans = []models.Clan{}
		}
		common.RespondSuccess(w, initTime, "Clans fetched successfully", dtos.ClanListResp{Clans: clans, Count: len(clans)})
	})
}

// MyClan handles GET /api/v1/clans/me
func (h *Handlers) MyClan() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		info, err := h.deps.Services.Clans.Info(r.Context(), actor)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Clan fetched successfully", info)
	})
}

// Invite handles POST /api/v1/clans/invite
//
// The invitee gets accept and decline buttons through the notifier. The
// invite is stored even when the notification could not be delivered.
func (h *Handlers) Invite() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		var req dtos.TargetUserReq
		if err := decodeRequest(r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		res, err := h.deps.Services.Clans.Invite(r.Context(), actor, models.ID(req.UserID))
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}

		msg := "Invite sent"
		if !res.Delivered {
			msg = "Invite stored, but the invitee could not be notified"
		}
		common.RespondSuccess(w, initTime, msg, dtos.InviteResp{
			Clan:      res.Clan,
			InviteeID: res.Invitee.UserID,
			Delivered: res.Delivered,
		})
	})
}

// AcceptInvite handles POST /api/v1/clans/invite/accept
func (h *Handlers) AcceptInvite() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		req, ok := inviteReply(w, r, initTime)
		if !ok {
			return
		}

		clan, err := h.deps.Services.Clans.AcceptInvite(r.Context(), actor, models.ID(req.ClanID))
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Welcome to "+clan.Label(), clan)
	})
}

// DeclineInvite handles POST /api/v1/clans/invite/decline
func (h *Handlers) DeclineInvite() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		req, ok := inviteReply(w, r, initTime)
		if !ok {
			return
		}

		if err := h.deps.Services.Clans.DeclineInvite(r.Context(), actor, models.ID(req.ClanID)); err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Invite declined", nil)
	})
}

// inviteReply accepts an empty body as "whatever invite is pending".
func inviteReply(w http.ResponseWriter, r *http.Request, initTime time.Time) (dtos.InviteReplyReq, bool) {
	var req dtos.InviteReplyReq
	if err := decodeRequest(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondBadRequest(w, initTime, err)
		return req, false
	}
	return req, true
}

// Leave handles POST /api/v1/clans/leave
func (h *Handlers) Leave() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		clan, err := h.deps.Services.Clans.Leave(r.Context(), actor)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "You left "+clan.Label(), clan)
	})
}

type targetOp func(actor services.Actor, r *http.Request, target models.ID) (*models.Clan, error)

// targetHandler runs a roster operation on the user named in the body.
func targetHandler(op targetOp, message string) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		var req dtos.TargetUserReq
		if err := decodeRequest(r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		clan, err := op(actor, r, models.ID(req.UserID))
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, message, clan)
	})
}

// Kick handles POST /api/v1/clans/kick
func (h *Handlers) Kick() http.HandlerFunc {
	return targetHandler(func(actor services.Actor, r *http.Request, target models.ID) (*models.Clan, error) {
		return h.deps.Services.Clans.Kick(r.Context(), actor, target)
	}, "Member removed")
}

// Promote handles POST /api/v1/clans/promote
func (h *Handlers) Promote() http.HandlerFunc {
	return targetHandler(func(actor services.Actor, r *http.Request, target models.ID) (*models.Clan, error) {
		return h.deps.Services.Clans.Promote(r.Context(), actor, target)
	}, "Member promoted to co-leader")
}

// Demote handles POST /api/v1/clans/demote
func (h *Handlers) Demote() http.HandlerFunc {
	return targetHandler(func(actor services.Actor, r *http.Request, target models.ID) (*models.Clan, error) {
		return h.deps.Services.Clans.Demote(r.Context(), actor, target)
	}, "Co-leader demoted to member")
}

// Transfer handles POST /api/v1/clans/transfer
func (h *Handlers) Transfer() http.HandlerFunc {
	return targetHandler(func(actor services.Actor, r *http.Request, target models.ID) (*models.Clan, error) {
		return h.deps.Services.Clans.TransferLeadership(r.Context(), actor, target)
	}, "Leadership transferred")
}

// SetColor handles POST /api/v1/clans/color
func (h *Handlers) SetColor() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		var req dtos.ClanColorReq
		if err := decodeRequest(r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		clan, err := h.deps.Services.Clans.SetColor(r.Context(), actor, req.Color)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Clan color updated", clan)
	})
}

// RequestDisband handles POST /api/v1/clans/disband
//
// The clan is only marked; an administrator approves or denies from the
// approval channel.
func (h *Handlers) RequestDisband() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		clan, err := h.deps.Services.Clans.RequestDisband(r.Context(), actor)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Disband request sent to the administrators", clan, http.StatusAccepted)
	})
}
