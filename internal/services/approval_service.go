package services

import (
	"context"
	"errors"

	"infinite-experiment/clanhall/internal/common"
	"infinite-experiment/clanhall/internal/logging"
	"infinite-experiment/clanhall/internal/models"
)

// Resolution is the outcome of a resolved action token.
type Resolution struct {
	Action  common.ActionKind `json:"action"`
	ClanID  models.ID         `json:"clanId"`
	Clan    *models.Clan      `json:"clan,omitempty"`
	Disband *DisbandResult    `json:"-"`
}

// ApprovalService resolves the second phase of the invite and disband
// workflows from signed action tokens.
type ApprovalService struct {
	clans  *ClanService
	signer *common.ActionSigner
}

func NewApprovalService(clans *ClanService, signer *common.ActionSigner) *ApprovalService {
	return &ApprovalService{clans: clans, signer: signer}
}

// Resolve verifies token and applies its action on behalf of actor. A token
// is accepted at most once.
func (s *ApprovalService) Resolve(ctx context.Context, token string, actor Actor) (*Resolution, error) {
	claims, err := s.signer.Verify(ctx, token)
	used := errors.Is(err, common.ErrActionTokenUsed)
	if err != nil && !used {
		logging.Debug("rejected action token", "guild_id", actor.GuildID, "error", err)
		return nil, ErrInvalidToken
	}
	if claims.GuildID != actor.GuildID {
		return nil, ErrWrongGuild
	}
	isInvite := claims.Action == common.ActionInviteAccept || claims.Action == common.ActionInviteDecline
	if isInvite && claims.SubjectID != actor.UserID {
		return nil, ErrNotInvitee
	}
	if !isInvite && !actor.IsAdmin {
		return nil, ErrAdminRequired
	}
	if used {
		if isInvite {
			return nil, ErrInviteNoLongerValid
		}
		return nil, ErrDisbandNoLongerActive
	}

	res := &Resolution{Action: claims.Action, ClanID: claims.ClanID}
	switch claims.Action {
	case common.ActionInviteAccept, common.ActionInviteDecline:
		if claims.Action == common.ActionInviteAccept {
			res.Clan, err = s.clans.AcceptInvite(ctx, actor, claims.ClanID)
		} else {
			err = s.clans.DeclineInvite(ctx, actor, claims.ClanID)
		}
	case common.ActionDisbandApprove:
		res.Disband, err = s.clans.ApproveDisband(ctx, actor, claims.ClanID)
		if res.Disband != nil {
			res.Clan = res.Disband.Clan
		}
	case common.ActionDisbandDeny:
		res.Clan, err = s.clans.DenyDisband(ctx, actor, claims.ClanID)
	default:
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	s.signer.MarkUsed(claims)
	return res, nil
}
