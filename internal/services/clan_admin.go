package services

import (
	"context"
	"fmt"
	"strings"

	"infinite-experiment/clanhall/internal/common"
	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/models"
)

// RequestDisband marks the actor's clan as pending disband and asks the
// guild admins for approval.
func (s *ClanService) RequestDisband(ctx context.Context, actor Actor) (*models.Clan, error) {
	var out *models.Clan
	err := s.run(ctx, "request_disband", actor, func(ctx context.Context) error {
		actorUser, clan, err := s.actorClan(ctx, actor)
		if err != nil {
			return err
		}
		if actorUser.Role != constants.RoleLeader {
			return ErrLeaderOnly.WithMessage("Only Leader can disband the clan.")
		}
		cfg, err := s.configs.GetOrCreate(ctx, actor.GuildID)
		if err != nil {
			return err
		}
		if !cfg.HasApprovalSink() {
			return ErrApprovalUnavailable
		}
		if clan.HasPendingDisband() {
			return ErrAlreadyPending
		}

		requestedAt := s.now().UTC()
		clan.PendingDisbandRequestedBy = actor.UserID
		clan.PendingDisbandRequestedAt = &requestedAt
		if err := s.clans.Save(ctx, clan); err != nil {
			return err
		}

		event := models.DisbandEvent{
			GuildID:      actor.GuildID,
			ClanID:       clan.ID,
			ClanName:     clan.Name,
			ClanTag:      clan.Tag,
			LogChannelID: cfg.LogChannelID,
			RequestedBy:  actor.UserID,
			RequestedAt:  requestedAt,
			ApproveToken: s.issue(common.ActionDisbandApprove, actor.GuildID, clan.ID, ""),
			DenyToken:    s.issue(common.ActionDisbandDeny, actor.GuildID, clan.ID, ""),
		}
		if err := s.notifier.DisbandRequested(ctx, event); err != nil {
			// Nobody can resolve an undelivered request, so drop the marker.
			s.logger.Warnw("failed to deliver disband request", "guild_id", actor.GuildID, "clan_id", clan.ID, "error", err)
			clan.ClearPendingDisband()
			if saveErr := s.clans.Save(ctx, clan); saveErr != nil {
				return saveErr
			}
			return ErrApprovalUnavailable.WithMessage("Could not deliver the disband request to the approval channel. Try again later.")
		}

		s.record(ctx, actor, "clan.disband_request", "", clan.ID, fmt.Sprintf("<@%s> submitted disband request for clan %s.", actor.UserID, clan.Label()))
		out = clan
		return nil
	})
	return out, err
}

// ApproveDisband resolves a pending disband request by disbanding the clan.
func (s *ClanService) ApproveDisband(ctx context.Context, actor Actor, clanID models.ID) (*DisbandResult, error) {
	var result *DisbandResult
	err := s.run(ctx, "approve_disband", actor, func(ctx context.Context) error {
		clan, err := s.pendingDisband(ctx, actor, clanID)
		if err != nil {
			return err
		}
		result, err = s.disband(ctx, actor, clan)
		if err != nil {
			return err
		}

		s.resolved(ctx, actor, clan, true)
		s.record(ctx, actor, "clan.disband_approve", "", clan.ID, fmt.Sprintf("<@%s> approved disband for clan %s.", actor.UserID, clan.Label()))
		return nil
	})
	return result, err
}

// DenyDisband clears a pending disband request; the clan is untouched.
func (s *ClanService) DenyDisband(ctx context.Context, actor Actor, clanID models.ID) (*models.Clan, error) {
	var out *models.Clan
	err := s.run(ctx, "deny_disband", actor, func(ctx context.Context) error {
		clan, err := s.pendingDisband(ctx, actor, clanID)
		if err != nil {
			return err
		}
		pending := *clan
		clan.ClearPendingDisband()
		if err := s.clans.Save(ctx, clan); err != nil {
			return err
		}

		s.resolved(ctx, actor, &pending, false)
		s.record(ctx, actor, "clan.disband_deny", "", clan.ID, fmt.Sprintf("<@%s> denied disband request for clan %s.", actor.UserID, clan.Label()))
		out = clan
		return nil
	})
	return out, err
}

// ForceDisband disbands a clan found by name or tag without a prior request.
func (s *ClanService) ForceDisband(ctx context.Context, actor Actor, nameOrTag string) (*DisbandResult, error) {
	var result *DisbandResult
	err := s.run(ctx, "force_disband", actor, func(ctx context.Context) error {
		if !actor.IsAdmin {
			return ErrAdminRequired
		}
		nameOrTag = strings.TrimSpace(nameOrTag)
		if nameOrTag == "" {
			return ErrInvalidInput.WithMessage("A clan name or tag is required.")
		}
		clan, err := s.clans.FindByNameOrTag(ctx, actor.GuildID, nameOrTag)
		if err != nil {
			return err
		}
		if clan == nil {
			return ErrClanNotFound.WithMessage("No clan found with that name/tag.")
		}

		result, err = s.disband(ctx, actor, clan)
		if err != nil {
			return err
		}
		s.record(ctx, actor, "clan.force_disband", "", clan.ID, fmt.Sprintf("<@%s> force-disbanded clan %s.", actor.UserID, clan.Label()))
		return nil
	})
	return result, err
}

// pendingDisband loads a clan for disband resolution.
func (s *ClanService) pendingDisband(ctx context.Context, actor Actor, clanID models.ID) (*models.Clan, error) {
	if !actor.IsAdmin {
		return nil, ErrAdminRequired.WithMessage("Only administrators can approve or deny disband requests.")
	}
	clan, err := s.clans.FindInGuild(ctx, actor.GuildID, clanID)
	if err != nil {
		return nil, err
	}
	if clan == nil {
		return nil, ErrClanGone.WithMessage("This disband request is no longer active. The clan no longer exists.")
	}
	if !clan.HasPendingDisband() {
		return nil, ErrDisbandNoLongerActive
	}
	return clan, nil
}

// disband resets every affiliated user in one batch, then removes the clan's
// assets and record.
func (s *ClanService) disband(ctx context.Context, actor Actor, clan *models.Clan) (*DisbandResult, error) {
	memberIDs := clan.AllMemberIDs()
	n, err := s.users.ResetMany(ctx, actor.GuildID, memberIDs)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.ClearInvitesTo(ctx, actor.GuildID, clan.ID); err != nil {
		s.logger.Warnw("failed to clear invites to disbanded clan", "clan_id", clan.ID, "error", err)
	}

	cfg := s.configOrNil(ctx, actor.GuildID)
	for _, userID := range memberIDs {
		s.revoke(ctx, actor.GuildID, userID, clan.RoleID, cfgLeaderRole(cfg), cfgCoLeaderRole(cfg))
	}
	if err := s.assets.DeleteClanAssets(ctx, actor.GuildID, clan.Assets()); err != nil {
		s.logger.Warnw("failed to delete clan assets", "clan_id", clan.ID, "error", err)
	}

	if _, err := s.clans.Delete(ctx, clan.ID); err != nil {
		return nil, err
	}
	s.logger.Infow("clan disbanded", "guild_id", actor.GuildID, "clan_id", clan.ID, "users_reset", n)
	return &DisbandResult{Clan: clan, UsersReset: n}, nil
}

func (s *ClanService) resolved(ctx context.Context, actor Actor, clan *models.Clan, approved bool) {
	event := models.DisbandEvent{
		GuildID:     actor.GuildID,
		ClanID:      clan.ID,
		ClanName:    clan.Name,
		ClanTag:     clan.Tag,
		RequestedBy: clan.PendingDisbandRequestedBy,
		ResolvedBy:  actor.UserID,
		Approved:    approved,
	}
	if clan.PendingDisbandRequestedAt != nil {
		event.RequestedAt = *clan.PendingDisbandRequestedAt
	}
	if err := s.notifier.DisbandResolved(ctx, event); err != nil {
		s.logger.Warnw("failed to deliver disband resolution", "clan_id", clan.ID, "error", err)
	}
}

// ResetUser returns targetID to Unaffiliated. Leaders cannot be reset.
func (s *ClanService) ResetUser(ctx context.Context, actor Actor, targetID models.ID) (*models.User, error) {
	var out *models.User
	err := s.run(ctx, "reset_user", actor, func(ctx context.Context) error {
		if !actor.IsAdmin {
			return ErrAdminRequired
		}
		if targetID.IsZero() {
			return ErrInvalidInput.WithMessage("A user is required.")
		}
		target, err := s.users.GetOrCreate(ctx, actor.GuildID, targetID)
		if err != nil {
			return err
		}

		cfg := s.configOrNil(ctx, actor.GuildID)
		var clan *models.Clan
		if target.InClan() {
			clan, err = s.clans.FindInGuild(ctx, actor.GuildID, target.ClanID)
			if err != nil {
				return err
			}
		}
		if clan != nil {
			if clan.IsLeader(targetID) {
				return ErrCannotResetLeader
			}
			clan.RemoveFromRoles(targetID)
			if err := s.clans.Save(ctx, clan); err != nil {
				return err
			}
		}

		previousClanID := target.ClanID
		target.ResetAffiliation()
		if err := s.users.Save(ctx, target); err != nil {
			return err
		}

		clanRole := models.ID("")
		if clan != nil {
			clanRole = clan.RoleID
		}
		s.revoke(ctx, actor.GuildID, targetID, clanRole, cfgLeaderRole(cfg), cfgCoLeaderRole(cfg))
		s.record(ctx, actor, "admin.reset_user", targetID, previousClanID, fmt.Sprintf("<@%s> reset clan state for <@%s>.", actor.UserID, targetID))
		out = target
		return nil
	})
	return out, err
}

// SetMemberLimit changes the guild's clan member cap.
func (s *ClanService) SetMemberLimit(ctx context.Context, actor Actor, limit int) (*models.GuildConfig, error) {
	var out *models.GuildConfig
	err := s.run(ctx, "set_member_limit", actor, func(ctx context.Context) error {
		if !actor.IsAdmin {
			return ErrAdminRequired
		}
		if limit < constants.MinClanMemberLimit || limit > constants.MaxClanMemberLimit {
			return ErrInvalidMemberLimit
		}
		cfg, err := s.configs.GetOrCreate(ctx, actor.GuildID)
		if err != nil {
			return err
		}
		cfg.ClanMemberLimit = limit
		if err := s.configs.Save(ctx, cfg); err != nil {
			return err
		}
		s.record(ctx, actor, "admin.set_limit", "", "", fmt.Sprintf("<@%s> set the clan member limit to %d.", actor.UserID, limit))
		out = cfg
		return nil
	})
	return out, err
}

// Setup provisions the guild's shared categories, log channel and roles.
// Handles in overrides take precedence over what the provisioner returns.
func (s *ClanService) Setup(ctx context.Context, actor Actor, overrides *models.GuildAssets) (*models.GuildConfig, error) {
	var out *models.GuildConfig
	err := s.run(ctx, "setup", actor, func(ctx context.Context) error {
		if !actor.IsAdmin {
			return ErrAdminRequired
		}
		cfg, err := s.configs.GetOrCreate(ctx, actor.GuildID)
		if err != nil {
			return err
		}

		provisioned, err := s.assets.SetupGuild(ctx, actor.GuildID)
		if err != nil {
			return fmt.Errorf("failed to set up guild assets: %w", err)
		}
		if provisioned != nil {
			cfg.Apply(*provisioned)
		}
		if overrides != nil {
			cfg.Apply(*overrides)
		}
		if err := s.configs.Save(ctx, cfg); err != nil {
			return err
		}
		s.record(ctx, actor, "admin.setup", "", "", fmt.Sprintf("<@%s> ran clan setup.", actor.UserID))
		out = cfg
		return nil
	})
	return out, err
}

// SetBounty sets a clan's bounty by tag and renames its channel to match.
func (s *ClanService) SetBounty(ctx context.Context, actor Actor, tag string, bounty int) (*models.Clan, error) {
	var out *models.Clan
	err := s.run(ctx, "set_bounty", actor, func(ctx context.Context) error {
		if !actor.IsAdmin {
			return ErrAdminRequired
		}
		if bounty < 0 {
			return ErrInvalidBounty
		}
		clan, err := s.clanByTag(ctx, actor.GuildID, tag)
		if err != nil {
			return err
		}

		clan.Bounty = bounty
		if err := s.clans.Save(ctx, clan); err != nil {
			return err
		}

		if !clan.TextChannelID.IsZero() {
			name := FormatClanChannelName(clan.Name, bounty)
			if err := s.assets.RenameClanChannel(ctx, actor.GuildID, clan.TextChannelID, name); err != nil {
				s.logger.Warnw("failed to rename clan channel", "clan_id", clan.ID, "error", err)
			}
		}
		s.record(ctx, actor, "admin.set_bounty", "", clan.ID, fmt.Sprintf("<@%s> set bounty %d for clan %s.", actor.UserID, bounty, clan.Label()))
		out = clan
		return nil
	})
	return out, err
}

// SetVisibility shows or hides a clan's text channel from the guild.
func (s *ClanService) SetVisibility(ctx context.Context, actor Actor, tag string, visible bool) (*models.Clan, error) {
	var out *models.Clan
	err := s.run(ctx, "set_visibility", actor, func(ctx context.Context) error {
		if !actor.IsAdmin {
			return ErrAdminRequired
		}
		clan, err := s.clanByTag(ctx, actor.GuildID, tag)
		if err != nil {
			return err
		}
		if clan.TextChannelID.IsZero() {
			return ErrClanNotFound.WithMessage("Clan text channel was not found.")
		}

		if err := s.assets.SetClanVisibility(ctx, actor.GuildID, clan.TextChannelID, visible); err != nil {
			return fmt.Errorf("failed to update channel visibility: %w", err)
		}
		clan.Visible = visible
		if err := s.clans.Save(ctx, clan); err != nil {
			return err
		}

		verb := "hid"
		if visible {
			verb = "showed"
		}
		s.record(ctx, actor, "admin.set_visibility", "", clan.ID, fmt.Sprintf("<@%s> %s the channel of clan %s.", actor.UserID, verb, clan.Label()))
		out = clan
		return nil
	})
	return out, err
}

func (s *ClanService) clanByTag(ctx context.Context, guildID models.ID, tag string) (*models.Clan, error) {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if tag == "" {
		return nil, ErrInvalidInput.WithMessage("A clan tag is required.")
	}
	clan, err := s.clans.FindByTag(ctx, guildID, tag)
	if err != nil {
		return nil, err
	}
	if clan == nil {
		return nil, ErrClanNotFound.WithMessage(fmt.Sprintf("No clan found with tag %s.", tag))
	}
	return clan, nil
}
