package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"infinite-experiment/clanhall/internal/common"
	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/db/repositories"
	"infinite-experiment/clanhall/internal/logging"
	"infinite-experiment/clanhall/internal/metrics"
	"infinite-experiment/clanhall/internal/models"
)

// Actor is the caller of a clan operation, already resolved by the bot.
type Actor struct {
	GuildID models.ID
	UserID  models.ID
	IsAdmin bool
}

// InviteResult reports an issued invite. Delivered is false when the
// notification could not be sent; the invite is stored either way.
type InviteResult struct {
	Clan      *models.Clan
	Invitee   *models.User
	Delivered bool
}

// DisbandResult describes a removed clan.
type DisbandResult struct {
	Clan       *models.Clan
	UsersReset int
}

// ClanInfo is the caller's view of their clan.
type ClanInfo struct {
	Clan        *models.Clan       `json:"clan"`
	Role        constants.ClanRole `json:"role"`
	MemberCount int                `json:"memberCount"`
	MemberLimit int                `json:"memberLimit"`
}

// ClanService implements the membership state machine. Every mutating
// operation holds the guild's lock from its first read to its last write.
type ClanService struct {
	clans    *repositories.ClanRepository
	users    *repositories.UserRepository
	configs  *repositories.GuildConfigRepository
	assets   AssetProvisioner
	notifier Notifier
	audit    AuditLog
	signer   *common.ActionSigner
	metrics  *metrics.MetricsRegistry
	logger   *zap.SugaredLogger
	tracer   trace.Tracer
	locks    *guildLocks
	now      func() time.Time
}

func NewClanService(
	clans *repositories.ClanRepository,
	users *repositories.UserRepository,
	configs *repositories.GuildConfigRepository,
	assets AssetProvisioner,
	notifier Notifier,
	audit AuditLog,
	signer *common.ActionSigner,
	reg *metrics.MetricsRegistry,
) *ClanService {
	return &ClanService{
		clans:    clans,
		users:    users,
		configs:  configs,
		assets:   assets,
		notifier: notifier,
		audit:    audit,
		signer:   signer,
		metrics:  reg,
		logger:   logging.WithComponent("clan_service"),
		tracer:   otel.Tracer("clanhall/services"),
		locks:    newGuildLocks(),
		now:      time.Now,
	}
}

// run wraps one operation with the guild lock, a span and the outcome metric.
func (s *ClanService) run(ctx context.Context, op string, actor Actor, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "clan."+op, trace.WithAttributes(
		attribute.String("guild.id", actor.GuildID.String()),
		attribute.String("actor.id", actor.UserID.String()),
	))
	defer span.End()

	unlock := s.locks.Lock(actor.GuildID.String())
	err := fn(ctx)
	unlock()

	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if outcome == string(KindInternal) {
			s.logger.Errorw("clan operation failed", "operation", op, "guild_id", actor.GuildID, "actor_id", actor.UserID, "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.ClanOperationsTotal.WithLabelValues(op, outcome).Inc()
	}
	return err
}

// Create founds a new clan with the actor as leader.
func (s *ClanService) Create(ctx context.Context, actor Actor, name string) (*models.Clan, error) {
	var created *models.Clan
	err := s.run(ctx, "create", actor, func(ctx context.Context) error {
		name = strings.TrimSpace(name)
		if name == "" || len([]rune(name)) > constants.MaxClanNameLength {
			return ErrInvalidName
		}

		user, err := s.users.GetOrCreate(ctx, actor.GuildID, actor.UserID)
		if err != nil {
			return err
		}
		if user.InClan() {
			return ErrAlreadyInClan.WithMessage("You are already in a clan.")
		}

		existing, err := s.clans.FindByName(ctx, actor.GuildID, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateName
		}

		cfg, err := s.configs.GetOrCreate(ctx, actor.GuildID)
		if err != nil {
			return err
		}
		if !cfg.IsSetUp() {
			return ErrUnconfigured
		}

		tag, err := GenerateTag(ctx, name, s.now(), func(ctx context.Context, tag string) (bool, error) {
			return s.clans.TagExists(ctx, actor.GuildID, tag)
		})
		if err != nil {
			return err
		}

		assets, err := s.assets.CreateClanAssets(ctx, models.ClanAssetRequest{
			GuildID:      actor.GuildID,
			ClanName:     name,
			ClanTag:      tag,
			LeaderUserID: actor.UserID,
			ParentID:     cfg.ClanChannelsCategoryID,
			ChannelName:  FormatClanChannelName(name, 0),
		})
		if err != nil {
			return fmt.Errorf("failed to create clan assets: %w", err)
		}

		clan := &models.Clan{
			GuildID:  actor.GuildID,
			Name:     name,
			Tag:      tag,
			LeaderID: actor.UserID,
		}
		if assets != nil {
			clan.ApplyAssets(*assets)
		}
		created, err = s.clans.Create(ctx, clan)
		if err != nil {
			return err
		}

		user.JoinClan(created.ID, constants.RoleLeader)
		if err := s.users.Save(ctx, user); err != nil {
			return err
		}

		s.grant(ctx, actor.GuildID, actor.UserID, created.RoleID, cfg.LeaderRoleID)
		s.record(ctx, actor, "clan.create", "", created.ID, fmt.Sprintf("<@%s> created clan %s.", actor.UserID, created.Label()))
		return nil
	})
	return created, err
}

// Invite records a pending invite for targetID and notifies them.
func (s *ClanService) Invite(ctx context.Context, actor Actor, targetID models.ID) (*InviteResult, error) {
	var result *InviteResult
	err := s.run(ctx, "invite", actor, func(ctx context.Context) error {
		actorUser, clan, err := s.actorClan(ctx, actor)
		if err != nil {
			return err
		}
		if actorUser.Role != constants.RoleLeader && actorUser.Role != constants.RoleCoLeader {
			return ErrLeaderOrCoLeader.WithMessage("Only Leader or Co-Leader can invite users.")
		}
		if targetID.IsZero() || targetID == actor.UserID {
			return ErrSelfTarget.WithMessage("You must invite a valid user other than yourself.")
		}

		target, err := s.users.GetOrCreate(ctx, actor.GuildID, targetID)
		if err != nil {
			return err
		}
		if target.InClan() {
			return ErrAlreadyInClan.WithMessage("That user is already in a clan.")
		}

		cfg, err := s.configs.GetOrCreate(ctx, actor.GuildID)
		if err != nil {
			return err
		}
		if clan.MemberCount() >= cfg.MemberLimit() {
			return ErrClanFull.WithMessage(fmt.Sprintf("Your clan is full. Current limit is %d.", cfg.MemberLimit()))
		}

		target.PendingInviteClanID = clan.ID
		target.InvitedByUserID = actor.UserID
		if err := s.users.Save(ctx, target); err != nil {
			return err
		}

		event := models.InviteEvent{
			GuildID:   actor.GuildID,
			ClanID:    clan.ID,
			ClanName:  clan.Name,
			ClanTag:   clan.Tag,
			InviterID: actor.UserID,
			InviteeID: targetID,
		}
		event.AcceptToken = s.issue(common.ActionInviteAccept, actor.GuildID, clan.ID, targetID)
		event.DeclineToken = s.issue(common.ActionInviteDecline, actor.GuildID, clan.ID, targetID)

		delivered := true
		if err := s.notifier.InviteIssued(ctx, event); err != nil {
			delivered = false
			s.logger.Warnw("failed to deliver invite", "guild_id", actor.GuildID, "clan_id", clan.ID, "target_id", targetID, "error", err)
		}

		s.record(ctx, actor, "clan.invite", targetID, clan.ID, fmt.Sprintf("<@%s> invited <@%s> to clan %s.", actor.UserID, targetID, clan.Label()))
		result = &InviteResult{Clan: clan, Invitee: target, Delivered: delivered}
		return nil
	})
	return result, err
}

// AcceptInvite joins the actor to the clan they were invited to. When
// expectedClanID is set (from an action token) the stored invite must match it
// before anything else is checked.
func (s *ClanService) AcceptInvite(ctx context.Context, actor Actor, expectedClanID models.ID) (*models.Clan, error) {
	var joined *models.Clan
	err := s.run(ctx, "accept_invite", actor, func(ctx context.Context) error {
		user, err := s.users.GetOrCreate(ctx, actor.GuildID, actor.UserID)
		if err != nil {
			return err
		}
		if !expectedClanID.IsZero() && user.PendingInviteClanID != expectedClanID {
			return ErrInviteNoLongerValid
		}
		if user.InClan() {
			return ErrAlreadyInClan.WithMessage("You are already in a clan.")
		}
		if !user.HasPendingInvite() {
			return ErrNoPendingInvite
		}

		clan, err := s.clans.FindInGuild(ctx, actor.GuildID, user.PendingInviteClanID)
		if err != nil {
			return err
		}
		if clan == nil {
			user.ClearInvite()
			if err := s.users.Save(ctx, user); err != nil {
				return err
			}
			return ErrClanGone.WithMessage("That clan no longer exists. Your invite was cleared.")
		}

		cfg, err := s.configs.GetOrCreate(ctx, actor.GuildID)
		if err != nil {
			return err
		}
		if clan.MemberCount() >= cfg.MemberLimit() {
			return ErrClanFull.WithMessage(fmt.Sprintf("That clan is full. Current limit is %d.", cfg.MemberLimit()))
		}

		if !clan.Has(actor.UserID) {
			clan.AddMember(actor.UserID)
			if err := s.clans.Save(ctx, clan); err != nil {
				return err
			}
		}

		user.JoinClan(clan.ID, constants.RoleMember)
		if err := s.users.Save(ctx, user); err != nil {
			return err
		}

		s.grant(ctx, actor.GuildID, actor.UserID, clan.RoleID)
		s.record(ctx, actor, "clan.accept", "", clan.ID, fmt.Sprintf("<@%s> joined clan %s.", actor.UserID, clan.Label()))
		joined = clan
		return nil
	})
	return joined, err
}

// DeclineInvite drops the actor's pending invite.
func (s *ClanService) DeclineInvite(ctx context.Context, actor Actor, expectedClanID models.ID) error {
	return s.run(ctx, "decline_invite", actor, func(ctx context.Context) error {
		user, err := s.users.GetOrCreate(ctx, actor.GuildID, actor.UserID)
		if err != nil {
			return err
		}
		if !expectedClanID.IsZero() && user.PendingInviteClanID != expectedClanID {
			return ErrInviteNoLongerValid
		}
		if !user.HasPendingInvite() {
			return ErrNoPendingInvite
		}

		clanID := user.PendingInviteClanID
		user.ClearInvite()
		if err := s.users.Save(ctx, user); err != nil {
			return err
		}
		s.record(ctx, actor, "clan.decline", "", clanID, fmt.Sprintf("<@%s> declined an invite.", actor.UserID))
		return nil
	})
}

// Leave removes a member or co-leader from their clan.
func (s *ClanService) Leave(ctx context.Context, actor Actor) (*models.Clan, error) {
	var left *models.Clan
	err := s.run(ctx, "leave", actor, func(ctx context.Context) error {
		user, clan, err := s.actorClan(ctx, actor)
		if err != nil {
			return err
		}
		if user.Role == constants.RoleLeader || clan.IsLeader(actor.UserID) {
			return ErrLeaderCannotLeave
		}

		clan.RemoveFromRoles(actor.UserID)
		if err := s.clans.Save(ctx, clan); err != nil {
			return err
		}
		user.ResetAffiliation()
		if err := s.users.Save(ctx, user); err != nil {
			return err
		}

		cfg := s.configOrNil(ctx, actor.GuildID)
		s.revoke(ctx, actor.GuildID, actor.UserID, clan.RoleID, cfgCoLeaderRole(cfg))
		s.record(ctx, actor, "clan.leave", "", clan.ID, fmt.Sprintf("<@%s> left clan %s.", actor.UserID, clan.Label()))
		left = clan
		return nil
	})
	return left, err
}

// Kick removes targetID from the actor's clan. Co-leaders may only kick
// plain members.
func (s *ClanService) Kick(ctx context.Context, actor Actor, targetID models.ID) (*models.Clan, error) {
	var out *models.Clan
	err := s.run(ctx, "kick", actor, func(ctx context.Context) error {
		actorUser, clan, err := s.actorClan(ctx, actor)
		if err != nil {
			return err
		}
		if targetID == actor.UserID {
			return ErrSelfTarget.WithMessage("You cannot kick yourself.")
		}
		target, err := s.targetInClan(ctx, actor.GuildID, targetID, clan)
		if err != nil {
			return err
		}

		switch actorUser.Role {
		case constants.RoleLeader:
		case constants.RoleCoLeader:
			if target.Role != constants.RoleMember {
				return ErrCoLeaderKickLimit
			}
		default:
			return ErrLeaderOrCoLeader.WithMessage("Only Leader or Co-Leader can kick members.")
		}
		if target.Role == constants.RoleLeader || clan.IsLeader(targetID) {
			return ErrCannotKickLeader
		}

		clan.RemoveFromRoles(targetID)
		if err := s.clans.Save(ctx, clan); err != nil {
			return err
		}
		target.ResetAffiliation()
		if err := s.users.Save(ctx, target); err != nil {
			return err
		}

		cfg := s.configOrNil(ctx, actor.GuildID)
		s.revoke(ctx, actor.GuildID, targetID, clan.RoleID, cfgLeaderRole(cfg), cfgCoLeaderRole(cfg))
		s.record(ctx, actor, "clan.kick", targetID, clan.ID, fmt.Sprintf("<@%s> kicked <@%s> from clan %s.", actor.UserID, targetID, clan.Label()))
		out = clan
		return nil
	})
	return out, err
}

// Promote makes a member a co-leader.
func (s *ClanService) Promote(ctx context.Context, actor Actor, targetID models.ID) (*models.Clan, error) {
	var out *models.Clan
	err := s.run(ctx, "promote", actor, func(ctx context.Context) error {
		actorUser, clan, err := s.actorClan(ctx, actor)
		if err != nil {
			return err
		}
		if actorUser.Role != constants.RoleLeader {
			return ErrLeaderOnly.WithMessage("Only Leader can promote members.")
		}
		target, err := s.targetInClan(ctx, actor.GuildID, targetID, clan)
		if err != nil {
			return err
		}
		if target.Role != constants.RoleMember {
			return ErrNotAMember
		}

		clan.Promote(targetID)
		if err := s.clans.Save(ctx, clan); err != nil {
			return err
		}
		target.Role = constants.RoleCoLeader
		if err := s.users.Save(ctx, target); err != nil {
			return err
		}

		cfg := s.configOrNil(ctx, actor.GuildID)
		s.grant(ctx, actor.GuildID, targetID, cfgCoLeaderRole(cfg))
		s.record(ctx, actor, "clan.promote", targetID, clan.ID, fmt.Sprintf("<@%s> promoted <@%s> to Co-Leader in %s.", actor.UserID, targetID, clan.Label()))
		out = clan
		return nil
	})
	return out, err
}

// Demote makes a co-leader a plain member.
func (s *ClanService) Demote(ctx context.Context, actor Actor, targetID models.ID) (*models.Clan, error) {
	var out *models.Clan
	err := s.run(ctx, "demote", actor, func(ctx context.Context) error {
		actorUser, clan, err := s.actorClan(ctx, actor)
		if err != nil {
			return err
		}
		if actorUser.Role != constants.RoleLeader {
			return ErrLeaderOnly.WithMessage("Only Leader can demote co-leaders.")
		}
		target, err := s.targetInClan(ctx, actor.GuildID, targetID, clan)
		if err != nil {
			return err
		}
		if target.Role != constants.RoleCoLeader {
			return ErrNotACoLeader
		}

		clan.Demote(targetID)
		if err := s.clans.Save(ctx, clan); err != nil {
			return err
		}
		target.Role = constants.RoleMember
		if err := s.users.Save(ctx, target); err != nil {
			return err
		}

		cfg := s.configOrNil(ctx, actor.GuildID)
		s.revoke(ctx, actor.GuildID, targetID, cfgCoLeaderRole(cfg))
		s.record(ctx, actor, "clan.demote", targetID, clan.ID, fmt.Sprintf("<@%s> demoted <@%s> to Member in %s.", actor.UserID, targetID, clan.Label()))
		out = clan
		return nil
	})
	return out, err
}

// TransferLeadership hands the clan to targetID; the old leader stays on as
// co-leader.
func (s *ClanService) TransferLeadership(ctx context.Context, actor Actor, targetID models.ID) (*models.Clan, error) {
	var out *models.Clan
	err := s.run(ctx, "transfer", actor, func(ctx context.Context) error {
		actorUser, clan, err := s.actorClan(ctx, actor)
		if err != nil {
			return err
		}
		if actorUser.Role != constants.RoleLeader {
			return ErrLeaderOnly.WithMessage("Only Leader can transfer leadership.")
		}
		if targetID == actor.UserID {
			return ErrSelfTarget.WithMessage("You are already the leader.")
		}
		target, err := s.targetInClan(ctx, actor.GuildID, targetID, clan)
		if errors.Is(err, ErrNotInClan) {
			return ErrNotInClan.WithMessage("That user must already be in your clan.")
		}
		if err != nil {
			return err
		}

		clan.TransferLeadership(targetID)
		if !clan.IsCoLeader(actor.UserID) {
			clan.RemoveFromRoles(actor.UserID)
			clan.CoLeaderIDs = models.AppendUniqueID(clan.CoLeaderIDs, actor.UserID)
		}
		if err := s.clans.Save(ctx, clan); err != nil {
			return err
		}

		actorUser.Role = constants.RoleCoLeader
		if err := s.users.Save(ctx, actorUser); err != nil {
			return err
		}
		target.Role = constants.RoleLeader
		if err := s.users.Save(ctx, target); err != nil {
			return err
		}

		cfg := s.configOrNil(ctx, actor.GuildID)
		s.revoke(ctx, actor.GuildID, actor.UserID, cfgLeaderRole(cfg))
		s.grant(ctx, actor.GuildID, actor.UserID, cfgCoLeaderRole(cfg))
		s.revoke(ctx, actor.GuildID, targetID, cfgCoLeaderRole(cfg))
		s.grant(ctx, actor.GuildID, targetID, cfgLeaderRole(cfg))
		s.record(ctx, actor, "clan.transfer", targetID, clan.ID, fmt.Sprintf("<@%s> transferred leadership of %s to <@%s>.", actor.UserID, clan.Label(), targetID))
		out = clan
		return nil
	})
	return out, err
}

// SetColor changes the clan role colour. Leader only.
func (s *ClanService) SetColor(ctx context.Context, actor Actor, hex string) (*models.Clan, error) {
	var out *models.Clan
	err := s.run(ctx, "set_color", actor, func(ctx context.Context) error {
		actorUser, clan, err := s.actorClan(ctx, actor)
		if err != nil {
			return err
		}
		if actorUser.Role != constants.RoleLeader {
			return ErrLeaderOnly.WithMessage("Only Leader can change clan role color.")
		}
		color, ok := ParseHexColor(hex)
		if !ok {
			return ErrInvalidColor
		}
		if clan.RoleID.IsZero() {
			return ErrClanNotFound.WithMessage("Clan role was not found.")
		}

		if err := s.assets.SetClanColor(ctx, actor.GuildID, clan.RoleID, color); err != nil {
			return fmt.Errorf("failed to set clan color: %w", err)
		}
		clan.Color = color
		if err := s.clans.Save(ctx, clan); err != nil {
			return err
		}

		s.record(ctx, actor, "clan.color", "", clan.ID, fmt.Sprintf("<@%s> changed clan role color for %s to %s.", actor.UserID, clan.Label(), color))
		out = clan
		return nil
	})
	return out, err
}

// Info returns the actor's clan.
func (s *ClanService) Info(ctx context.Context, actor Actor) (*ClanInfo, error) {
	var info *ClanInfo
	err := s.run(ctx, "info", actor, func(ctx context.Context) error {
		user, clan, err := s.actorClan(ctx, actor)
		if err != nil {
			return err
		}
		cfg, err := s.configs.GetOrCreate(ctx, actor.GuildID)
		if err != nil {
			return err
		}
		info = &ClanInfo{
			Clan:        clan,
			Role:        user.Role,
			MemberCount: clan.MemberCount(),
			MemberLimit: cfg.MemberLimit(),
		}
		return nil
	})
	return info, err
}

// ListClans returns every clan in the guild.
func (s *ClanService) ListClans(ctx context.Context, guildID models.ID) ([]models.Clan, error) {
	return s.clans.ListByGuild(ctx, guildID)
}

// actorClan resolves the actor's user record and clan. A user pointing at a
// deleted clan is reset.
func (s *ClanService) actorClan(ctx context.Context, actor Actor) (*models.User, *models.Clan, error) {
	user, err := s.users.GetOrCreate(ctx, actor.GuildID, actor.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !user.InClan() {
		return nil, nil, ErrNotInClan.WithMessage("You are not currently in a clan.")
	}

	clan, err := s.clans.FindInGuild(ctx, actor.GuildID, user.ClanID)
	if err != nil {
		return nil, nil, err
	}
	if clan == nil {
		user.ResetAffiliation()
		if err := s.users.Save(ctx, user); err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrClanGone.WithMessage("Your clan record no longer exists. Your profile was reset.")
	}
	return user, clan, nil
}

// targetInClan loads targetID and checks that their record points at clan.
func (s *ClanService) targetInClan(ctx context.Context, guildID, targetID models.ID, clan *models.Clan) (*models.User, error) {
	if targetID.IsZero() {
		return nil, ErrNotInClan.WithMessage("That user is not in your clan.")
	}
	target, err := s.users.FindByUserID(ctx, guildID, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil || target.ClanID != clan.ID {
		return nil, ErrNotInClan.WithMessage("That user is not in your clan.")
	}
	return target, nil
}

// configOrNil loads the guild config for best-effort role handling.
func (s *ClanService) configOrNil(ctx context.Context, guildID models.ID) *models.GuildConfig {
	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		s.logger.Warnw("failed to load guild config", "guild_id", guildID, "error", err)
		return nil
	}
	return cfg
}

func cfgLeaderRole(cfg *models.GuildConfig) models.ID {
	if cfg == nil {
		return ""
	}
	return cfg.LeaderRoleID
}

func cfgCoLeaderRole(cfg *models.GuildConfig) models.ID {
	if cfg == nil {
		return ""
	}
	return cfg.CoLeaderRoleID
}

func nonEmptyIDs(ids ...models.ID) []models.ID {
	out := make([]models.ID, 0, len(ids))
	for _, id := range ids {
		if !id.IsZero() {
			out = append(out, id)
		}
	}
	return out
}

// grant and revoke are best effort: failures are logged, never returned.
func (s *ClanService) grant(ctx context.Context, guildID, userID models.ID, roleIDs ...models.ID) {
	roles := nonEmptyIDs(roleIDs...)
	if len(roles) == 0 {
		return
	}
	if err := s.assets.GrantRoles(ctx, guildID, userID, roles...); err != nil {
		s.logger.Warnw("failed to grant roles", "guild_id", guildID, "user_id", userID, "roles", roles, "error", err)
	}
}

func (s *ClanService) revoke(ctx context.Context, guildID, userID models.ID, roleIDs ...models.ID) {
	roles := nonEmptyIDs(roleIDs...)
	if len(roles) == 0 {
		return
	}
	if err := s.assets.RevokeRoles(ctx, guildID, userID, roles...); err != nil {
		s.logger.Warnw("failed to revoke roles", "guild_id", guildID, "user_id", userID, "roles", roles, "error", err)
	}
}

func (s *ClanService) issue(action common.ActionKind, guildID, clanID, subjectID models.ID) string {
	if s.signer == nil {
		return ""
	}
	token, err := s.signer.Issue(action, guildID, clanID, subjectID)
	if err != nil {
		s.logger.Warnw("failed to issue action token", "action", action, "clan_id", clanID, "error", err)
		return ""
	}
	return token
}

func (s *ClanService) record(ctx context.Context, actor Actor, action string, targetID, clanID models.ID, message string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, models.AuditEntry{
		GuildID:  actor.GuildID,
		Action:   action,
		ActorID:  actor.UserID,
		TargetID: targetID,
		ClanID:   clanID,
		Message:  message,
		At:       s.now().UTC(),
	})
}
