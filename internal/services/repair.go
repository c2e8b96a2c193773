package services

import (
	"context"
	"fmt"

	"infinite-experiment/clanhall/internal/models"
)

// Repair rules, also used as the metric label.
const (
	RuleMissingClan    = "missing_clan"
	RuleStaleInvite    = "stale_invite"
	RuleUnlistedMember = "unlisted_member"
	RuleRoleMismatch   = "role_mismatch"
	RuleRosterOverlap  = "roster_overlap"
	RuleRelinked       = "relinked"
	RuleDanglingRoster = "dangling_roster"
	RuleLeaderConflict = "leader_conflict"
)

// RepairAction is one inconsistency found by Repair.
type RepairAction struct {
	Rule   string    `json:"rule"`
	UserID models.ID `json:"userId"`
	ClanID models.ID `json:"clanId,omitempty"`
	Detail string    `json:"detail"`
}

// RepairReport lists what Repair found in one guild. With DryRun set nothing
// was written.
type RepairReport struct {
	GuildID models.ID      `json:"guildId"`
	DryRun  bool           `json:"dryRun"`
	Actions []RepairAction `json:"actions"`
}

// Count returns how many actions matched rule.
func (r *RepairReport) Count(rule string) int {
	n := 0
	for _, a := range r.Actions {
		if a.Rule == rule {
			n++
		}
	}
	return n
}

func (r *RepairReport) add(rule string, userID, clanID models.ID, format string, args ...any) {
	r.Actions = append(r.Actions, RepairAction{
		Rule:   rule,
		UserID: userID,
		ClanID: clanID,
		Detail: fmt.Sprintf(format, args...),
	})
}

// Repair reconciles user records with clan rosters in one guild. It finishes
// multi-entity operations that were interrupted between their clan write and
// their user write. Clan rosters are the source of truth except where a user
// already belongs to another clan.
func (s *ClanService) Repair(ctx context.Context, guildID models.ID, dryRun bool) (*RepairReport, error) {
	report := &RepairReport{GuildID: guildID, DryRun: dryRun, Actions: []RepairAction{}}

	err := s.run(ctx, "repair", Actor{GuildID: guildID}, func(ctx context.Context) error {
		clans, err := s.clans.ListByGuild(ctx, guildID)
		if err != nil {
			return err
		}
		users, err := s.users.ListByGuild(ctx, guildID)
		if err != nil {
			return err
		}

		byClan := make(map[models.ID]*models.Clan, len(clans))
		for i := range clans {
			byClan[clans[i].ID] = &clans[i]
		}
		byUser := make(map[models.ID]*models.User, len(users))
		dirtyClans := map[models.ID]bool{}
		dirtyUsers := map[models.ID]bool{}

		for i := range clans {
			if dedupeRoster(&clans[i]) {
				dirtyClans[clans[i].ID] = true
				report.add(RuleRosterOverlap, "", clans[i].ID, "clan %s listed a user in more than one role", clans[i].Label())
			}
		}

		for i := range users {
			u := &users[i]
			byUser[u.UserID] = u

			if u.HasPendingInvite() {
				if _, ok := byClan[u.PendingInviteClanID]; !ok || u.InClan() {
					report.add(RuleStaleInvite, u.UserID, u.PendingInviteClanID, "cleared invite to %s", u.PendingInviteClanID)
					u.ClearInvite()
					dirtyUsers[u.UserID] = true
				}
			}
			if !u.InClan() {
				continue
			}

			clan, ok := byClan[u.ClanID]
			switch {
			case !ok:
				report.add(RuleMissingClan, u.UserID, u.ClanID, "user pointed at missing clan %s", u.ClanID)
				u.ResetAffiliation()
				dirtyUsers[u.UserID] = true
			case !clan.Has(u.UserID):
				report.add(RuleUnlistedMember, u.UserID, u.ClanID, "user not on the roster of %s", clan.Label())
				u.ResetAffiliation()
				dirtyUsers[u.UserID] = true
			default:
				if role := clan.RoleOf(u.UserID); u.Role != role {
					report.add(RuleRoleMismatch, u.UserID, u.ClanID, "role %s corrected to %s", u.Role, role)
					u.Role = role
					dirtyUsers[u.UserID] = true
				}
			}
		}

		var created []*models.User
		for i := range clans {
			clan := &clans[i]
			for _, id := range clan.AllMemberIDs() {
				u := byUser[id]
				if u != nil && u.ClanID == clan.ID {
					continue
				}
				if u == nil || !u.InClan() {
					if u == nil {
						u = &models.User{GuildID: guildID, UserID: id}
						byUser[id] = u
						created = append(created, u)
					}
					report.add(RuleRelinked, id, clan.ID, "linked user to %s as %s", clan.Label(), clan.RoleOf(id))
					u.JoinClan(clan.ID, clan.RoleOf(id))
					dirtyUsers[id] = true
					continue
				}
				if clan.IsLeader(id) {
					report.add(RuleLeaderConflict, id, clan.ID, "leader of %s belongs to %s", clan.Label(), u.ClanID)
					s.logger.Warnw("clan leader belongs to another clan, left for an admin",
						"guild_id", guildID, "clan_id", clan.ID, "user_id", id, "other_clan_id", u.ClanID)
					continue
				}
				report.add(RuleDanglingRoster, id, clan.ID, "removed from %s, user belongs to %s", clan.Label(), u.ClanID)
				clan.RemoveFromRoles(id)
				dirtyClans[clan.ID] = true
			}
		}

		if dryRun || len(report.Actions) == 0 {
			return nil
		}

		// clans first, matching the order every operation writes in
		for i := range clans {
			if dirtyClans[clans[i].ID] {
				if err := s.clans.Save(ctx, &clans[i]); err != nil {
					return err
				}
			}
		}
		for _, u := range created {
			stored, err := s.users.GetOrCreate(ctx, guildID, u.UserID)
			if err != nil {
				return err
			}
			stored.JoinClan(u.ClanID, u.Role)
			if err := s.users.Save(ctx, stored); err != nil {
				return err
			}
			delete(dirtyUsers, u.UserID)
		}
		for i := range users {
			if dirtyUsers[users[i].UserID] {
				if err := s.users.Save(ctx, &users[i]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !dryRun && s.metrics != nil {
		for _, a := range report.Actions {
			s.metrics.RepairActionsTotal.WithLabelValues(a.Rule).Inc()
		}
	}
	return report, nil
}

// dedupeRoster keeps each user in their highest role only.
func dedupeRoster(c *models.Clan) bool {
	changed := false
	coLeaders := make([]models.ID, 0, len(c.CoLeaderIDs))
	for _, id := range c.CoLeaderIDs {
		if id == c.LeaderID || models.ContainsID(coLeaders, id) {
			changed = true
			continue
		}
		coLeaders = append(coLeaders, id)
	}
	members := make([]models.ID, 0, len(c.MemberIDs))
	for _, id := range c.MemberIDs {
		if id == c.LeaderID || models.ContainsID(coLeaders, id) || models.ContainsID(members, id) {
			changed = true
			continue
		}
		members = append(members, id)
	}
	if changed {
		c.CoLeaderIDs = coLeaders
		c.MemberIDs = members
	}
	return changed
}

// GuildIDs lists every guild with a config, clan or user record.
func (s *ClanService) GuildIDs(ctx context.Context) ([]models.ID, error) {
	seen := map[models.ID]bool{}
	var out []models.ID
	add := func(id models.ID) {
		if !id.IsZero() && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	configs, err := s.configs.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range configs {
		add(c.GuildID)
	}
	clans, err := s.clans.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range clans {
		add(c.GuildID)
	}
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		add(u.GuildID)
	}
	return out, nil
}
