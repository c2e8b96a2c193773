package models

import (
	"encoding/json"
	"testing"

	"infinite-experiment/clanhall/internal/constants"
)

func TestIDAcceptsNumbersAndNull(t *testing.T) {
	var u User
	raw := `{"guildId": 123456789012345678, "userId": "42", "clanId": null, "role": "co-leader"}`
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u.GuildID != "123456789012345678" {
		t.Errorf("expected numeric guild id to decode as string, got %q", u.GuildID)
	}
	if !u.ClanID.IsZero() {
		t.Errorf("expected null clanId to decode as zero, got %q", u.ClanID)
	}
	if u.Role != constants.RoleCoLeader {
		t.Errorf("expected co-leader role, got %q", u.Role)
	}
}

func TestEmptyFieldsEncodeAsNull(t *testing.T) {
	u := User{GuildID: "g1", UserID: "u1"}
	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, field := range []string{"clanId", "role", "pendingInviteClanId", "invitedByUserId"} {
		if v, ok := out[field]; !ok || v != nil {
			t.Errorf("expected %s to be null, got %v (present=%v)", field, v, ok)
		}
	}
	if _, ok := out["createdAt"]; ok {
		t.Errorf("zero createdAt should be omitted")
	}
}

func TestUserState(t *testing.T) {
	cases := []struct {
		name string
		user User
		want MembershipState
	}{
		{"unaffiliated", User{}, StateUnaffiliated},
		{"invited", User{PendingInviteClanID: "c1"}, StatePendingInvite},
		{"member", User{ClanID: "c1", Role: constants.RoleMember}, StateMember},
		{"co-leader", User{ClanID: "c1", Role: constants.RoleCoLeader}, StateCoLeader},
		{"leader", User{ClanID: "c1", Role: constants.RoleLeader}, StateLeader},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.user.State(); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestClanRosterOperations(t *testing.T) {
	c := Clan{LeaderID: "a"}
	c.Normalize()

	c.AddMember("b")
	c.AddMember("b")
	if c.MemberCount() != 2 {
		t.Fatalf("expected idempotent add, count=%d", c.MemberCount())
	}

	c.Promote("b")
	if c.RoleOf("b") != constants.RoleCoLeader || c.IsMember("b") {
		t.Errorf("expected b to be co-leader only, got %v", c)
	}

	c.TransferLeadership("b")
	if c.LeaderID != "b" || !c.IsCoLeader("a") || c.IsCoLeader("b") {
		t.Errorf("unexpected roster after transfer: %+v", c)
	}

	c.Demote("a")
	if c.RoleOf("a") != constants.RoleMember {
		t.Errorf("expected a to be member, got %s", c.RoleOf("a"))
	}

	c.RemoveFromRoles("a")
	if c.Has("a") || c.MemberCount() != 1 {
		t.Errorf("expected a removed, roster=%v", c.AllMemberIDs())
	}
}

func TestGuildConfigDefaults(t *testing.T) {
	var g *GuildConfig
	if g.MemberLimit() != constants.DefaultClanMemberLimit {
		t.Errorf("nil config should use default limit")
	}
	if g.IsSetUp() || g.HasApprovalSink() {
		t.Errorf("nil config is not set up")
	}

	cfg := GuildConfig{ClanChannelsCategoryID: "cat", LeaderRoleID: "l", CoLeaderRoleID: "c", LogChannelID: "log", ClanMemberLimit: 12}
	if !cfg.IsSetUp() || !cfg.HasApprovalSink() || cfg.MemberLimit() != 12 {
		t.Errorf("unexpected config state: %+v", cfg)
	}
}
