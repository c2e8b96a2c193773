package constants

import (
	"encoding/json"
	"fmt"
)

// ClanRole is a user's role inside their clan. RoleNone is persisted as null.
type ClanRole string

const (
	RoleNone     ClanRole = ""
	RoleMember   ClanRole = "member"
	RoleCoLeader ClanRole = "co-leader"
	RoleLeader   ClanRole = "leader"
)

// Stringer ­– convenient for fmt / logs
func (r ClanRole) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

func (r ClanRole) Valid() bool {
	switch r {
	case RoleNone, RoleMember, RoleCoLeader, RoleLeader:
		return true
	}
	return false
}

func (r ClanRole) MarshalJSON() ([]byte, error) {
	if r == RoleNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

func (r *ClanRole) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = RoleNone
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("ClanRole: %w", err)
	}
	role := ClanRole(s)
	if !role.Valid() {
		return fmt.Errorf("ClanRole: unknown role %q", s)
	}
	*r = role
	return nil
}
